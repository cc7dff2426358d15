package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appprocurement "github.com/roofpo/backend/internal/application/procurement"
	appreport "github.com/roofpo/backend/internal/application/report"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/roofpo/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReportServices struct {
	mock.Mock
}

func (m *mockReportServices) Spend(ctx context.Context, actor identity.Actor, filter appreport.SpendReportFilter) (*appreport.SpendReportResponse, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appreport.SpendReportResponse), args.Error(1)
}

func (m *mockReportServices) Summary(ctx context.Context, actor identity.Actor) (*appreport.DashboardSummary, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appreport.DashboardSummary), args.Error(1)
}

func (m *mockReportServices) ExportPurchaseOrders(ctx context.Context, actor identity.Actor, filter appprocurement.PurchaseOrderListFilter, w io.Writer) (int, error) {
	args := m.Called(ctx, actor, filter, w)
	return args.Int(0), args.Error(1)
}

func (m *mockReportServices) ExportSpend(ctx context.Context, actor identity.Actor, filter appreport.SpendReportFilter, w io.Writer) error {
	return m.Called(ctx, actor, filter, w).Error(0)
}

func reportEngine(svc *mockReportServices, actor identity.Actor) *gin.Engine {
	h := NewReportHandler(svc, svc, svc)
	h.now = func() time.Time { return time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC) }
	engine := newTestEngine(&actor)
	engine.GET("/dashboard/summary", h.Dashboard)
	engine.GET("/reports/spend", h.Spend)
	engine.GET("/reports/spend/export", h.ExportSpend)
	engine.GET("/purchase-orders/export", h.ExportPurchaseOrders)
	return engine
}

func TestReportHandler_Dashboard(t *testing.T) {
	actor := testActor(identity.RoleDivisionLeader, uuid.New())
	svc := new(mockReportServices)
	engine := reportEngine(svc, actor)

	svc.On("Summary", mock.Anything, actor).Return(&appreport.DashboardSummary{OpenOrders: 4, PendingApprovals: 2}, nil)

	rec := doJSON(engine, http.MethodGet, "/dashboard/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got appreport.DashboardSummary
	decodeResponse(t, rec, &got)
	assert.Equal(t, int64(4), got.OpenOrders)
	assert.Equal(t, 2, got.PendingApprovals)
}

func TestReportHandler_Spend(t *testing.T) {
	actor := testActor(identity.RoleExecutive)
	svc := new(mockReportServices)
	engine := reportEngine(svc, actor)
	divisionID := uuid.New()

	svc.On("Spend", mock.Anything, actor, appreport.SpendReportFilter{
		StartDate:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		DivisionID: &divisionID,
		TopN:       5,
	}).Return(&appreport.SpendReportResponse{}, nil)
	svc.On("Spend", mock.Anything, actor, appreport.SpendReportFilter{}).
		Return(nil, shared.NewDomainError("INVALID_DATE_RANGE", "End date must not be before start date"))

	rec := doJSON(engine, http.MethodGet, "/reports/spend?start_date=2026-01-01&end_date=2026-06-30&top_n=5&division_id="+divisionID.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(engine, http.MethodGet, "/reports/spend", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_DATE_RANGE", errorCode(t, rec))

	rec = doJSON(engine, http.MethodGet, "/reports/spend?start_date=01/01/2026", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHandler_ExportPurchaseOrders(t *testing.T) {
	actor := testActor(identity.RoleAccounting)
	svc := new(mockReportServices)
	engine := reportEngine(svc, actor)

	svc.On("ExportPurchaseOrders", mock.Anything, actor, mock.MatchedBy(func(f appprocurement.PurchaseOrderListFilter) bool {
		return len(f.Statuses) == 1 && f.Statuses[0] == procurement.StatusPaid
	}), mock.Anything).Run(func(args mock.Arguments) {
		_, _ = io.WriteString(args.Get(3).(io.Writer), "po_number,status\n07CP0142-3,PAID\n")
	}).Return(1, nil)

	rec := doJSON(engine, http.MethodGet, "/purchase-orders/export?status=PAID", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="purchase-orders-20261014-080000.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))
	assert.Equal(t, "po_number,status\n07CP0142-3,PAID\n", rec.Body.String())
}

func TestReportHandler_ExportFailureIsJSON(t *testing.T) {
	actor := testActor(identity.RoleAccounting)
	svc := new(mockReportServices)
	engine := reportEngine(svc, actor)

	svc.On("ExportPurchaseOrders", mock.Anything, actor, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		_, _ = io.WriteString(args.Get(3).(io.Writer), "po_number\n")
	}).Return(0, shared.NewDomainError("EXPORT_TOO_LARGE", "Export is limited to 10000 purchase orders; narrow the filter"))
	svc.On("ExportSpend", mock.Anything, actor, mock.Anything, mock.Anything).Return(errors.New("query timeout"))

	rec := doJSON(engine, http.MethodGet, "/purchase-orders/export", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "EXPORT_TOO_LARGE", errorCode(t, rec))
	assert.NotContains(t, rec.Body.String(), "po_number\n")

	rec = doJSON(engine, http.MethodGet, "/reports/spend/export", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}
