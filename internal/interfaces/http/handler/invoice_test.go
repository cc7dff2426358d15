package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appprocurement "github.com/roofpo/backend/internal/application/procurement"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/roofpo/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockInvoiceService struct {
	mock.Mock
}

func (m *mockInvoiceService) Record(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req appprocurement.RecordInvoiceRequest) (*appprocurement.InvoiceResponse, error) {
	args := m.Called(ctx, actor, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appprocurement.InvoiceResponse), args.Error(1)
}

func (m *mockInvoiceService) List(ctx context.Context, actor identity.Actor, orderID uuid.UUID) ([]appprocurement.InvoiceResponse, error) {
	args := m.Called(ctx, actor, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appprocurement.InvoiceResponse), args.Error(1)
}

func (m *mockInvoiceService) Void(ctx context.Context, actor identity.Actor, invoiceID uuid.UUID, reason string) (*appprocurement.InvoiceResponse, error) {
	args := m.Called(ctx, actor, invoiceID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appprocurement.InvoiceResponse), args.Error(1)
}

func (m *mockInvoiceService) Reconciliation(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*procurement.Reconciliation, error) {
	args := m.Called(ctx, actor, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.Reconciliation), args.Error(1)
}

func (m *mockInvoiceService) AttachmentURL(ctx context.Context, actor identity.Actor, invoiceID uuid.UUID) (*appprocurement.AttachmentURLResponse, error) {
	args := m.Called(ctx, actor, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appprocurement.AttachmentURLResponse), args.Error(1)
}

func invoiceEngine(svc *mockInvoiceService, actor identity.Actor) *gin.Engine {
	h := NewInvoiceHandler(svc)
	engine := newTestEngine(&actor)
	engine.POST("/purchase-orders/:id/invoices", h.Record)
	engine.GET("/purchase-orders/:id/invoices", h.List)
	engine.GET("/purchase-orders/:id/reconciliation", h.Reconciliation)
	engine.POST("/invoices/:id/void", h.Void)
	engine.GET("/invoices/:id/attachment", h.Attachment)
	return engine
}

func TestInvoiceHandler_RecordJSON(t *testing.T) {
	actor := testActor(identity.RoleAccounting)
	svc := new(mockInvoiceService)
	engine := invoiceEngine(svc, actor)
	orderID := uuid.New()

	svc.On("Record", mock.Anything, actor, orderID, mock.MatchedBy(func(req appprocurement.RecordInvoiceRequest) bool {
		return req.Number == "INV-20931" &&
			req.Amount.Equal(decimal.RequireFromString("1358.25")) &&
			req.InvoiceDate.Equal(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)) &&
			req.DueDate == nil &&
			req.Attachment == nil
	})).Return(&appprocurement.InvoiceResponse{ID: uuid.New(), Number: "INV-20931"}, nil)

	rec := doJSON(engine, http.MethodPost, "/purchase-orders/"+orderID.String()+"/invoices", map[string]string{
		"number": "INV-20931", "amount": "1358.25", "invoice_date": "2026-03-04",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestInvoiceHandler_RecordMultipart(t *testing.T) {
	actor := testActor(identity.RoleAccounting)
	svc := new(mockInvoiceService)
	engine := invoiceEngine(svc, actor)
	orderID := uuid.New()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("number", "INV-7"))
	require.NoError(t, w.WriteField("amount", "99.10"))
	require.NoError(t, w.WriteField("invoice_date", "2026-03-04"))
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="attachment"; filename="inv-7.pdf"`)
	header.Set("Content-Type", "application/pdf")
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	var uploaded []byte
	svc.On("Record", mock.Anything, actor, orderID, mock.MatchedBy(func(req appprocurement.RecordInvoiceRequest) bool {
		return req.Attachment != nil &&
			req.Attachment.FileName == "inv-7.pdf" &&
			req.Attachment.ContentType == "application/pdf"
	})).Run(func(args mock.Arguments) {
		req := args.Get(3).(appprocurement.RecordInvoiceRequest)
		uploaded, _ = io.ReadAll(req.Attachment.Body)
	}).Return(&appprocurement.InvoiceResponse{ID: uuid.New(), HasAttachment: true}, nil)

	req := httptest.NewRequest(http.MethodPost, "/purchase-orders/"+orderID.String()+"/invoices", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "%PDF-1.4 test", string(uploaded))
}

func TestInvoiceHandler_RecordRejectsBadValues(t *testing.T) {
	actor := testActor(identity.RoleAccounting)
	svc := new(mockInvoiceService)
	engine := invoiceEngine(svc, actor)
	path := "/purchase-orders/" + uuid.NewString() + "/invoices"

	for name, body := range map[string]map[string]string{
		"missing number": {"amount": "1", "invoice_date": "2026-03-04"},
		"bad amount":     {"number": "A", "amount": "ten", "invoice_date": "2026-03-04"},
		"bad date":       {"number": "A", "amount": "1", "invoice_date": "March 4"},
	} {
		t.Run(name, func(t *testing.T) {
			rec := doJSON(engine, http.MethodPost, path, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	svc.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceHandler_ReadsAndVoid(t *testing.T) {
	actor := testActor(identity.RoleAccounting)
	svc := new(mockInvoiceService)
	engine := invoiceEngine(svc, actor)
	orderID, invoiceID := uuid.New(), uuid.New()

	svc.On("List", mock.Anything, actor, orderID).Return(nil, nil)
	svc.On("Reconciliation", mock.Anything, actor, orderID).Return(&procurement.Reconciliation{
		Ordered:  decimal.NewFromInt(100),
		Expected: decimal.NewFromInt(100),
		Invoiced: decimal.NewFromInt(104),
		Variance: decimal.NewFromInt(4),
	}, nil)
	svc.On("Void", mock.Anything, actor, invoiceID, "Duplicate").Return(&appprocurement.InvoiceResponse{ID: invoiceID}, nil)
	svc.On("AttachmentURL", mock.Anything, actor, invoiceID).
		Return(nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Attachment storage is not configured"))

	rec := doJSON(engine, http.MethodGet, "/purchase-orders/"+orderID.String()+"/invoices", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)

	rec = doJSON(engine, http.MethodGet, "/purchase-orders/"+orderID.String()+"/reconciliation", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(engine, http.MethodPost, "/invoices/"+invoiceID.String()+"/void", map[string]string{"reason": "Duplicate"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(engine, http.MethodPost, "/invoices/"+invoiceID.String()+"/void", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(engine, http.MethodGet, "/invoices/"+invoiceID.String()+"/attachment", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
