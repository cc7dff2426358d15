package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	apporg "github.com/roofpo/backend/internal/application/organization"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/domain/organization"
	"github.com/roofpo/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDivisionService struct {
	mock.Mock
}

func (m *mockDivisionService) division(args mock.Arguments) (*apporg.DivisionResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apporg.DivisionResponse), args.Error(1)
}

func (m *mockDivisionService) Create(ctx context.Context, req apporg.CreateDivisionRequest) (*apporg.DivisionResponse, error) {
	return m.division(m.Called(ctx, req))
}

func (m *mockDivisionService) GetByID(ctx context.Context, id uuid.UUID) (*apporg.DivisionResponse, error) {
	return m.division(m.Called(ctx, id))
}

func (m *mockDivisionService) List(ctx context.Context, filter shared.Filter) ([]apporg.DivisionResponse, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]apporg.DivisionResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockDivisionService) Update(ctx context.Context, id uuid.UUID, req apporg.UpdateDivisionRequest) (*apporg.DivisionResponse, error) {
	return m.division(m.Called(ctx, id, req))
}

func (m *mockDivisionService) Deactivate(ctx context.Context, id uuid.UUID) (*apporg.DivisionResponse, error) {
	return m.division(m.Called(ctx, id))
}

func (m *mockDivisionService) Activate(ctx context.Context, id uuid.UUID) (*apporg.DivisionResponse, error) {
	return m.division(m.Called(ctx, id))
}

type mockWorkOrderService struct {
	mock.Mock
}

func (m *mockWorkOrderService) workOrder(args mock.Arguments) (*apporg.WorkOrderResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apporg.WorkOrderResponse), args.Error(1)
}

func (m *mockWorkOrderService) Create(ctx context.Context, actor identity.Actor, req apporg.CreateWorkOrderRequest) (*apporg.WorkOrderResponse, error) {
	return m.workOrder(m.Called(ctx, actor, req))
}

func (m *mockWorkOrderService) GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*apporg.WorkOrderResponse, error) {
	return m.workOrder(m.Called(ctx, actor, id))
}

func (m *mockWorkOrderService) List(ctx context.Context, actor identity.Actor, filter apporg.WorkOrderListFilter) ([]apporg.WorkOrderResponse, int64, error) {
	args := m.Called(ctx, actor, filter)
	return args.Get(0).([]apporg.WorkOrderResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockWorkOrderService) UpdateDescription(ctx context.Context, actor identity.Actor, id uuid.UUID, description string) (*apporg.WorkOrderResponse, error) {
	return m.workOrder(m.Called(ctx, actor, id, description))
}

func (m *mockWorkOrderService) Close(ctx context.Context, actor identity.Actor, id uuid.UUID) (*apporg.WorkOrderResponse, error) {
	return m.workOrder(m.Called(ctx, actor, id))
}

func (m *mockWorkOrderService) Reopen(ctx context.Context, actor identity.Actor, id uuid.UUID) (*apporg.WorkOrderResponse, error) {
	return m.workOrder(m.Called(ctx, actor, id))
}

func (m *mockWorkOrderService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func TestDivisionHandler_Create(t *testing.T) {
	svc := new(mockDivisionService)
	h := NewDivisionHandler(svc)
	actor := testActor(identity.RoleAdmin)
	engine := newTestEngine(&actor)
	engine.POST("/divisions", h.Create)

	svc.On("Create", mock.Anything, apporg.CreateDivisionRequest{Code: "CP", Name: "Commercial Projects"}).
		Return(&apporg.DivisionResponse{ID: uuid.New(), Code: "CP"}, nil)

	rec := doJSON(engine, http.MethodPost, "/divisions", map[string]string{"code": "CP", "name": "Commercial Projects"})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	for _, code := range []string{"C", "CPRS", "C-P"} {
		rec = doJSON(engine, http.MethodPost, "/divisions", map[string]string{"code": code, "name": "x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code, code)
	}
	svc.AssertNumberOfCalls(t, "Create", 1)
}

func TestDivisionHandler_ListAndToggle(t *testing.T) {
	svc := new(mockDivisionService)
	h := NewDivisionHandler(svc)
	actor := testActor(identity.RoleAdmin)
	engine := newTestEngine(&actor)
	engine.GET("/divisions", h.List)
	engine.DELETE("/divisions/:id", h.Deactivate)
	engine.POST("/divisions/:id/activate", h.Activate)
	id := uuid.New()

	svc.On("List", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Search == "roof" && f.Page == 1 && f.PageSize == 20
	})).Return([]apporg.DivisionResponse{{ID: id}}, int64(1), nil)
	svc.On("Deactivate", mock.Anything, id).Return(&apporg.DivisionResponse{ID: id, Active: false}, nil)
	svc.On("Activate", mock.Anything, id).Return(&apporg.DivisionResponse{ID: id, Active: true}, nil)

	assert.Equal(t, http.StatusOK, doJSON(engine, http.MethodGet, "/divisions?search=roof", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(engine, http.MethodDelete, "/divisions/"+id.String(), nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(engine, http.MethodPost, "/divisions/"+id.String()+"/activate", nil).Code)
	svc.AssertExpectations(t)
}

func TestWorkOrderHandler(t *testing.T) {
	svc := new(mockWorkOrderService)
	h := NewWorkOrderHandler(svc)
	actor := testActor(identity.RoleOperationsManager)
	engine := newTestEngine(&actor)
	engine.POST("/work-orders", h.Create)
	engine.GET("/work-orders", h.List)
	engine.POST("/work-orders/:id/close", h.Close)
	engine.POST("/work-orders/:id/reopen", h.Reopen)
	engine.DELETE("/work-orders/:id", h.Delete)

	projectID, id := uuid.New(), uuid.New()
	number := 142
	svc.On("Create", mock.Anything, actor, apporg.CreateWorkOrderRequest{ProjectID: projectID, Number: &number, Description: "Building B"}).
		Return(&apporg.WorkOrderResponse{ID: id, Number: 142}, nil)
	svc.On("List", mock.Anything, actor, apporg.WorkOrderListFilter{Page: 1, PageSize: 20, ProjectID: &projectID, Status: organization.WorkOrderStatusOpen}).
		Return([]apporg.WorkOrderResponse{}, int64(0), nil)
	svc.On("Close", mock.Anything, actor, id).Return(&apporg.WorkOrderResponse{ID: id, Status: organization.WorkOrderStatusClosed}, nil)
	svc.On("Reopen", mock.Anything, actor, id).
		Return(nil, shared.NewDomainError("INVALID_STATE", "Work order is already open"))
	svc.On("Delete", mock.Anything, actor, id).
		Return(shared.NewDomainError("WORK_ORDER_IN_USE", "Work order has purchase orders"))

	rec := doJSON(engine, http.MethodPost, "/work-orders", map[string]any{"project_id": projectID.String(), "number": 142, "description": "Building B"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(engine, http.MethodPost, "/work-orders", map[string]any{"project_id": projectID.String(), "number": 10000})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(engine, http.MethodGet, "/work-orders?status=OPEN&project_id="+projectID.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(engine, http.MethodGet, "/work-orders?status=DONE", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusOK, doJSON(engine, http.MethodPost, "/work-orders/"+id.String()+"/close", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, doJSON(engine, http.MethodPost, "/work-orders/"+id.String()+"/reopen", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, doJSON(engine, http.MethodDelete, "/work-orders/"+id.String(), nil).Code)
}
