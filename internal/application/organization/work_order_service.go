package organization

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/domain/organization"
	"github.com/roofpo/backend/internal/domain/shared"
)

// WorkOrderService handles work order business operations
type WorkOrderService struct {
	workOrderRepo organization.WorkOrderRepository
	projectRepo   organization.ProjectRepository
}

// NewWorkOrderService creates a new WorkOrderService
func NewWorkOrderService(workOrderRepo organization.WorkOrderRepository, projectRepo organization.ProjectRepository) *WorkOrderService {
	return &WorkOrderService{workOrderRepo: workOrderRepo, projectRepo: projectRepo}
}

// Create opens a work order on an active project
func (s *WorkOrderService) Create(ctx context.Context, actor identity.Actor, req CreateWorkOrderRequest) (*WorkOrderResponse, error) {
	project, err := s.projectRepo.FindByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessDivision(project.DivisionID) {
		return nil, shared.ErrNotFound
	}

	var number int
	if req.Number != nil {
		number = *req.Number
		existing, err := s.workOrderRepo.FindByNumber(ctx, project.DivisionID, number)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS",
				fmt.Sprintf("Work order %04d already exists in this division", number))
		}
	} else {
		if number, err = s.workOrderRepo.NextNumber(ctx, project.DivisionID); err != nil {
			return nil, err
		}
	}

	wo, err := organization.NewWorkOrder(project, number, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.workOrderRepo.Save(ctx, wo); err != nil {
		return nil, err
	}
	response := ToWorkOrderResponse(wo)
	return &response, nil
}

// GetByID retrieves a work order visible to the actor
func (s *WorkOrderService) GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*WorkOrderResponse, error) {
	wo, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	response := ToWorkOrderResponse(wo)
	return &response, nil
}

// List retrieves the work orders of the actor's divisions
func (s *WorkOrderService) List(ctx context.Context, actor identity.Actor, filter WorkOrderListFilter) ([]WorkOrderResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	orders, total, err := s.workOrderRepo.FindAll(ctx, organization.WorkOrderFilter{
		Filter:      shared.Filter{Page: filter.Page, PageSize: filter.PageSize, OrderBy: "number", OrderDir: "desc"},
		DivisionIDs: actor.DivisionScope(),
		ProjectID:   filter.ProjectID,
		Status:      filter.Status,
	})
	if err != nil {
		return nil, 0, err
	}
	out := make([]WorkOrderResponse, len(orders))
	for i := range orders {
		out[i] = ToWorkOrderResponse(&orders[i])
	}
	return out, total, nil
}

// UpdateDescription changes a work order's description
func (s *WorkOrderService) UpdateDescription(ctx context.Context, actor identity.Actor, id uuid.UUID, description string) (*WorkOrderResponse, error) {
	return s.mutate(ctx, actor, id, func(wo *organization.WorkOrder) error {
		return wo.SetDescription(description)
	})
}

// Close stops new purchase orders on the work order
func (s *WorkOrderService) Close(ctx context.Context, actor identity.Actor, id uuid.UUID) (*WorkOrderResponse, error) {
	return s.mutate(ctx, actor, id, (*organization.WorkOrder).Close)
}

// Reopen allows purchase orders on a closed work order again
func (s *WorkOrderService) Reopen(ctx context.Context, actor identity.Actor, id uuid.UUID) (*WorkOrderResponse, error) {
	return s.mutate(ctx, actor, id, (*organization.WorkOrder).Reopen)
}

// Delete removes a work order that never issued a purchase sequence
func (s *WorkOrderService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	wo, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if wo.LastPurchaseSequence > 0 {
		return shared.NewDomainError("INVALID_STATE", "Work orders with purchase orders cannot be deleted")
	}
	return s.workOrderRepo.Delete(ctx, wo.ID)
}

func (s *WorkOrderService) mutate(ctx context.Context, actor identity.Actor, id uuid.UUID, fn func(*organization.WorkOrder) error) (*WorkOrderResponse, error) {
	wo, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := fn(wo); err != nil {
		return nil, err
	}
	if err := s.workOrderRepo.SaveWithLock(ctx, wo); err != nil {
		return nil, err
	}
	response := ToWorkOrderResponse(wo)
	return &response, nil
}

func (s *WorkOrderService) load(ctx context.Context, actor identity.Actor, id uuid.UUID) (*organization.WorkOrder, error) {
	wo, err := s.workOrderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessDivision(wo.DivisionID) {
		return nil, shared.ErrNotFound
	}
	return wo, nil
}
