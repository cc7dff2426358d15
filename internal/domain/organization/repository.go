package organization

import (
	"context"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/shared"
)

// DivisionRepository defines persistence for divisions
type DivisionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Division, error)
	FindByCode(ctx context.Context, code string) (*Division, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Division, int64, error)
	Save(ctx context.Context, division *Division) error
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// ProjectFilter narrows project listings
type ProjectFilter struct {
	shared.Filter
	DivisionIDs []uuid.UUID
	Status      ProjectStatus
}

// ProjectRepository defines persistence for projects
type ProjectRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	FindAll(ctx context.Context, filter ProjectFilter) ([]Project, int64, error)
	Save(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// WorkOrderFilter narrows work order listings
type WorkOrderFilter struct {
	shared.Filter
	DivisionIDs []uuid.UUID
	ProjectID   *uuid.UUID
	Status      WorkOrderStatus
}

// WorkOrderRepository defines persistence for work orders
type WorkOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*WorkOrder, error)
	FindByNumber(ctx context.Context, divisionID uuid.UUID, number int) (*WorkOrder, error)
	FindAll(ctx context.Context, filter WorkOrderFilter) ([]WorkOrder, int64, error)
	Save(ctx context.Context, workOrder *WorkOrder) error
	// SaveWithLock persists only if the stored version matches, guarding the purchase sequence
	SaveWithLock(ctx context.Context, workOrder *WorkOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
	// NextNumber returns one past the highest work order number in the division
	NextNumber(ctx context.Context, divisionID uuid.UUID) (int, error)
}
