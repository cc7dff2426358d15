package organization

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/procurement/ponumber"
	"github.com/roofpo/backend/internal/domain/shared"
)

// WorkOrderStatus represents whether a work order accepts purchases
type WorkOrderStatus string

const (
	WorkOrderStatusOpen   WorkOrderStatus = "OPEN"
	WorkOrderStatusClosed WorkOrderStatus = "CLOSED"
)

// WorkOrder is a unit of work within a project. It groups POs and
// hands out their purchase sequence numbers.
type WorkOrder struct {
	shared.BaseAggregateRoot
	ProjectID   uuid.UUID
	DivisionID  uuid.UUID
	Number      int
	Description string
	Status      WorkOrderStatus
	// LastPurchaseSequence is the sequence of the most recent PO, 0 before the first
	LastPurchaseSequence int
	ClosedAt             *time.Time
}

// NewWorkOrder creates an open work order
func NewWorkOrder(project *Project, number int, description string) (*WorkOrder, error) {
	if project == nil {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Project is required")
	}
	if !project.AcceptsPurchases() {
		return nil, shared.NewDomainError("INVALID_STATE", "Work orders can only be opened on active projects")
	}
	if number < 0 || number > ponumber.MaxWorkOrderNumber {
		return nil, shared.NewDomainError("INVALID_WORK_ORDER_NUMBER",
			fmt.Sprintf("Work order number must be between 0 and %d", ponumber.MaxWorkOrderNumber))
	}
	if len(description) > 500 {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}

	return &WorkOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProjectID:         project.ID,
		DivisionID:        project.DivisionID,
		Number:            number,
		Description:       strings.TrimSpace(description),
		Status:            WorkOrderStatusOpen,
	}, nil
}

// NextPurchaseSequence reserves the next purchase sequence for a new PO
func (w *WorkOrder) NextPurchaseSequence() (int, error) {
	if w.Status != WorkOrderStatusOpen {
		return 0, shared.NewDomainError("INVALID_STATE", "Cannot raise purchase orders on a closed work order")
	}
	if w.LastPurchaseSequence >= ponumber.MaxPurchaseSequence {
		return 0, shared.NewDomainError("SEQUENCE_EXHAUSTED",
			fmt.Sprintf("Work order %d has used all %d purchase sequences", w.Number, ponumber.MaxPurchaseSequence))
	}
	w.LastPurchaseSequence++
	w.MarkModified()
	return w.LastPurchaseSequence, nil
}

// SetDescription changes the description
func (w *WorkOrder) SetDescription(description string) error {
	if len(description) > 500 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	w.Description = strings.TrimSpace(description)
	w.MarkModified()
	return nil
}

// Close stops further purchases on the work order
func (w *WorkOrder) Close() error {
	if w.Status == WorkOrderStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Work order is already closed")
	}
	now := time.Now()
	w.Status = WorkOrderStatusClosed
	w.ClosedAt = &now
	w.UpdatedAt = now
	w.IncrementVersion()
	return nil
}

// Reopen allows purchases again
func (w *WorkOrder) Reopen() error {
	if w.Status == WorkOrderStatusOpen {
		return shared.NewDomainError("INVALID_STATE", "Work order is already open")
	}
	w.Status = WorkOrderStatusOpen
	w.ClosedAt = nil
	w.MarkModified()
	return nil
}

// IsOpen reports whether the work order accepts new POs
func (w *WorkOrder) IsOpen() bool {
	return w.Status == WorkOrderStatusOpen
}
