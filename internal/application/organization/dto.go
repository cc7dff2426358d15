package organization

import (
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/organization"
)

// ==================== Division DTOs ====================

// CreateDivisionRequest opens a new division
type CreateDivisionRequest struct {
	Code        string
	Name        string
	Description string
}

// UpdateDivisionRequest changes a division's descriptive fields
type UpdateDivisionRequest struct {
	Name        *string
	Description *string
}

// DivisionResponse is the view of a division
type DivisionResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

// ToDivisionResponse converts a division to its view
func ToDivisionResponse(d *organization.Division) DivisionResponse {
	return DivisionResponse{
		ID:          d.ID,
		Code:        d.Code,
		Name:        d.Name,
		Description: d.Description,
		Active:      d.Active,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		Version:     d.Version,
	}
}

// ==================== Project DTOs ====================

// CreateProjectRequest opens a customer job in a division
type CreateProjectRequest struct {
	DivisionID   uuid.UUID
	Code         string
	Name         string
	CustomerName string
	SiteAddress  string
}

// UpdateProjectRequest changes a project's descriptive fields or status
type UpdateProjectRequest struct {
	Name         *string
	CustomerName *string
	SiteAddress  *string
	Status       *organization.ProjectStatus
}

// ProjectListFilter is the query accepted by project listings
type ProjectListFilter struct {
	Page       int
	PageSize   int
	Search     string
	DivisionID *uuid.UUID
	Status     organization.ProjectStatus
}

// ProjectResponse is the view of a project
type ProjectResponse struct {
	ID           uuid.UUID                  `json:"id"`
	DivisionID   uuid.UUID                  `json:"division_id"`
	Code         string                     `json:"code"`
	Name         string                     `json:"name"`
	CustomerName string                     `json:"customer_name,omitempty"`
	SiteAddress  string                     `json:"site_address,omitempty"`
	Status       organization.ProjectStatus `json:"status"`
	CreatedAt    time.Time                  `json:"created_at"`
	UpdatedAt    time.Time                  `json:"updated_at"`
	Version      int                        `json:"version"`
}

// ToProjectResponse converts a project to its view
func ToProjectResponse(p *organization.Project) ProjectResponse {
	return ProjectResponse{
		ID:           p.ID,
		DivisionID:   p.DivisionID,
		Code:         p.Code,
		Name:         p.Name,
		CustomerName: p.CustomerName,
		SiteAddress:  p.SiteAddress,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Version:      p.Version,
	}
}

// ==================== Work Order DTOs ====================

// CreateWorkOrderRequest opens a work order on a project. A nil Number
// takes the next free number in the division.
type CreateWorkOrderRequest struct {
	ProjectID   uuid.UUID
	Number      *int
	Description string
}

// WorkOrderListFilter is the query accepted by work order listings
type WorkOrderListFilter struct {
	Page      int
	PageSize  int
	ProjectID *uuid.UUID
	Status    organization.WorkOrderStatus
}

// WorkOrderResponse is the view of a work order
type WorkOrderResponse struct {
	ID                   uuid.UUID                    `json:"id"`
	ProjectID            uuid.UUID                    `json:"project_id"`
	DivisionID           uuid.UUID                    `json:"division_id"`
	Number               int                          `json:"number"`
	Description          string                       `json:"description,omitempty"`
	Status               organization.WorkOrderStatus `json:"status"`
	LastPurchaseSequence int                          `json:"last_purchase_sequence"`
	ClosedAt             *time.Time                   `json:"closed_at,omitempty"`
	CreatedAt            time.Time                    `json:"created_at"`
	Version              int                          `json:"version"`
}

// ToWorkOrderResponse converts a work order to its view
func ToWorkOrderResponse(w *organization.WorkOrder) WorkOrderResponse {
	return WorkOrderResponse{
		ID:                   w.ID,
		ProjectID:            w.ProjectID,
		DivisionID:           w.DivisionID,
		Number:               w.Number,
		Description:          w.Description,
		Status:               w.Status,
		LastPurchaseSequence: w.LastPurchaseSequence,
		ClosedAt:             w.ClosedAt,
		CreatedAt:            w.CreatedAt,
		Version:              w.Version,
	}
}
