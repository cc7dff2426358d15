package organization

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/shared"
)

// ProjectStatus represents the lifecycle of a job site
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusOnHold    ProjectStatus = "ON_HOLD"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
)

// IsValid checks if the status is known
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusOnHold, ProjectStatusCompleted:
		return true
	}
	return false
}

// Project is a customer job, such as a re-roof at one address
type Project struct {
	shared.BaseAggregateRoot
	DivisionID   uuid.UUID
	Code         string
	Name         string
	CustomerName string
	SiteAddress  string
	Status       ProjectStatus
}

// NewProject creates an active project in a division
func NewProject(divisionID uuid.UUID, code, name string) (*Project, error) {
	if divisionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DIVISION", "Division ID cannot be empty")
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Project code must be 1-50 characters")
	}
	if err := validateName(name, "project"); err != nil {
		return nil, err
	}

	return &Project{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DivisionID:        divisionID,
		Code:              code,
		Name:              strings.TrimSpace(name),
		Status:            ProjectStatusActive,
	}, nil
}

// Update changes the descriptive fields
func (p *Project) Update(name, customerName, siteAddress string) error {
	if err := validateName(name, "project"); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(name)
	p.CustomerName = strings.TrimSpace(customerName)
	p.SiteAddress = strings.TrimSpace(siteAddress)
	p.MarkModified()
	return nil
}

// SetStatus moves the project; a completed project cannot be reopened
func (p *Project) SetStatus(status ProjectStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown project status %s", status))
	}
	if p.Status == ProjectStatusCompleted && status != ProjectStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "A completed project cannot be reopened")
	}
	p.Status = status
	p.MarkModified()
	return nil
}

// AcceptsPurchases reports whether new POs may be raised on the project
func (p *Project) AcceptsPurchases() bool {
	return p.Status == ProjectStatusActive
}
