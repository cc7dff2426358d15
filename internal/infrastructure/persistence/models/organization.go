package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/organization"
)

// DivisionModel is the persistence model for the Division aggregate root.
type DivisionModel struct {
	AggregateModel
	Code        string `gorm:"type:varchar(3);not null;uniqueIndex"`
	Name        string `gorm:"type:varchar(200);not null"`
	Description string `gorm:"type:text"`
	Active      bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (DivisionModel) TableName() string {
	return "divisions"
}

// ToDomain converts the persistence model to a domain Division.
func (m *DivisionModel) ToDomain() *organization.Division {
	return &organization.Division{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Description:       m.Description,
		Active:            m.Active,
	}
}

// DivisionModelFromDomain creates a persistence model from a domain Division.
func DivisionModelFromDomain(d *organization.Division) *DivisionModel {
	m := &DivisionModel{
		Code:        d.Code,
		Name:        d.Name,
		Description: d.Description,
		Active:      d.Active,
	}
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	return m
}

// ProjectModel is the persistence model for the Project aggregate root.
type ProjectModel struct {
	AggregateModel
	DivisionID   uuid.UUID                  `gorm:"type:uuid;not null;index"`
	Code         string                     `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string                     `gorm:"type:varchar(200);not null"`
	CustomerName string                     `gorm:"type:varchar(200)"`
	SiteAddress  string                     `gorm:"type:varchar(500)"`
	Status       organization.ProjectStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the persistence model to a domain Project.
func (m *ProjectModel) ToDomain() *organization.Project {
	return &organization.Project{
		BaseAggregateRoot: m.ToAggregateRoot(),
		DivisionID:        m.DivisionID,
		Code:              m.Code,
		Name:              m.Name,
		CustomerName:      m.CustomerName,
		SiteAddress:       m.SiteAddress,
		Status:            m.Status,
	}
}

// ProjectModelFromDomain creates a persistence model from a domain Project.
func ProjectModelFromDomain(p *organization.Project) *ProjectModel {
	m := &ProjectModel{
		DivisionID:   p.DivisionID,
		Code:         p.Code,
		Name:         p.Name,
		CustomerName: p.CustomerName,
		SiteAddress:  p.SiteAddress,
		Status:       p.Status,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// WorkOrderModel is the persistence model for the WorkOrder aggregate root.
type WorkOrderModel struct {
	AggregateModel
	ProjectID            uuid.UUID                    `gorm:"type:uuid;not null;index"`
	DivisionID           uuid.UUID                    `gorm:"type:uuid;not null;uniqueIndex:idx_work_order_division_number,priority:1"`
	Number               int                          `gorm:"not null;uniqueIndex:idx_work_order_division_number,priority:2"`
	Description          string                       `gorm:"type:varchar(500)"`
	Status               organization.WorkOrderStatus `gorm:"type:varchar(20);not null;default:'OPEN'"`
	LastPurchaseSequence int                          `gorm:"not null;default:0"`
	ClosedAt             *time.Time
}

// TableName returns the table name for GORM
func (WorkOrderModel) TableName() string {
	return "work_orders"
}

// ToDomain converts the persistence model to a domain WorkOrder.
func (m *WorkOrderModel) ToDomain() *organization.WorkOrder {
	return &organization.WorkOrder{
		BaseAggregateRoot:    m.ToAggregateRoot(),
		ProjectID:            m.ProjectID,
		DivisionID:           m.DivisionID,
		Number:               m.Number,
		Description:          m.Description,
		Status:               m.Status,
		LastPurchaseSequence: m.LastPurchaseSequence,
		ClosedAt:             m.ClosedAt,
	}
}

// WorkOrderModelFromDomain creates a persistence model from a domain WorkOrder.
func WorkOrderModelFromDomain(w *organization.WorkOrder) *WorkOrderModel {
	m := &WorkOrderModel{
		ProjectID:            w.ProjectID,
		DivisionID:           w.DivisionID,
		Number:               w.Number,
		Description:          w.Description,
		Status:               w.Status,
		LastPurchaseSequence: w.LastPurchaseSequence,
		ClosedAt:             w.ClosedAt,
	}
	m.FromDomainAggregateRoot(w.BaseAggregateRoot)
	return m
}
