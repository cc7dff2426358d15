package models

import (
	"github.com/roofpo/backend/internal/domain/partner"
)

// VendorModel is the persistence model for the Vendor aggregate root.
type VendorModel struct {
	AggregateModel
	Code         string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string               `gorm:"type:varchar(200);not null;index"`
	ContactName  string               `gorm:"type:varchar(200)"`
	Email        string               `gorm:"type:varchar(200)"`
	Phone        string               `gorm:"type:varchar(50)"`
	Address      string               `gorm:"type:varchar(500)"`
	PaymentTerms partner.PaymentTerms `gorm:"type:varchar(20);not null;default:'NET30'"`
	TaxID        string               `gorm:"type:varchar(50)"`
	Active       bool                 `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (VendorModel) TableName() string {
	return "vendors"
}

// ToDomain converts the persistence model to a domain Vendor.
func (m *VendorModel) ToDomain() *partner.Vendor {
	return &partner.Vendor{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		ContactName:       m.ContactName,
		Email:             m.Email,
		Phone:             m.Phone,
		Address:           m.Address,
		PaymentTerms:      m.PaymentTerms,
		TaxID:             m.TaxID,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain Vendor.
func (m *VendorModel) FromDomain(v *partner.Vendor) {
	m.FromDomainAggregateRoot(v.BaseAggregateRoot)
	m.Code = v.Code
	m.Name = v.Name
	m.ContactName = v.ContactName
	m.Email = v.Email
	m.Phone = v.Phone
	m.Address = v.Address
	m.PaymentTerms = v.PaymentTerms
	m.TaxID = v.TaxID
	m.Active = v.Active
}

// VendorModelFromDomain creates a new persistence model from a domain Vendor.
func VendorModelFromDomain(v *partner.Vendor) *VendorModel {
	m := &VendorModel{}
	m.FromDomain(v)
	return m
}
