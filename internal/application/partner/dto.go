package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/partner"
)

// CreateVendorRequest registers a supplier
type CreateVendorRequest struct {
	Code         string
	Name         string
	ContactName  string
	Email        string
	Phone        string
	Address      string
	PaymentTerms partner.PaymentTerms
	TaxID        string
}

// UpdateVendorRequest changes a vendor's details. Nil fields are left as they are.
type UpdateVendorRequest struct {
	Name         *string
	ContactName  *string
	Email        *string
	Phone        *string
	Address      *string
	PaymentTerms *partner.PaymentTerms
	TaxID        *string
}

// VendorListFilter is the query accepted by vendor listings
type VendorListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Active   *bool
}

// VendorResponse is the view of a vendor
type VendorResponse struct {
	ID           uuid.UUID            `json:"id"`
	Code         string               `json:"code"`
	Name         string               `json:"name"`
	ContactName  string               `json:"contact_name,omitempty"`
	Email        string               `json:"email,omitempty"`
	Phone        string               `json:"phone,omitempty"`
	Address      string               `json:"address,omitempty"`
	PaymentTerms partner.PaymentTerms `json:"payment_terms"`
	TaxID        string               `json:"tax_id,omitempty"`
	Active       bool                 `json:"active"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
	Version      int                  `json:"version"`
}

// ToVendorResponse converts a vendor to its view
func ToVendorResponse(v *partner.Vendor) VendorResponse {
	return VendorResponse{
		ID:           v.ID,
		Code:         v.Code,
		Name:         v.Name,
		ContactName:  v.ContactName,
		Email:        v.Email,
		Phone:        v.Phone,
		Address:      v.Address,
		PaymentTerms: v.PaymentTerms,
		TaxID:        v.TaxID,
		Active:       v.Active,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
		Version:      v.Version,
	}
}
