package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/partner"
	"github.com/roofpo/backend/internal/domain/shared"
)

// VendorService handles vendor business operations
type VendorService struct {
	vendorRepo partner.VendorRepository
}

// NewVendorService creates a new VendorService
func NewVendorService(vendorRepo partner.VendorRepository) *VendorService {
	return &VendorService{vendorRepo: vendorRepo}
}

// Create creates a new vendor
func (s *VendorService) Create(ctx context.Context, req CreateVendorRequest) (*VendorResponse, error) {
	vendor, err := partner.NewVendor(req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	// Check if code already exists
	exists, err := s.vendorRepo.ExistsByCode(ctx, vendor.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Vendor with this code already exists")
	}

	if req.ContactName != "" || req.Email != "" || req.Phone != "" || req.Address != "" {
		if err := vendor.SetContact(partner.ContactInfo{
			ContactName: req.ContactName,
			Email:       req.Email,
			Phone:       req.Phone,
			Address:     req.Address,
		}); err != nil {
			return nil, err
		}
	}
	if req.PaymentTerms != "" {
		if err := vendor.SetPaymentTerms(req.PaymentTerms); err != nil {
			return nil, err
		}
	}
	if req.TaxID != "" {
		if err := vendor.SetTaxID(req.TaxID); err != nil {
			return nil, err
		}
	}
	vendor.Version = 1

	if err := s.vendorRepo.Save(ctx, vendor); err != nil {
		return nil, err
	}
	response := ToVendorResponse(vendor)
	return &response, nil
}

// GetByID retrieves a vendor by ID
func (s *VendorService) GetByID(ctx context.Context, id uuid.UUID) (*VendorResponse, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToVendorResponse(vendor)
	return &response, nil
}

// List retrieves vendors with filtering and pagination
func (s *VendorService) List(ctx context.Context, filter VendorListFilter) ([]VendorResponse, int64, error) {
	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	vendors, total, err := s.vendorRepo.FindAll(ctx, partner.VendorFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		Active: filter.Active,
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]VendorResponse, len(vendors))
	for i := range vendors {
		out[i] = ToVendorResponse(&vendors[i])
	}
	return out, total, nil
}

// Update changes a vendor's details
func (s *VendorService) Update(ctx context.Context, id uuid.UUID, req UpdateVendorRequest) (*VendorResponse, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	version := vendor.Version

	if req.Name != nil {
		if err := vendor.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.ContactName != nil || req.Email != nil || req.Phone != nil || req.Address != nil {
		info := partner.ContactInfo{
			ContactName: vendor.ContactName,
			Email:       vendor.Email,
			Phone:       vendor.Phone,
			Address:     vendor.Address,
		}
		if req.ContactName != nil {
			info.ContactName = *req.ContactName
		}
		if req.Email != nil {
			info.Email = *req.Email
		}
		if req.Phone != nil {
			info.Phone = *req.Phone
		}
		if req.Address != nil {
			info.Address = *req.Address
		}
		if err := vendor.SetContact(info); err != nil {
			return nil, err
		}
	}
	if req.PaymentTerms != nil {
		if err := vendor.SetPaymentTerms(*req.PaymentTerms); err != nil {
			return nil, err
		}
	}
	if req.TaxID != nil {
		if err := vendor.SetTaxID(*req.TaxID); err != nil {
			return nil, err
		}
	}
	if vendor.Version != version {
		vendor.Version = version + 1
	}

	if err := s.vendorRepo.Save(ctx, vendor); err != nil {
		return nil, err
	}
	response := ToVendorResponse(vendor)
	return &response, nil
}

// Deactivate blocks new purchase orders against the vendor
func (s *VendorService) Deactivate(ctx context.Context, id uuid.UUID) (*VendorResponse, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := vendor.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.vendorRepo.Save(ctx, vendor); err != nil {
		return nil, err
	}
	response := ToVendorResponse(vendor)
	return &response, nil
}

// Activate re-enables a vendor
func (s *VendorService) Activate(ctx context.Context, id uuid.UUID) (*VendorResponse, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	vendor.Activate()
	if err := s.vendorRepo.Save(ctx, vendor); err != nil {
		return nil, err
	}
	response := ToVendorResponse(vendor)
	return &response, nil
}
