package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/shared"
)

// VendorFilter narrows vendor listings
type VendorFilter struct {
	shared.Filter
	Active *bool
}

// VendorRepository defines persistence for vendors
type VendorRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Vendor, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Vendor, error)
	FindAll(ctx context.Context, filter VendorFilter) ([]Vendor, int64, error)
	Save(ctx context.Context, vendor *Vendor) error
	ExistsByCode(ctx context.Context, code string) (bool, error)
}
