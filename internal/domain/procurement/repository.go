package procurement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/procurement/ponumber"
	"github.com/roofpo/backend/internal/domain/shared"
)

// PurchaseOrderFilter narrows purchase order queries
type PurchaseOrderFilter struct {
	shared.Filter
	Statuses []Status
	// DivisionIDs restricts results to the caller's divisions, empty means all
	DivisionIDs     []uuid.UUID
	DivisionID      *uuid.UUID
	ProjectID       *uuid.UUID
	WorkOrderID     *uuid.UUID
	VendorID        *uuid.UUID
	RequestedBy     *uuid.UUID
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
	IncludeArchived bool
}

// PurchaseOrderRepository persists purchase order aggregates with their
// lines, approvals and receipts
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	// FindByNumber looks up the current-format number string
	FindByNumber(ctx context.Context, number string) (*PurchaseOrder, error)
	FindByComponents(ctx context.Context, n ponumber.Number) (*PurchaseOrder, error)
	FindAll(ctx context.Context, filter PurchaseOrderFilter) ([]PurchaseOrder, int64, error)
	Save(ctx context.Context, po *PurchaseOrder) error
	// SaveWithLock saves only if the stored version is one behind the aggregate
	SaveWithLock(ctx context.Context, po *PurchaseOrder) error
	// SettleWithLock saves a paid order and its settled invoices in one transaction
	SettleWithLock(ctx context.Context, po *PurchaseOrder, invoices []*Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context, divisionIDs []uuid.UUID) (map[Status]int64, error)
	// PendingApproval returns submitted orders, optionally scoped to divisions
	PendingApproval(ctx context.Context, divisionIDs []uuid.UUID) ([]PurchaseOrder, error)
	FindArchivable(ctx context.Context, cutoff time.Time, limit int) ([]PurchaseOrder, error)
	MarkArchived(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// InvoiceFilter narrows invoice queries
type InvoiceFilter struct {
	shared.Filter
	PurchaseOrderID *uuid.UUID
	VendorID        *uuid.UUID
	Status          InvoiceStatus
}

// InvoiceRepository persists vendor invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]Invoice, error)
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, int64, error)
	Save(ctx context.Context, inv *Invoice) error
	ExistsByVendorNumber(ctx context.Context, vendorID uuid.UUID, number string) (bool, error)
}

// HistoryRepository stores the purchase order audit trail
type HistoryRepository interface {
	Append(ctx context.Context, entry *HistoryEntry) error
	FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]HistoryEntry, error)
}

// ArchivedOrder is the flattened copy of a closed order kept in the archive
type ArchivedOrder struct {
	ID           uuid.UUID
	PONumber     string
	LegacyNumber string
	DivisionID   uuid.UUID
	ProjectID    uuid.UUID
	WorkOrderID  uuid.UUID
	VendorID     uuid.UUID
	RequestedBy  uuid.UUID
	Description  string
	Status       Status
	Total        string
	ClosedAt     time.Time
	ArchivedAt   time.Time
	// Snapshot is the JSON document of the full order
	Snapshot string
}

// ArchiveFilter narrows archive searches
type ArchiveFilter struct {
	shared.Filter
	DivisionIDs []uuid.UUID
	VendorID    *uuid.UUID
	ClosedFrom  *time.Time
	ClosedTo    *time.Time
}

// ArchiveStore keeps closed purchase orders out of the primary database
type ArchiveStore interface {
	Store(ctx context.Context, orders []ArchivedOrder) error
	Find(ctx context.Context, id uuid.UUID) (*ArchivedOrder, error)
	Search(ctx context.Context, filter ArchiveFilter) ([]ArchivedOrder, int64, error)
}
