package procurement

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/roofpo/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ArchiveJobName identifies the archive sweep in the scheduler
const ArchiveJobName = "po-archive"

// ArchiveSettings controls which closed orders move to the archive
type ArchiveSettings struct {
	RetentionDays int
	BatchSize     int
}

// ArchiveService moves paid and cancelled orders past retention into the archive store
type ArchiveService struct {
	orders   procurement.PurchaseOrderRepository
	store    procurement.ArchiveStore
	settings ArchiveSettings
	now      func() time.Time
	logger   *zap.Logger
}

// NewArchiveService creates a new ArchiveService
func NewArchiveService(
	orders procurement.PurchaseOrderRepository,
	store procurement.ArchiveStore,
	settings ArchiveSettings,
	logger *zap.Logger,
) *ArchiveService {
	if settings.BatchSize <= 0 {
		settings.BatchSize = 100
	}
	if settings.RetentionDays <= 0 {
		settings.RetentionDays = 365
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchiveService{
		orders:   orders,
		store:    store,
		settings: settings,
		now:      time.Now,
		logger:   logger,
	}
}

// Name implements scheduler.Job
func (s *ArchiveService) Name() string {
	return ArchiveJobName
}

// Run implements scheduler.Job
func (s *ArchiveService) Run(ctx context.Context) error {
	_, err := s.Sweep(ctx)
	return err
}

// Sweep archives every eligible order in batches until none remain.
// Orders are copied to the archive before they are flagged in the primary
// database, so an interrupted sweep only repeats work.
func (s *ArchiveService) Sweep(ctx context.Context) (*ArchiveRunResult, error) {
	cutoff := s.now().AddDate(0, 0, -s.settings.RetentionDays)
	result := &ArchiveRunResult{Cutoff: cutoff}

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		orders, err := s.orders.FindArchivable(ctx, cutoff, s.settings.BatchSize)
		if err != nil {
			return result, fmt.Errorf("find archivable orders: %w", err)
		}
		if len(orders) == 0 {
			break
		}

		archivedAt := s.now().UTC()
		records := make([]procurement.ArchivedOrder, 0, len(orders))
		ids := make([]uuid.UUID, 0, len(orders))
		for i := range orders {
			po := &orders[i]
			if !po.IsArchivable(cutoff) {
				continue
			}
			record, err := toArchivedOrder(po, archivedAt)
			if err != nil {
				return result, err
			}
			records = append(records, record)
			ids = append(ids, po.ID)
		}
		if len(records) == 0 {
			break
		}

		if err := s.store.Store(ctx, records); err != nil {
			return result, fmt.Errorf("store archive batch: %w", err)
		}
		if err := s.orders.MarkArchived(ctx, ids, archivedAt); err != nil {
			return result, fmt.Errorf("mark orders archived: %w", err)
		}

		result.Archived += len(records)
		result.Batches++

		if len(orders) < s.settings.BatchSize {
			break
		}
	}

	if result.Archived > 0 {
		s.logger.Info("Archived closed purchase orders",
			zap.Int("archived", result.Archived),
			zap.Int("batches", result.Batches),
			zap.Time("cutoff", cutoff))
	}
	return result, nil
}

// Get reads one archived order
func (s *ArchiveService) Get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*procurement.ArchivedOrder, error) {
	order, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessDivision(order.DivisionID) {
		return nil, shared.ErrNotFound
	}
	return order, nil
}

// Search lists archived orders visible to the actor
func (s *ArchiveService) Search(ctx context.Context, actor identity.Actor, filter ArchiveSearchFilter) ([]ArchivedOrderResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	orders, total, err := s.store.Search(ctx, procurement.ArchiveFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			Search:   filter.Search,
		},
		DivisionIDs: actor.DivisionScope(),
		VendorID:    filter.VendorID,
		ClosedFrom:  filter.ClosedFrom,
		ClosedTo:    filter.ClosedTo,
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]ArchivedOrderResponse, len(orders))
	for i := range orders {
		out[i] = ToArchivedOrderResponse(&orders[i])
	}
	return out, total, nil
}

func toArchivedOrder(po *procurement.PurchaseOrder, archivedAt time.Time) (procurement.ArchivedOrder, error) {
	snapshot, err := json.Marshal(ToPurchaseOrderResponse(po))
	if err != nil {
		return procurement.ArchivedOrder{}, fmt.Errorf("snapshot %s: %w", po.PONumber(), err)
	}

	closedAt := po.UpdatedAt
	switch {
	case po.PaidAt != nil:
		closedAt = *po.PaidAt
	case po.CancelledAt != nil:
		closedAt = *po.CancelledAt
	}
	legacy, _ := po.LegacyNumber()

	return procurement.ArchivedOrder{
		ID:           po.ID,
		PONumber:     po.PONumber(),
		LegacyNumber: legacy,
		DivisionID:   po.DivisionID,
		ProjectID:    po.ProjectID,
		WorkOrderID:  po.WorkOrderID,
		VendorID:     po.VendorID,
		RequestedBy:  po.RequestedBy,
		Description:  po.Description,
		Status:       po.Status,
		Total:        po.Total.StringFixed(2),
		ClosedAt:     closedAt,
		ArchivedAt:   archivedAt,
		Snapshot:     string(snapshot),
	}, nil
}
