package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/roofpo/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormHistoryRepository stores the purchase order audit trail
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GormHistoryRepository
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Append writes one entry. Replaying the same event is a no-op.
func (r *GormHistoryRepository) Append(ctx context.Context, entry *procurement.HistoryEntry) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(models.HistoryModelFromDomain(entry)).Error
}

// FindByPurchaseOrder returns the trail of an order in the order events happened
func (r *GormHistoryRepository) FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]procurement.HistoryEntry, error) {
	var rows []models.HistoryModel
	if err := r.db.WithContext(ctx).
		Where("purchase_order_id = ?", purchaseOrderID).
		Order("occurred_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]procurement.HistoryEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}
