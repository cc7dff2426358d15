package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/roofpo/backend/internal/domain/procurement/ponumber"
	"github.com/roofpo/backend/internal/domain/shared"
	"github.com/roofpo/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

func (r *GormPurchaseOrderRepository) withChildren(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") }).
		Preload("Approvals", func(db *gorm.DB) *gorm.DB { return db.Order("decided_at ASC") }).
		Preload("Receipts", func(db *gorm.DB) *gorm.DB { return db.Order("received_at ASC") }).
		Preload("Receipts.Lines")
}

func (r *GormPurchaseOrderRepository) first(query *gorm.DB) (*procurement.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := query.First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByID finds a purchase order by its ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	return r.first(r.withChildren(ctx).Where("id = ?", id))
}

// FindByNumber finds a purchase order by its current-format number
func (r *GormPurchaseOrderRepository) FindByNumber(ctx context.Context, number string) (*procurement.PurchaseOrder, error) {
	return r.first(r.withChildren(ctx).Where("po_number = ?", number))
}

// FindByComponents finds a purchase order by the logical fields of its number.
// Leader and division codes are compared case-insensitively.
func (r *GormPurchaseOrderRepository) FindByComponents(ctx context.Context, n ponumber.Number) (*procurement.PurchaseOrder, error) {
	return r.first(r.withChildren(ctx).
		Where("UPPER(leader_id) = UPPER(?) AND UPPER(division_code) = UPPER(?) AND work_order_number = ? AND purchase_sequence = ?",
			n.LeaderID, n.DivisionCode, n.WorkOrderNumber, n.PurchaseSequence))
}

// FindAll returns one page of purchase orders matching the filter and the total match count
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter procurement.PurchaseOrderFilter) ([]procurement.PurchaseOrder, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(orderClause(filter.OrderBy, filter.OrderDir, PurchaseOrderSortFields, "created_at"))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var orderModels []models.PurchaseOrderModel
	if err := query.Preload("Items").Find(&orderModels).Error; err != nil {
		return nil, 0, err
	}
	return toDomainOrders(orderModels), total, nil
}

// Save creates or updates a purchase order with its children.
// Line items are synchronised; approvals and receipts are append-only.
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, po *procurement.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.PurchaseOrderModelFromDomain(po)
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return translateWriteError(err)
		}
		return saveChildren(tx, po)
	})
}

// SaveWithLock updates a purchase order only if the stored version is the one the
// aggregate was loaded with
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, po *procurement.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return updateWithLock(tx, po)
	})
}

// SettleWithLock updates a paid order and marks its invoices settled in the same
// transaction, so an order never reads PAID while its invoices stay recorded
func (r *GormPurchaseOrderRepository) SettleWithLock(ctx context.Context, po *procurement.PurchaseOrder, invoices []*procurement.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateWithLock(tx, po); err != nil {
			return err
		}
		for _, inv := range invoices {
			if err := tx.Save(models.InvoiceModelFromDomain(inv)).Error; err != nil {
				return translateWriteError(err)
			}
		}
		return nil
	})
}

func updateWithLock(tx *gorm.DB, po *procurement.PurchaseOrder) error {
	model := models.PurchaseOrderModelFromDomain(po)
	expected := po.Version - 1

	result := tx.Model(&models.PurchaseOrderModel{}).
		Where("id = ? AND version = ?", po.ID, expected).
		Updates(model.UpdateColumns())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "The purchase order has been modified by another user")
	}
	return saveChildren(tx, po)
}

func saveChildren(tx *gorm.DB, po *procurement.PurchaseOrder) error {
	currentItemIDs := make([]uuid.UUID, len(po.Items))
	for i, item := range po.Items {
		currentItemIDs[i] = item.ID
	}

	// Delete items not in the current list
	removed := tx.Where("purchase_order_id = ?", po.ID)
	if len(currentItemIDs) > 0 {
		removed = removed.Where("id NOT IN ?", currentItemIDs)
	}
	if err := removed.Delete(&models.PurchaseOrderItemModel{}).Error; err != nil {
		return err
	}

	for i := range po.Items {
		po.Items[i].PurchaseOrderID = po.ID
		if err := tx.Save(models.PurchaseOrderItemModelFromDomain(&po.Items[i])).Error; err != nil {
			return err
		}
	}

	for i := range po.Approvals {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(models.ApprovalModelFromDomain(&po.Approvals[i])).Error; err != nil {
			return err
		}
	}

	for i := range po.Receipts {
		receipt := models.ReceiptModelFromDomain(&po.Receipts[i])
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Omit("Lines").Create(receipt).Error; err != nil {
			return err
		}
		if len(receipt.Lines) == 0 {
			continue
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&receipt.Lines).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete soft-deletes a purchase order
func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PurchaseOrderModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByStatus counts live orders per status
func (r *GormPurchaseOrderRepository) CountByStatus(ctx context.Context, divisionIDs []uuid.UUID) (map[procurement.Status]int64, error) {
	type statusCount struct {
		Status procurement.Status
		Count  int64
	}

	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Select("status, COUNT(*) as count").
		Where("archived_at IS NULL")
	if len(divisionIDs) > 0 {
		query = query.Where("division_id IN ?", divisionIDs)
	}

	var rows []statusCount
	if err := query.Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[procurement.Status]int64, len(procurement.AllStatuses()))
	for _, s := range procurement.AllStatuses() {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// PendingApproval returns submitted orders, oldest submission first
func (r *GormPurchaseOrderRepository) PendingApproval(ctx context.Context, divisionIDs []uuid.UUID) ([]procurement.PurchaseOrder, error) {
	query := r.db.WithContext(ctx).
		Preload("Approvals").
		Where("status = ?", procurement.StatusSubmitted)
	if len(divisionIDs) > 0 {
		query = query.Where("division_id IN ?", divisionIDs)
	}

	var orderModels []models.PurchaseOrderModel
	if err := query.Order("submitted_at ASC").Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(orderModels), nil
}

// FindArchivable returns closed orders last touched before the cutoff that are not yet archived
func (r *GormPurchaseOrderRepository) FindArchivable(ctx context.Context, cutoff time.Time, limit int) ([]procurement.PurchaseOrder, error) {
	query := r.withChildren(ctx).
		Where("status IN ?", []procurement.Status{procurement.StatusPaid, procurement.StatusCancelled}).
		Where("archived_at IS NULL").
		Where("updated_at < ?", cutoff).
		Order("updated_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var orderModels []models.PurchaseOrderModel
	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(orderModels), nil
}

// MarkArchived stamps orders as archived so they drop out of live listings
func (r *GormPurchaseOrderRepository) MarkArchived(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Where("id IN ? AND archived_at IS NULL", ids).
		Update("archived_at", at).Error
}

func (r *GormPurchaseOrderRepository) applyFilter(query *gorm.DB, filter procurement.PurchaseOrderFilter) *gorm.DB {
	if !filter.IncludeArchived {
		query = query.Where("archived_at IS NULL")
	}
	if len(filter.DivisionIDs) > 0 {
		query = query.Where("division_id IN ?", filter.DivisionIDs)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.DivisionID != nil {
		query = query.Where("division_id = ?", *filter.DivisionID)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.WorkOrderID != nil {
		query = query.Where("work_order_id = ?", *filter.WorkOrderID)
	}
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}
	if filter.RequestedBy != nil {
		query = query.Where("requested_by = ?", *filter.RequestedBy)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("po_number ILIKE ? OR description ILIKE ?", searchPattern, searchPattern)
	}
	return query
}

func toDomainOrders(orderModels []models.PurchaseOrderModel) []procurement.PurchaseOrder {
	orders := make([]procurement.PurchaseOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders
}
