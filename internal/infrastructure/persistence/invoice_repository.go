package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/roofpo/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByPurchaseOrder returns every invoice recorded against an order, void ones included
func (r *GormInvoiceRepository) FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]procurement.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("purchase_order_id = ?", purchaseOrderID).
		Order("invoice_date ASC, created_at ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toDomainInvoices(invoiceModels), nil
}

// FindAll returns one page of invoices matching the filter and the total match count
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter procurement.InvoiceFilter) ([]procurement.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
	if filter.PurchaseOrderID != nil {
		query = query.Where("purchase_order_id = ?", *filter.PurchaseOrderID)
	}
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("number ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(orderClause(filter.OrderBy, filter.OrderDir, InvoiceSortFields, "invoice_date"))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var invoiceModels []models.InvoiceModel
	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, 0, err
	}
	return toDomainInvoices(invoiceModels), total, nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *procurement.Invoice) error {
	if err := r.db.WithContext(ctx).Save(models.InvoiceModelFromDomain(inv)).Error; err != nil {
		return translateWriteError(err)
	}
	return nil
}

// ExistsByVendorNumber reports whether the vendor already billed under this invoice number.
// Void invoices keep their number reserved.
func (r *GormInvoiceRepository) ExistsByVendorNumber(ctx context.Context, vendorID uuid.UUID, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("vendor_id = ? AND UPPER(number) = ?", vendorID, strings.ToUpper(strings.TrimSpace(number))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func toDomainInvoices(invoiceModels []models.InvoiceModel) []procurement.Invoice {
	invoices := make([]procurement.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = *invoiceModels[i].ToDomain()
	}
	return invoices
}
