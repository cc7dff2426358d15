package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/partner"
	"github.com/roofpo/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormVendorRepository implements VendorRepository using GORM
type GormVendorRepository struct {
	db *gorm.DB
}

// NewGormVendorRepository creates a new GormVendorRepository
func NewGormVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

// FindByID finds a vendor by its ID
func (r *GormVendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Vendor, error) {
	var model models.VendorModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs loads several vendors at once, keyed by ID. Unknown IDs are skipped.
func (r *GormVendorRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*partner.Vendor, error) {
	vendors := make(map[uuid.UUID]*partner.Vendor, len(ids))
	if len(ids) == 0 {
		return vendors, nil
	}
	var rows []models.VendorModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		vendors[rows[i].ID] = rows[i].ToDomain()
	}
	return vendors, nil
}

// FindAll returns one page of vendors and the total match count
func (r *GormVendorRepository) FindAll(ctx context.Context, filter partner.VendorFilter) ([]partner.Vendor, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.VendorModel{})
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ? OR email ILIKE ?", searchPattern, searchPattern, searchPattern)
	}
	if terms, ok := filter.Filters["payment_terms"]; ok {
		query = query.Where("payment_terms = ?", terms)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = paginate(query.Order(orderClause(filter.OrderBy, filter.OrderDir, VendorSortFields, "name")), filter.Filter)

	var rows []models.VendorModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	vendors := make([]partner.Vendor, len(rows))
	for i := range rows {
		vendors[i] = *rows[i].ToDomain()
	}
	return vendors, total, nil
}

// Save creates or updates a vendor
func (r *GormVendorRepository) Save(ctx context.Context, vendor *partner.Vendor) error {
	if err := r.db.WithContext(ctx).Save(models.VendorModelFromDomain(vendor)).Error; err != nil {
		return translateWriteError(err)
	}
	return nil
}

// ExistsByCode checks if a vendor code is taken
func (r *GormVendorRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.VendorModel{}).
		Where("code = ?", strings.ToUpper(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
