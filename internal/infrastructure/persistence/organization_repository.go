package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/organization"
	"github.com/roofpo/backend/internal/domain/shared"
	"github.com/roofpo/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDivisionRepository implements DivisionRepository using GORM
type GormDivisionRepository struct {
	db *gorm.DB
}

// NewGormDivisionRepository creates a new GormDivisionRepository
func NewGormDivisionRepository(db *gorm.DB) *GormDivisionRepository {
	return &GormDivisionRepository{db: db}
}

// FindByID finds a division by its ID
func (r *GormDivisionRepository) FindByID(ctx context.Context, id uuid.UUID) (*organization.Division, error) {
	var model models.DivisionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds a division by its code
func (r *GormDivisionRepository) FindByCode(ctx context.Context, code string) (*organization.Division, error) {
	var model models.DivisionModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", strings.ToUpper(code)).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns one page of divisions and the total match count
func (r *GormDivisionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]organization.Division, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.DivisionModel{})
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", searchPattern, searchPattern)
	}
	if active, ok := filter.Filters["active"]; ok {
		query = query.Where("active = ?", active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = paginate(query.Order(orderClause(filter.OrderBy, filter.OrderDir, DivisionSortFields, "code")), filter)

	var rows []models.DivisionModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	divisions := make([]organization.Division, len(rows))
	for i := range rows {
		divisions[i] = *rows[i].ToDomain()
	}
	return divisions, total, nil
}

// Save creates or updates a division
func (r *GormDivisionRepository) Save(ctx context.Context, division *organization.Division) error {
	if err := r.db.WithContext(ctx).Save(models.DivisionModelFromDomain(division)).Error; err != nil {
		return translateWriteError(err)
	}
	return nil
}

// ExistsByCode checks if a division code is taken
func (r *GormDivisionRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DivisionModel{}).
		Where("code = ?", strings.ToUpper(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormProjectRepository implements ProjectRepository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// FindByID finds a project by its ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*organization.Project, error) {
	var model models.ProjectModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns one page of projects and the total match count
func (r *GormProjectRepository) FindAll(ctx context.Context, filter organization.ProjectFilter) ([]organization.Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProjectModel{})
	if len(filter.DivisionIDs) > 0 {
		query = query.Where("division_id IN ?", filter.DivisionIDs)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ? OR customer_name ILIKE ?", searchPattern, searchPattern, searchPattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = paginate(query.Order(orderClause(filter.OrderBy, filter.OrderDir, ProjectSortFields, "created_at")), filter.Filter)

	var rows []models.ProjectModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	projects := make([]organization.Project, len(rows))
	for i := range rows {
		projects[i] = *rows[i].ToDomain()
	}
	return projects, total, nil
}

// Save creates or updates a project
func (r *GormProjectRepository) Save(ctx context.Context, project *organization.Project) error {
	if err := r.db.WithContext(ctx).Save(models.ProjectModelFromDomain(project)).Error; err != nil {
		return translateWriteError(err)
	}
	return nil
}

// Delete removes a project
func (r *GormProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProjectModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByCode checks if a project code is taken
func (r *GormProjectRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProjectModel{}).
		Where("code = ?", strings.ToUpper(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormWorkOrderRepository implements WorkOrderRepository using GORM
type GormWorkOrderRepository struct {
	db *gorm.DB
}

// NewGormWorkOrderRepository creates a new GormWorkOrderRepository
func NewGormWorkOrderRepository(db *gorm.DB) *GormWorkOrderRepository {
	return &GormWorkOrderRepository{db: db}
}

// FindByID finds a work order by its ID
func (r *GormWorkOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*organization.WorkOrder, error) {
	var model models.WorkOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a work order by its number within a division
func (r *GormWorkOrderRepository) FindByNumber(ctx context.Context, divisionID uuid.UUID, number int) (*organization.WorkOrder, error) {
	var model models.WorkOrderModel
	if err := r.db.WithContext(ctx).
		Where("division_id = ? AND number = ?", divisionID, number).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns one page of work orders and the total match count
func (r *GormWorkOrderRepository) FindAll(ctx context.Context, filter organization.WorkOrderFilter) ([]organization.WorkOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.WorkOrderModel{})
	if len(filter.DivisionIDs) > 0 {
		query = query.Where("division_id IN ?", filter.DivisionIDs)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("description ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = paginate(query.Order(orderClause(filter.OrderBy, filter.OrderDir, WorkOrderSortFields, "number")), filter.Filter)

	var rows []models.WorkOrderModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	workOrders := make([]organization.WorkOrder, len(rows))
	for i := range rows {
		workOrders[i] = *rows[i].ToDomain()
	}
	return workOrders, total, nil
}

// Save creates or updates a work order
func (r *GormWorkOrderRepository) Save(ctx context.Context, workOrder *organization.WorkOrder) error {
	if err := r.db.WithContext(ctx).Save(models.WorkOrderModelFromDomain(workOrder)).Error; err != nil {
		return translateWriteError(err)
	}
	return nil
}

// SaveWithLock saves the work order only if nobody else bumped it since it was loaded.
// Two buyers drawing a purchase sequence at once cannot both win.
func (r *GormWorkOrderRepository) SaveWithLock(ctx context.Context, workOrder *organization.WorkOrder) error {
	model := models.WorkOrderModelFromDomain(workOrder)
	result := r.db.WithContext(ctx).Model(&models.WorkOrderModel{}).
		Where("id = ? AND version = ?", workOrder.ID, workOrder.Version-1).
		Updates(map[string]any{
			"description":            model.Description,
			"status":                 model.Status,
			"last_purchase_sequence": model.LastPurchaseSequence,
			"closed_at":              model.ClosedAt,
			"version":                model.Version,
			"updated_at":             model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "The work order has been modified by another user")
	}
	return nil
}

// Delete removes a work order
func (r *GormWorkOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.WorkOrderModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// NextNumber returns one past the highest work order number in the division
func (r *GormWorkOrderRepository) NextNumber(ctx context.Context, divisionID uuid.UUID) (int, error) {
	var maxNumber *int
	if err := r.db.WithContext(ctx).
		Model(&models.WorkOrderModel{}).
		Where("division_id = ?", divisionID).
		Select("MAX(number)").
		Scan(&maxNumber).Error; err != nil {
		return 0, err
	}
	if maxNumber == nil {
		return 1, nil
	}
	return *maxNumber + 1, nil
}

func paginate(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}
