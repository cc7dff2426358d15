package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID, division memberships included
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	user := model.ToDomain()
	if err := r.loadDivisions(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail finds a user by email, division memberships included
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	user := model.ToDomain()
	if err := r.loadDivisions(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// FindAll returns one page of users and the total match count
func (r *GormUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]identity.User, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.UserModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = paginate(query.Order(orderClause(filter.OrderBy, filter.OrderDir, UserSortFields, "created_at")), filter.Filter)

	var rows []models.UserModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	users := make([]identity.User, len(rows))
	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		users[i] = *rows[i].ToDomain()
		ids[i] = rows[i].ID
	}
	if len(ids) == 0 {
		return users, total, nil
	}

	var memberships []models.UserDivisionModel
	if err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Find(&memberships).Error; err != nil {
		return nil, 0, err
	}
	byUser := make(map[uuid.UUID][]uuid.UUID, len(ids))
	for _, m := range memberships {
		byUser[m.UserID] = append(byUser[m.UserID], m.DivisionID)
	}
	for i := range users {
		if divs := byUser[users[i].ID]; divs != nil {
			users[i].DivisionIDs = divs
		}
	}
	return users, total, nil
}

// Save creates or updates a user and replaces their division memberships
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(models.UserModelFromDomain(user)).Error; err != nil {
			return translateWriteError(err)
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserDivisionModel{}).Error; err != nil {
			return err
		}
		if len(user.DivisionIDs) == 0 {
			return nil
		}
		now := time.Now()
		memberships := make([]models.UserDivisionModel, len(user.DivisionIDs))
		for i, divisionID := range user.DivisionIDs {
			memberships[i] = models.UserDivisionModel{
				UserID:     user.ID,
				DivisionID: divisionID,
				CreatedAt:  now,
			}
		}
		return tx.Create(&memberships).Error
	})
}

// ExistsByEmail checks if an email is registered
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByLeaderID checks if a leader code is held by a user other than excludeID
func (r *GormUserRepository) ExistsByLeaderID(ctx context.Context, leaderID string, excludeID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("leader_id = ? AND id <> ?", strings.ToUpper(leaderID), excludeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count returns the number of registered users
func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormUserRepository) loadDivisions(ctx context.Context, user *identity.User) error {
	var memberships []models.UserDivisionModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", user.ID).
		Find(&memberships).Error; err != nil {
		return err
	}
	divisionIDs := make([]uuid.UUID, len(memberships))
	for i, m := range memberships {
		divisionIDs[i] = m.DivisionID
	}
	user.DivisionIDs = divisionIDs
	return nil
}

func (r *GormUserRepository) applyFilter(query *gorm.DB, filter identity.UserFilter) *gorm.DB {
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.DivisionID != nil {
		query = query.Where("id IN (?)",
			r.db.Model(&models.UserDivisionModel{}).Select("user_id").Where("division_id = ?", *filter.DivisionID))
	}
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("email ILIKE ? OR display_name ILIKE ?", searchPattern, searchPattern)
	}
	return query
}
