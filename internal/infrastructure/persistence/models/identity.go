package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	AggregateModel
	Email             string        `gorm:"type:varchar(200);not null;uniqueIndex"`
	DisplayName       string        `gorm:"type:varchar(200);not null"`
	PasswordHash      string        `gorm:"type:varchar(255);not null"`
	Role              identity.Role `gorm:"type:varchar(30);not null;index"`
	LeaderID          *string       `gorm:"type:varchar(2);uniqueIndex"`
	Active            bool          `gorm:"not null;default:true"`
	LastLoginAt       *time.Time    `gorm:"index"`
	PasswordChangedAt *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
// Note: DivisionIDs must be loaded separately by the repository.
func (m *UserModel) ToDomain() *identity.User {
	user := &identity.User{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Email:             m.Email,
		DisplayName:       m.DisplayName,
		PasswordHash:      m.PasswordHash,
		Role:              m.Role,
		DivisionIDs:       make([]uuid.UUID, 0), // Loaded separately
		Active:            m.Active,
		LastLoginAt:       m.LastLoginAt,
		PasswordChangedAt: m.PasswordChangedAt,
	}
	if m.LeaderID != nil {
		user.LeaderID = *m.LeaderID
	}
	return user
}

// FromDomain populates the persistence model from a domain User entity.
// An empty leader ID is stored as NULL so the unique index only covers assigned codes.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Email = u.Email
	m.DisplayName = u.DisplayName
	m.PasswordHash = u.PasswordHash
	m.Role = u.Role
	m.LeaderID = nil
	if u.LeaderID != "" {
		leader := u.LeaderID
		m.LeaderID = &leader
	}
	m.Active = u.Active
	m.LastLoginAt = u.LastLoginAt
	m.PasswordChangedAt = u.PasswordChangedAt
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// UserDivisionModel is the membership of a user in a division
type UserDivisionModel struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	DivisionID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserDivisionModel) TableName() string {
	return "user_divisions"
}
