package identity

import (
	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/shared"
)

// AggregateTypeUser is the aggregate type for user events
const AggregateTypeUser = "User"

// Event type constants
const (
	EventTypeUserCreated         = "UserCreated"
	EventTypeUserRoleChanged     = "UserRoleChanged"
	EventTypeUserPasswordChanged = "UserPasswordChanged"
	EventTypeUserDeactivated     = "UserDeactivated"
)

// UserCreatedEvent is raised when a user account is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, u.ID, uuid.Nil),
		UserID:          u.ID,
		Email:           u.Email,
		Role:            u.Role,
	}
}

// UserRoleChangedEvent is raised when a user's role changes
type UserRoleChangedEvent struct {
	shared.BaseDomainEvent
	UserID  uuid.UUID `json:"user_id"`
	OldRole Role      `json:"old_role"`
	NewRole Role      `json:"new_role"`
}

// NewUserRoleChangedEvent creates a new UserRoleChangedEvent
func NewUserRoleChangedEvent(u *User, oldRole Role) *UserRoleChangedEvent {
	return &UserRoleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRoleChanged, AggregateTypeUser, u.ID, uuid.Nil),
		UserID:          u.ID,
		OldRole:         oldRole,
		NewRole:         u.Role,
	}
}

// UserPasswordChangedEvent is raised when a password is replaced.
// Existing tokens of the user must be invalidated.
type UserPasswordChangedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
}

// NewUserPasswordChangedEvent creates a new UserPasswordChangedEvent
func NewUserPasswordChangedEvent(u *User) *UserPasswordChangedEvent {
	return &UserPasswordChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserPasswordChanged, AggregateTypeUser, u.ID, u.ID),
		UserID:          u.ID,
	}
}

// UserDeactivatedEvent is raised when a user is deactivated
type UserDeactivatedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
}

// NewUserDeactivatedEvent creates a new UserDeactivatedEvent
func NewUserDeactivatedEvent(u *User) *UserDeactivatedEvent {
	return &UserDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserDeactivated, AggregateTypeUser, u.ID, uuid.Nil),
		UserID:          u.ID,
	}
}
