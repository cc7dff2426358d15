package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/shared"
)

// UserFilter narrows user listings
type UserFilter struct {
	shared.Filter
	Role       Role
	DivisionID *uuid.UUID
	Active     *bool
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context, filter UserFilter) ([]User, int64, error)
	Save(ctx context.Context, user *User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// ExistsByLeaderID reports whether another user already holds the leader code
	ExistsByLeaderID(ctx context.Context, leaderID string, excludeID uuid.UUID) (bool, error)
	Count(ctx context.Context) (int64, error)
}
