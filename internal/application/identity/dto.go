package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/identity"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
	IP       string // Client IP for login tracking
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
}

// UserInfo contains basic user information returned after login
type UserInfo struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	Role        string
	LeaderID    string
	DivisionIDs []uuid.UUID
	Permissions []string
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the result of token refresh
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput revokes the presented access token and, when given, the refresh token
type LogoutInput struct {
	UserID       uuid.UUID
	TokenJTI     string
	TokenTTL     time.Duration
	RefreshToken string
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// CreateUserInput contains input for creating a user
type CreateUserInput struct {
	Email       string
	DisplayName string
	Password    string
	Role        string
	LeaderID    string
	DivisionIDs []uuid.UUID
}

// UpdateUserInput changes the fields that are set
type UpdateUserInput struct {
	DisplayName *string
	Role        *string
	LeaderID    *string
	DivisionIDs *[]uuid.UUID
}

// UserListFilter narrows user listings
type UserListFilter struct {
	Page       int
	PageSize   int
	Search     string
	Role       string
	DivisionID *uuid.UUID
	Active     *bool
	OrderBy    string
	OrderDir   string
}

// UserDTO represents user data transfer object
type UserDTO struct {
	ID          uuid.UUID   `json:"id"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	Role        string      `json:"role"`
	LeaderID    string      `json:"leader_id,omitempty"`
	DivisionIDs []uuid.UUID `json:"division_ids"`
	Active      bool        `json:"active"`
	LastLoginAt *time.Time  `json:"last_login_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ToUserDTO converts a domain user to its DTO
func ToUserDTO(u *identity.User) UserDTO {
	divisionIDs := u.DivisionIDs
	if divisionIDs == nil {
		divisionIDs = []uuid.UUID{}
	}
	return UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role.String(),
		LeaderID:    u.LeaderID,
		DivisionIDs: divisionIDs,
		Active:      u.Active,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func toUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role.String(),
		LeaderID:    u.LeaderID,
		DivisionIDs: u.DivisionIDs,
		Permissions: u.Role.Permissions(),
	}
}
