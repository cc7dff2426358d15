package identity

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	leaderIDRegex = regexp.MustCompile(`^[A-Z0-9]{2}$`)
	hasLetter     = regexp.MustCompile(`[a-zA-Z]`)
	hasNumber     = regexp.MustCompile(`[0-9]`)
)

// User is a person who signs in to raise, approve, receive or pay purchase orders
type User struct {
	shared.BaseAggregateRoot
	Email        string
	DisplayName  string
	PasswordHash string
	Role         Role
	// LeaderID is the 2-character purchasing authority code embedded in PO numbers
	LeaderID          string
	DivisionIDs       []uuid.UUID
	Active            bool
	LastLoginAt       *time.Time
	PasswordChangedAt *time.Time
}

// NewUser creates an active user
func NewUser(email, displayName, password string, role Role) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if strings.TrimSpace(displayName) == "" {
		return nil, shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot be empty")
	}
	if len(displayName) > 200 {
		return nil, shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		DisplayName:       strings.TrimSpace(displayName),
		PasswordHash:      hash,
		Role:              role,
		DivisionIDs:       make([]uuid.UUID, 0),
		Active:            true,
		PasswordChangedAt: &now,
	}

	user.AddDomainEvent(NewUserCreatedEvent(user))

	return user, nil
}

// SetLeaderID assigns the PO leader code; it is stored upper-case
func (u *User) SetLeaderID(leaderID string) error {
	leaderID = strings.ToUpper(strings.TrimSpace(leaderID))
	if leaderID != "" && !leaderIDRegex.MatchString(leaderID) {
		return shared.NewDomainError("INVALID_LEADER_ID", "Leader ID must be exactly 2 letters or digits")
	}
	u.LeaderID = leaderID
	u.MarkModified()
	return nil
}

// SetDisplayName changes the display name
func (u *User) SetDisplayName(displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot be empty")
	}
	if len(displayName) > 200 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}
	u.DisplayName = displayName
	u.MarkModified()
	return nil
}

// ChangeRole moves the user to a new role
func (u *User) ChangeRole(role Role) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}
	if role == u.Role {
		return nil
	}
	old := u.Role
	u.Role = role
	u.MarkModified()

	u.AddDomainEvent(NewUserRoleChangedEvent(u, old))

	return nil
}

// SetDivisions replaces the divisions the user works in
func (u *User) SetDivisions(divisionIDs []uuid.UUID) error {
	seen := make(map[uuid.UUID]bool, len(divisionIDs))
	ids := make([]uuid.UUID, 0, len(divisionIDs))
	for _, id := range divisionIDs {
		if id == uuid.Nil {
			return shared.NewDomainError("INVALID_DIVISION", "Division ID cannot be empty")
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	u.DivisionIDs = ids
	u.MarkModified()
	return nil
}

// InDivision reports whether the user can see records of the division
func (u *User) InDivision(divisionID uuid.UUID) bool {
	if u.Role.SeesAllDivisions() {
		return true
	}
	return slices.Contains(u.DivisionIDs, divisionID)
}

// ChangePassword replaces the password after verifying the current one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	return u.SetPassword(newPassword)
}

// SetPassword replaces the password without verification (admin reset)
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	u.PasswordHash = hash
	u.PasswordChangedAt = &now
	u.MarkModified()

	u.AddDomainEvent(NewUserPasswordChangedEvent(u))

	return nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Deactivate blocks the user from signing in
func (u *User) Deactivate() error {
	if !u.Active {
		return shared.NewDomainError("ALREADY_DEACTIVATED", "User is already deactivated")
	}
	u.Active = false
	u.MarkModified()

	u.AddDomainEvent(NewUserDeactivatedEvent(u))

	return nil
}

// Activate re-enables a deactivated user
func (u *User) Activate() error {
	if u.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "User is already active")
	}
	u.Active = true
	u.MarkModified()
	return nil
}

// RecordLogin stamps a successful sign-in
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// CanRaisePurchaseOrders reports whether the user has what PO numbering needs
func (u *User) CanRaisePurchaseOrders() bool {
	return u.Active && u.LeaderID != "" && u.Role.HasPermission(PermPOCreate)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	if !hasLetter.MatchString(password) || !hasNumber.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
