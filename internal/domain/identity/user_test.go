package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(t *testing.T, role Role) *User {
	t.Helper()
	user, err := NewUser("buyer@example.com", "Pat Buyer", "Shingles42", role)
	require.NoError(t, err)
	return user
}

func TestNewUser(t *testing.T) {
	t.Run("creates active user", func(t *testing.T) {
		user, err := NewUser("  Buyer@Example.com ", "Pat Buyer", "Shingles42", RolePurchaser)

		require.NoError(t, err)
		assert.Equal(t, "buyer@example.com", user.Email)
		assert.Equal(t, RolePurchaser, user.Role)
		assert.True(t, user.Active)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEqual(t, "Shingles42", user.PasswordHash)
		assert.NotNil(t, user.PasswordChangedAt)

		events := user.GetDomainEvents()
		require.Len(t, events, 1)
		_, ok := events[0].(*UserCreatedEvent)
		assert.True(t, ok)
	})

	tests := []struct {
		name     string
		email    string
		display  string
		password string
		role     Role
		contains string
	}{
		{"invalid email", "not-an-email", "Pat", "Shingles42", RolePurchaser, "Invalid email"},
		{"empty display name", "a@b.co", "  ", "Shingles42", RolePurchaser, "Display name"},
		{"unknown role", "a@b.co", "Pat", "Shingles42", Role("ROOFER"), "Unknown role"},
		{"short password", "a@b.co", "Pat", "abc1", RolePurchaser, "at least 8"},
		{"password without digit", "a@b.co", "Pat", "Shingleslong", RolePurchaser, "letter and one number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.email, tt.display, tt.password, tt.role)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestUser_SetLeaderID(t *testing.T) {
	user := newTestUser(t, RolePurchaser)

	require.NoError(t, user.SetLeaderID("a7"))
	assert.Equal(t, "A7", user.LeaderID)
	assert.True(t, user.CanRaisePurchaseOrders())

	assert.Error(t, user.SetLeaderID("A"))
	assert.Error(t, user.SetLeaderID("ABC"))
	assert.Error(t, user.SetLeaderID("A-"))
	assert.Equal(t, "A7", user.LeaderID)

	require.NoError(t, user.SetLeaderID(""))
	assert.False(t, user.CanRaisePurchaseOrders())
}

func TestUser_Password(t *testing.T) {
	user := newTestUser(t, RolePurchaser)
	user.PullDomainEvents()

	assert.True(t, user.VerifyPassword("Shingles42"))
	assert.False(t, user.VerifyPassword("wrong"))

	err := user.ChangePassword("wrong", "Flashing99")
	assert.Error(t, err)

	require.NoError(t, user.ChangePassword("Shingles42", "Flashing99"))
	assert.True(t, user.VerifyPassword("Flashing99"))

	events := user.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeUserPasswordChanged, events[0].EventType())
}

func TestUser_Divisions(t *testing.T) {
	divA := uuid.New()
	divB := uuid.New()

	purchaser := newTestUser(t, RolePurchaser)
	require.NoError(t, purchaser.SetDivisions([]uuid.UUID{divA, divA}))
	assert.Len(t, purchaser.DivisionIDs, 1)
	assert.True(t, purchaser.InDivision(divA))
	assert.False(t, purchaser.InDivision(divB))

	assert.Error(t, purchaser.SetDivisions([]uuid.UUID{uuid.Nil}))

	ops := newTestUser(t, RoleOperationsManager)
	assert.True(t, ops.InDivision(divB))
}

func TestUser_ChangeRoleAndDeactivate(t *testing.T) {
	user := newTestUser(t, RolePurchaser)
	user.PullDomainEvents()

	require.NoError(t, user.ChangeRole(RoleDivisionLeader))
	assert.Equal(t, RoleDivisionLeader, user.Role)
	require.Len(t, user.GetDomainEvents(), 1)

	assert.Error(t, user.ChangeRole(Role("FOREMAN")))

	require.NoError(t, user.Deactivate())
	assert.False(t, user.Active)
	assert.Error(t, user.Deactivate())
	assert.False(t, user.CanRaisePurchaseOrders())

	require.NoError(t, user.Activate())
	assert.Error(t, user.Activate())
}
