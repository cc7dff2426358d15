package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Permissions(t *testing.T) {
	tests := []struct {
		role       Role
		permission string
		want       bool
	}{
		{RoleAdmin, PermUserWrite, true},
		{RoleAdmin, PermPOOverrideVariance, true},
		{RoleViewer, PermPORead, true},
		{RoleViewer, PermPOCreate, false},
		{RolePurchaser, PermPOCreate, true},
		{RolePurchaser, PermPOApprove, false},
		{RoleDivisionLeader, PermPOApprove, true},
		{RoleAccounting, PermPOPay, true},
		{RoleAccounting, PermPOApprove, false},
		{RoleExecutive, PermPOPay, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+tt.permission, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.HasPermission(tt.permission))
		})
	}
}

func TestRole_Scope(t *testing.T) {
	assert.True(t, RoleAccounting.SeesAllDivisions())
	assert.False(t, RoleDivisionLeader.SeesAllDivisions())
	assert.True(t, RolePurchaser.NeedsLeaderID())
	assert.False(t, RoleAccounting.NeedsLeaderID())
	assert.False(t, Role("ROOFER").IsValid())
	assert.Contains(t, RoleAdmin.Permissions(), PermDivisionWrite)
	assert.Len(t, AllRoles(), 7)
}
