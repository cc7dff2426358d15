package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"ASC uppercase returns ASC", "ASC", "ASC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"desc lowercase returns DESC", "desc", "DESC"},
		{"invalid value returns DESC", "INVALID", "DESC"},
		{"sql injection attempt returns DESC", "ASC; DROP TABLE users;--", "DESC"},
		{"whitespace around ASC returns ASC", "  asc  ", "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns default", "", "created_at"},
		{"whitelisted field", "total", "total"},
		{"po number", "po_number", "po_number"},
		{"unknown field returns default", "leader_id", "created_at"},
		{"case sensitive", "TOTAL", "created_at"},
		{"whitespace around valid field", "  status  ", "status"},
		{"injection with spaces", "total desc, (select 1)", "created_at"},
		{"injection with quotes", "status'--", "created_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, PurchaseOrderSortFields, "created_at"))
		})
	}
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "total ASC", orderClause("total", "asc", PurchaseOrderSortFields, "created_at"))
	assert.Equal(t, "created_at DESC", orderClause("password_hash", "", UserSortFields, "created_at"))
	assert.Equal(t, "name DESC", orderClause("name", "sideways", VendorSortFields, "code"))
}

func TestSortWhitelists_ContainCreatedAt(t *testing.T) {
	whitelists := map[string]map[string]bool{
		"PurchaseOrderSortFields": PurchaseOrderSortFields,
		"InvoiceSortFields":       InvoiceSortFields,
		"VendorSortFields":        VendorSortFields,
		"DivisionSortFields":      DivisionSortFields,
		"ProjectSortFields":       ProjectSortFields,
		"WorkOrderSortFields":     WorkOrderSortFields,
		"UserSortFields":          UserSortFields,
	}

	for name, whitelist := range whitelists {
		t.Run(name, func(t *testing.T) {
			assert.True(t, whitelist["created_at"], "%s should contain created_at", name)
		})
	}
}
