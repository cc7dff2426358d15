package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// orderClause builds a safe ORDER BY clause from a user supplied field and direction
func orderClause(field, dir string, allowed map[string]bool, defaultField string) string {
	return ValidateSortField(field, allowed, defaultField) + " " + ValidateSortOrder(dir)
}

// PurchaseOrderSortFields contains allowed sort fields for purchase orders
var PurchaseOrderSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"po_number":    true,
	"status":       true,
	"total":        true,
	"needed_by":    true,
	"submitted_at": true,
	"issued_at":    true,
	"paid_at":      true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"created_at":   true,
	"invoice_date": true,
	"due_date":     true,
	"amount":       true,
	"number":       true,
	"status":       true,
}

// VendorSortFields contains allowed sort fields for vendors
var VendorSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
}

// DivisionSortFields contains allowed sort fields for divisions
var DivisionSortFields = map[string]bool{
	"created_at": true,
	"code":       true,
	"name":       true,
}

// ProjectSortFields contains allowed sort fields for projects
var ProjectSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"status":     true,
}

// WorkOrderSortFields contains allowed sort fields for work orders
var WorkOrderSortFields = map[string]bool{
	"created_at": true,
	"number":     true,
	"status":     true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"email":         true,
	"display_name":  true,
	"role":          true,
	"last_login_at": true,
}

// ArchiveSortFields contains allowed sort fields for archived orders
var ArchiveSortFields = map[string]bool{
	"closed_at":   true,
	"archived_at": true,
	"po_number":   true,
}
