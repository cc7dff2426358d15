package identity

import "slices"

// Role is the single job function a user holds
type Role string

const (
	RoleAdmin             Role = "ADMIN"
	RoleExecutive         Role = "EXECUTIVE"
	RoleOperationsManager Role = "OPERATIONS_MANAGER"
	RoleDivisionLeader    Role = "DIVISION_LEADER"
	RolePurchaser         Role = "PURCHASER"
	RoleAccounting        Role = "ACCOUNTING"
	RoleViewer            Role = "VIEWER"
)

// Permission codes in resource:action form
const (
	PermPORead             = "po:read"
	PermPOCreate           = "po:create"
	PermPOUpdate           = "po:update"
	PermPODelete           = "po:delete"
	PermPOSubmit           = "po:submit"
	PermPOApprove          = "po:approve"
	PermPOIssue            = "po:issue"
	PermPOReceive          = "po:receive"
	PermPOPay              = "po:pay"
	PermPOCancel           = "po:cancel"
	PermPOOverrideVariance = "po:override_variance"
	PermInvoiceRead        = "invoice:read"
	PermInvoiceCreate      = "invoice:create"
	PermInvoiceVoid        = "invoice:void"
	PermVendorRead         = "vendor:read"
	PermVendorWrite        = "vendor:write"
	PermDivisionRead       = "division:read"
	PermDivisionWrite      = "division:write"
	PermProjectRead        = "project:read"
	PermProjectWrite       = "project:write"
	PermWorkOrderRead      = "workorder:read"
	PermWorkOrderWrite     = "workorder:write"
	PermReportRead         = "report:read"
	PermReportExport       = "report:export"
	PermUserRead           = "user:read"
	PermUserWrite          = "user:write"
	PermArchiveRead        = "archive:read"
)

var readOnly = []string{
	PermPORead, PermInvoiceRead, PermVendorRead, PermDivisionRead,
	PermProjectRead, PermWorkOrderRead, PermReportRead,
}

var rolePermissions = map[Role][]string{
	RoleViewer: readOnly,
	RolePurchaser: append(slices.Clone(readOnly),
		PermPOCreate, PermPOUpdate, PermPODelete, PermPOSubmit, PermPOCancel,
		PermPOIssue, PermPOReceive, PermVendorWrite,
	),
	RoleDivisionLeader: append(slices.Clone(readOnly),
		PermPOCreate, PermPOUpdate, PermPODelete, PermPOSubmit, PermPOCancel,
		PermPOApprove, PermPOIssue, PermPOReceive, PermProjectWrite, PermWorkOrderWrite,
		PermReportExport,
	),
	RoleOperationsManager: append(slices.Clone(readOnly),
		PermPOApprove, PermPOCancel, PermPOIssue, PermPOReceive,
		PermProjectWrite, PermWorkOrderWrite, PermVendorWrite, PermReportExport,
		PermArchiveRead,
	),
	RoleExecutive: append(slices.Clone(readOnly),
		PermPOApprove, PermPOCancel, PermReportExport, PermArchiveRead, PermUserRead,
	),
	RoleAccounting: append(slices.Clone(readOnly),
		PermInvoiceCreate, PermInvoiceVoid, PermPOPay, PermPOOverrideVariance,
		PermReportExport, PermArchiveRead,
	),
}

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	if r == RoleAdmin {
		return true
	}
	_, ok := rolePermissions[r]
	return ok
}

// String returns the role code
func (r Role) String() string {
	return string(r)
}

// Permissions returns the permission codes granted to the role
func (r Role) Permissions() []string {
	if r == RoleAdmin {
		return AllPermissions()
	}
	return slices.Clone(rolePermissions[r])
}

// HasPermission reports whether the role grants the permission
func (r Role) HasPermission(permission string) bool {
	if r == RoleAdmin {
		return true
	}
	return slices.Contains(rolePermissions[r], permission)
}

// SeesAllDivisions reports whether the role is exempt from division scoping
func (r Role) SeesAllDivisions() bool {
	switch r {
	case RoleAdmin, RoleExecutive, RoleOperationsManager, RoleAccounting:
		return true
	}
	return false
}

// NeedsLeaderID reports whether users with the role raise purchase orders
func (r Role) NeedsLeaderID() bool {
	switch r {
	case RoleAdmin, RolePurchaser, RoleDivisionLeader:
		return true
	}
	return false
}

// AllPermissions returns every permission code
func AllPermissions() []string {
	seen := make(map[string]bool)
	all := make([]string, 0, 32)
	for _, perms := range rolePermissions {
		for _, p := range perms {
			if !seen[p] {
				seen[p] = true
				all = append(all, p)
			}
		}
	}
	for _, p := range []string{PermUserWrite, PermDivisionWrite} {
		if !seen[p] {
			all = append(all, p)
		}
	}
	slices.Sort(all)
	return all
}

// AllRoles returns the roles in display order
func AllRoles() []Role {
	return []Role{
		RoleAdmin, RoleExecutive, RoleOperationsManager, RoleDivisionLeader,
		RolePurchaser, RoleAccounting, RoleViewer,
	}
}
