package procurement

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Default approval thresholds in dollars
var (
	DefaultAutoApproveLimit    = decimal.NewFromInt(500)
	DefaultOperationsThreshold = decimal.NewFromInt(5000)
	DefaultExecutiveThreshold  = decimal.NewFromInt(25000)
)

// ApprovalStage is one required sign-off on a submitted purchase order
type ApprovalStage struct {
	Stage int           `json:"stage"`
	Role  identity.Role `json:"role"`
}

// ApprovalPolicy maps an order total to the ordered stages it must clear
type ApprovalPolicy struct {
	AutoApproveLimit    decimal.Decimal
	OperationsThreshold decimal.Decimal
	ExecutiveThreshold  decimal.Decimal
}

// DefaultApprovalPolicy returns the policy with the stock thresholds
func DefaultApprovalPolicy() ApprovalPolicy {
	return ApprovalPolicy{
		AutoApproveLimit:    DefaultAutoApproveLimit,
		OperationsThreshold: DefaultOperationsThreshold,
		ExecutiveThreshold:  DefaultExecutiveThreshold,
	}
}

// Validate checks that thresholds are non-negative and ascending
func (p ApprovalPolicy) Validate() error {
	if p.AutoApproveLimit.IsNegative() {
		return shared.NewDomainError("INVALID_APPROVAL_POLICY", "Auto-approve limit cannot be negative")
	}
	if p.OperationsThreshold.LessThan(p.AutoApproveLimit) {
		return shared.NewDomainError("INVALID_APPROVAL_POLICY", "Operations threshold must not be below the auto-approve limit")
	}
	if p.ExecutiveThreshold.LessThan(p.OperationsThreshold) {
		return shared.NewDomainError("INVALID_APPROVAL_POLICY", "Executive threshold must not be below the operations threshold")
	}
	return nil
}

// RequiredStages returns the stages an order of the given total must clear.
// An empty result means the order is approved on submission.
func (p ApprovalPolicy) RequiredStages(total decimal.Decimal) []ApprovalStage {
	if total.LessThanOrEqual(p.AutoApproveLimit) {
		return nil
	}
	stages := []ApprovalStage{{Stage: 1, Role: identity.RoleDivisionLeader}}
	if total.GreaterThan(p.OperationsThreshold) {
		stages = append(stages, ApprovalStage{Stage: 2, Role: identity.RoleOperationsManager})
	}
	if total.GreaterThan(p.ExecutiveThreshold) {
		stages = append(stages, ApprovalStage{Stage: 3, Role: identity.RoleExecutive})
	}
	return stages
}

// ApprovalDecision is the outcome recorded by an approver
type ApprovalDecision string

const (
	DecisionApproved ApprovalDecision = "APPROVED"
	DecisionRejected ApprovalDecision = "REJECTED"
)

// Approval records one approver's decision on one stage
type Approval struct {
	ID              uuid.UUID
	PurchaseOrderID uuid.UUID
	Round           int
	Stage           int
	StageRole       identity.Role
	ApproverID      uuid.UUID
	ApproverRole    identity.Role
	Decision        ApprovalDecision
	Comment         string
	DecidedAt       time.Time
}

// Approver identifies the user acting on an approval stage
type Approver struct {
	UserID      uuid.UUID
	Role        identity.Role
	DivisionIDs []uuid.UUID
}

// canAct checks role, division and segregation rules for one stage
func (a Approver) canAct(po *PurchaseOrder, stage ApprovalStage) error {
	if a.UserID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver is required")
	}
	if a.UserID == po.RequestedBy {
		return shared.NewDomainError("SELF_APPROVAL", "Requesters cannot approve their own purchase orders")
	}
	for _, prior := range po.CurrentApprovals() {
		if prior.ApproverID == a.UserID && prior.Decision == DecisionApproved {
			return shared.NewDomainError("DUPLICATE_APPROVER", "The same user cannot sign off on more than one stage")
		}
	}
	if a.Role == identity.RoleAdmin {
		return nil
	}
	if a.Role != stage.Role {
		return shared.NewDomainError("FORBIDDEN",
			fmt.Sprintf("Stage %d requires %s approval", stage.Stage, stage.Role))
	}
	if a.Role == identity.RoleDivisionLeader && !slices.Contains(a.DivisionIDs, po.DivisionID) {
		return shared.NewDomainError("FORBIDDEN", "Division leaders can only approve purchase orders in their own division")
	}
	return nil
}
