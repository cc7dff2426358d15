package procurement

import (
	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypePurchaseOrder = "PurchaseOrder"
	AggregateTypeInvoice       = "Invoice"
)

// Event type constants
const (
	EventTypePurchaseOrderCreated       = "PurchaseOrderCreated"
	EventTypePurchaseOrderSubmitted     = "PurchaseOrderSubmitted"
	EventTypePurchaseOrderStageApproved = "PurchaseOrderStageApproved"
	EventTypePurchaseOrderApproved      = "PurchaseOrderApproved"
	EventTypePurchaseOrderRejected      = "PurchaseOrderRejected"
	EventTypePurchaseOrderReopened      = "PurchaseOrderReopened"
	EventTypePurchaseOrderIssued        = "PurchaseOrderIssued"
	EventTypePurchaseOrderReceived      = "PurchaseOrderReceived"
	EventTypePurchaseOrderPaid          = "PurchaseOrderPaid"
	EventTypePurchaseOrderCancelled     = "PurchaseOrderCancelled"
	EventTypeInvoiceRecorded            = "InvoiceRecorded"
	EventTypeInvoiceVoided              = "InvoiceVoided"
)

// PurchaseOrderEventTypes lists every purchase order event type
func PurchaseOrderEventTypes() []string {
	return []string{
		EventTypePurchaseOrderCreated, EventTypePurchaseOrderSubmitted,
		EventTypePurchaseOrderStageApproved, EventTypePurchaseOrderApproved,
		EventTypePurchaseOrderRejected, EventTypePurchaseOrderReopened,
		EventTypePurchaseOrderIssued, EventTypePurchaseOrderReceived,
		EventTypePurchaseOrderPaid, EventTypePurchaseOrderCancelled,
	}
}

// AuditedEvent is implemented by events that belong in a purchase order's history
type AuditedEvent interface {
	shared.DomainEvent
	PurchaseOrderID() uuid.UUID
	Transition() (from, to Status)
	Summary() string
}

// OrderEventInfo is embedded in every purchase order event
type OrderEventInfo struct {
	OrderID    uuid.UUID `json:"order_id"`
	PONumber   string    `json:"po_number"`
	DivisionID uuid.UUID `json:"division_id"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
}

func newOrderEventInfo(po *PurchaseOrder, from Status) OrderEventInfo {
	return OrderEventInfo{
		OrderID:    po.ID,
		PONumber:   po.PONumber(),
		DivisionID: po.DivisionID,
		FromStatus: from,
		ToStatus:   po.Status,
	}
}

// PurchaseOrderID returns the order the event belongs to
func (i OrderEventInfo) PurchaseOrderID() uuid.UUID {
	return i.OrderID
}

// Transition returns the status change carried by the event
func (i OrderEventInfo) Transition() (Status, Status) {
	return i.FromStatus, i.ToStatus
}

// PurchaseOrderCreatedEvent is raised when a draft is opened
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderEventInfo
	VendorID    uuid.UUID `json:"vendor_id"`
	WorkOrderID uuid.UUID `json:"work_order_id"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(po *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, po.ID, po.RequestedBy),
		OrderEventInfo:  newOrderEventInfo(po, ""),
		VendorID:        po.VendorID,
		WorkOrderID:     po.WorkOrderID,
	}
}

// Summary describes the event for the audit trail
func (e *PurchaseOrderCreatedEvent) Summary() string {
	return "Draft created"
}

// PurchaseOrderSubmittedEvent is raised when a draft goes to approval
type PurchaseOrderSubmittedEvent struct {
	shared.BaseDomainEvent
	OrderEventInfo
	Total  decimal.Decimal `json:"total"`
	Stages []ApprovalStage `json:"stages"`
}

// NewPurchaseOrderSubmittedEvent creates a new PurchaseOrderSubmittedEvent
func NewPurchaseOrderSubmittedEvent(po *PurchaseOrder, from Status, actorID uuid.UUID) *PurchaseOrderSubmittedEvent {
	info := newOrderEventInfo(po, from)
	info.ToStatus = StatusSubmitted
	return &PurchaseOrderSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderSubmitted, AggregateTypePurchaseOrder, po.ID, actorID),
		OrderEventInfo:  info,
		Total:           po.Total,
		Stages:          append([]ApprovalStage(nil), po.ApprovalStages...),
	}
}

// Summary describes the event for the audit trail
func (e *PurchaseOrderSubmittedEvent) Summary() string {
	if len(e.Stages) == 0 {
		return "Submitted for approval"
	}
	return "Submitted for approval, awaiting " + e.Stages[0].Role.String()
}

// PurchaseOrderStageApprovedEvent is raised when one approval stage is signed off
type PurchaseOrderStageApprovedEvent struct {
	shared.BaseDomainEvent
	OrderEventInfo
	Stage int    `json:"stage"`
	Role  string `json:"role"`
}

// NewPurchaseOrderStageApprovedEvent creates a new PurchaseOrderStageApprovedEvent
func NewPurchaseOrderStageApprovedEvent(po *PurchaseOrder, stage ApprovalStage, actorID uuid.UUID) *PurchaseOrderStageApprovedEvent {
	return &PurchaseOrderStageApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderStageApproved, AggregateTypePurchaseOrder, po.ID, actorID),
		OrderEventInfo:  newOrderEventInfo(po, po.Status),
		Stage:           stage.Stage,
		Role:            stage.Role.String(),
	}
}

// Summary describes the event for the audit trail
func (e *PurchaseOrderStageApprovedEvent) Summary() string {
	return "Stage approved by " + e.Role
}

// PurchaseOrderApprovedEvent is raised when the final stage clears
type PurchaseOrderApprovedEvent struct {
	shared.BaseDomainEvent
	OrderEventInfo
	Total        decimal.Decimal `json:"total"`
	AutoApproved bool            `json:"auto_approved"`
}

// NewPurchaseOrderApprovedEvent creates a new PurchaseOrderApprovedEvent
func NewPurchaseOrderApprovedEvent(po *PurchaseOrder, from Status, actorID uuid.UUID, auto bool) *PurchaseOrderApprovedEvent {
	return &PurchaseOrderApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderApproved, AggregateTypePurchaseOrder, po.ID, actorID),
		OrderEventInfo:  newOrderEventInfo(po, from),
		Total:           po.Total,
		AutoApproved:    auto,
	}
}

// Summary describes the event for the audit trail
func (e *PurchaseOrderApprovedEvent) Summary() string {
	if e.AutoApproved {
		return "Approved automatically under the approval limit"
	}
	return "Approved"
}

// PurchaseOrderRejectedEvent is raised when an approver rejects the order
type PurchaseOrderRejectedEvent struct {
	shared.BaseDomainEvent
	OrderEventInfo
	Reason string `json:"reason"`
}

// NewPurchaseOrderRejectedEvent creates a new PurchaseOrderRejectedEvent
func NewPurchaseOrderRejectedEvent(po *PurchaseOrder, actorID uuid.UUID, reason string) *PurchaseOrderRejectedEvent {
	return &PurchaseOrderRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderRejected, AggregateTypePurchaseOrder, po.ID, actorID),
		OrderEventInfo:  newOrderEventInfo(po, StatusSubmitted),
		Reason:          reason,
	}
}

// Summary describes the event for the audit trail
func (e *PurchaseOrderRejectedEvent) Summary() string {
	return "Rejected: " + e.Reason
}

// PurchaseOrderReopenedEvent is raised when a rejected order returns to draft
type PurchaseOrderReopenedEvent struct {
	shared.BaseDomainEvent
	OrderEventInfo
}

// NewPurchaseOrderReopenedEvent creates a new PurchaseOrderReopenedEvent
func NewPurchaseOrderReopenedEvent(po *PurchaseOrder, actorID uuid.UUID) *PurchaseOrderReopenedEvent {
	return &PurchaseOrderReopenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderReopened, AggregateTypePurchaseOrder, po.ID, actorID),
		OrderEventInfo:  newOrderEventInfo(po, StatusRejected),
	}
}

// Summary describes the event for the audit trail
func (e *PurchaseOrderReopenedEvent) Summary() string {
	return "Reopened for revision"
}

// PurchaseOrderIssuedEvent is raised when the order is sent to the vendor
type PurchaseOrderIssuedEvent struct {
	shared.BaseDomainEvent
	OrderEventInfo
	VendorID     uuid.UUID `json:"vendor_id"`
	Confirmation string    `json:"confirmation,omitempty"`
}

// NewPurchaseOrderIssuedEvent creates a new PurchaseOrderIssuedEvent
func NewPurchaseOrderIssuedEvent(po *PurchaseOrder, actorID uuid.UUID) *PurchaseOrderIssuedEvent {
	return &PurchaseOrderIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderIssued, AggregateTypePurchaseOrder, po.ID, actorID),
		OrderEventInfo:  newOrderEventInfo(po, StatusApproved),
		VendorID:        po.VendorID,
		Confirmation:    po.VendorConfirmation,
	}
}

// Summary describes the event for the audit trail
func (e *PurchaseOrderIssuedEvent) Summary() string {
	if e.Confirmation != "" {
		return "Issued to vendor, confirmation " + e.Confirmation
	}
	return "Issued to vendor"
}

// PurchaseOrderReceivedEvent is raised for every delivery recorded
type PurchaseOrderReceivedEvent struct {
	shared.BaseDomainEvent
	OrderEventInfo
	ReceiptID     uuid.UUID     `json:"receipt_id"`
	Lines         []ReceiveLine `json:"lines"`
	FullyReceived bool          `json:"fully_received"`
}

// NewPurchaseOrderReceivedEvent creates a new PurchaseOrderReceivedEvent
func NewPurchaseOrderReceivedEvent(po *PurchaseOrder, from Status, receipt *Receipt) *PurchaseOrderReceivedEvent {
	lines := make([]ReceiveLine, len(receipt.Lines))
	for i, l := range receipt.Lines {
		lines[i] = ReceiveLine{ItemID: l.ItemID, Quantity: l.Quantity}
	}
	return &PurchaseOrderReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderReceived, AggregateTypePurchaseOrder, po.ID, receipt.ReceivedBy),
		OrderEventInfo:  newOrderEventInfo(po, from),
		ReceiptID:       receipt.ID,
		Lines:           lines,
		FullyReceived:   po.Status == StatusReceived,
	}
}

// Summary describes the event for the audit trail
func (e *PurchaseOrderReceivedEvent) Summary() string {
	if e.FullyReceived {
		return "All goods received"
	}
	return "Partial delivery received"
}

// PurchaseOrderPaidEvent is raised when the order is closed out as paid
type PurchaseOrderPaidEvent struct {
	shared.BaseDomainEvent
	OrderEventInfo
	Reference          string          `json:"reference"`
	Invoiced           decimal.Decimal `json:"invoiced"`
	Variance           decimal.Decimal `json:"variance"`
	VarianceOverridden bool            `json:"variance_overridden"`
}

// NewPurchaseOrderPaidEvent creates a new PurchaseOrderPaidEvent
func NewPurchaseOrderPaidEvent(po *PurchaseOrder, rec Reconciliation, actorID uuid.UUID) *PurchaseOrderPaidEvent {
	return &PurchaseOrderPaidEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypePurchaseOrderPaid, AggregateTypePurchaseOrder, po.ID, actorID),
		OrderEventInfo:     newOrderEventInfo(po, StatusReceived),
		Reference:          po.PaymentReference,
		Invoiced:           rec.Invoiced,
		Variance:           rec.Variance,
		VarianceOverridden: po.VarianceOverridden,
	}
}

// Summary describes the event for the audit trail
func (e *PurchaseOrderPaidEvent) Summary() string {
	if e.VarianceOverridden {
		return "Paid with variance override of " + e.Variance.StringFixed(2)
	}
	return "Paid"
}

// PurchaseOrderCancelledEvent is raised when the order is abandoned
type PurchaseOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderEventInfo
	Reason string `json:"reason"`
}

// NewPurchaseOrderCancelledEvent creates a new PurchaseOrderCancelledEvent
func NewPurchaseOrderCancelledEvent(po *PurchaseOrder, from Status, actorID uuid.UUID) *PurchaseOrderCancelledEvent {
	return &PurchaseOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCancelled, AggregateTypePurchaseOrder, po.ID, actorID),
		OrderEventInfo:  newOrderEventInfo(po, from),
		Reason:          po.CancelReason,
	}
}

// Summary describes the event for the audit trail
func (e *PurchaseOrderCancelledEvent) Summary() string {
	return "Cancelled: " + e.Reason
}

// InvoiceRecordedEvent is raised when a vendor invoice is entered
type InvoiceRecordedEvent struct {
	shared.BaseDomainEvent
	OrderEventInfo
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewInvoiceRecordedEvent creates a new InvoiceRecordedEvent
func NewInvoiceRecordedEvent(inv *Invoice, po *PurchaseOrder) *InvoiceRecordedEvent {
	return &InvoiceRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceRecorded, AggregateTypeInvoice, inv.ID, inv.RecordedBy),
		OrderEventInfo:  newOrderEventInfo(po, po.Status),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.Number,
		Amount:          inv.Amount,
	}
}

// Summary describes the event for the audit trail
func (e *InvoiceRecordedEvent) Summary() string {
	return "Invoice " + e.InvoiceNumber + " recorded for " + e.Amount.StringFixed(2)
}

// InvoiceVoidedEvent is raised when an invoice is voided
type InvoiceVoidedEvent struct {
	shared.BaseDomainEvent
	OrderEventInfo
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	Reason        string    `json:"reason"`
}

// NewInvoiceVoidedEvent creates a new InvoiceVoidedEvent
func NewInvoiceVoidedEvent(inv *Invoice, actorID uuid.UUID) *InvoiceVoidedEvent {
	return &InvoiceVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceVoided, AggregateTypeInvoice, inv.ID, actorID),
		OrderEventInfo:  OrderEventInfo{OrderID: inv.PurchaseOrderID},
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.Number,
		Reason:          inv.VoidReason,
	}
}

// Summary describes the event for the audit trail
func (e *InvoiceVoidedEvent) Summary() string {
	return "Invoice " + e.InvoiceNumber + " voided: " + e.Reason
}
