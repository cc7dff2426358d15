package procurement

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/procurement/ponumber"
	"github.com/roofpo/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PurchaseOrder is the aggregate root for a purchase from a vendor.
// It carries the order from drafting through approval, issue, receipt and payment.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	Number          ponumber.Number
	DivisionID      uuid.UUID
	ProjectID       uuid.UUID
	WorkOrderID     uuid.UUID
	VendorID        uuid.UUID
	RequestedBy     uuid.UUID
	Description     string
	DeliveryAddress string
	NeededBy        *time.Time
	Items           []LineItem
	Subtotal        decimal.Decimal
	TaxAmount       decimal.Decimal
	Total           decimal.Decimal
	Status          Status

	// ApprovalRound increments on every submission so reopened orders start clean
	ApprovalRound  int
	ApprovalStages []ApprovalStage
	// CurrentStage is the stage awaiting a decision, 0 when none is pending
	CurrentStage int
	Approvals    []Approval
	Receipts     []Receipt

	VendorConfirmation string
	PaymentReference   string
	VarianceOverridden bool
	RejectionReason    string
	CancelReason       string

	SubmittedAt *time.Time
	ApprovedAt  *time.Time
	IssuedAt    *time.Time
	ReceivedAt  *time.Time
	PaidAt      *time.Time
	CancelledAt *time.Time
	ArchivedAt  *time.Time
}

// NewPurchaseOrderParams holds what is needed to open a draft
type NewPurchaseOrderParams struct {
	Number          ponumber.Number
	DivisionID      uuid.UUID
	ProjectID       uuid.UUID
	WorkOrderID     uuid.UUID
	VendorID        uuid.UUID
	RequestedBy     uuid.UUID
	Description     string
	DeliveryAddress string
	NeededBy        *time.Time
}

// Details are the header fields editable while the order is a draft
type Details struct {
	VendorID        uuid.UUID
	Description     string
	DeliveryAddress string
	NeededBy        *time.Time
}

// NewPurchaseOrder creates a draft purchase order
func NewPurchaseOrder(p NewPurchaseOrderParams) (*PurchaseOrder, error) {
	if err := p.Number.Validate(); err != nil {
		return nil, shared.NewDomainError("INVALID_PO_NUMBER", err.Error())
	}
	for name, id := range map[string]uuid.UUID{
		"Division":   p.DivisionID,
		"Project":    p.ProjectID,
		"Work order": p.WorkOrderID,
		"Vendor":     p.VendorID,
		"Requester":  p.RequestedBy,
	} {
		if id == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_INPUT", name+" is required")
		}
	}
	if err := validateDetails(p.Description, p.DeliveryAddress); err != nil {
		return nil, err
	}

	po := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            p.Number,
		DivisionID:        p.DivisionID,
		ProjectID:         p.ProjectID,
		WorkOrderID:       p.WorkOrderID,
		VendorID:          p.VendorID,
		RequestedBy:       p.RequestedBy,
		Description:       strings.TrimSpace(p.Description),
		DeliveryAddress:   strings.TrimSpace(p.DeliveryAddress),
		NeededBy:          p.NeededBy,
		Items:             make([]LineItem, 0),
		Subtotal:          decimal.Zero,
		TaxAmount:         decimal.Zero,
		Total:             decimal.Zero,
		Status:            StatusDraft,
	}
	po.AddDomainEvent(NewPurchaseOrderCreatedEvent(po))
	return po, nil
}

func validateDetails(description, address string) error {
	if strings.TrimSpace(description) == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if len(description) > 1000 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 1000 characters")
	}
	if len(address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Delivery address cannot exceed 500 characters")
	}
	return nil
}

// PONumber renders the current-format purchase order number
func (o *PurchaseOrder) PONumber() string {
	return o.Number.String()
}

// LegacyNumber renders the confirmation-suffixed number once the vendor has confirmed
func (o *PurchaseOrder) LegacyNumber() (string, bool) {
	if o.VendorConfirmation == "" {
		return "", false
	}
	s, err := ponumber.EncodeLegacy(o.Number, o.VendorConfirmation)
	if err != nil {
		return "", false
	}
	return s, true
}

func (o *PurchaseOrder) requireEditable(action string) error {
	if !o.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot %s on a %s purchase order", action, o.Status))
	}
	return nil
}

// AddLineItem appends a line to a draft order
func (o *PurchaseOrder) AddLineItem(in LineItemInput) (*LineItem, error) {
	if err := o.requireEditable("add lines"); err != nil {
		return nil, err
	}
	next := 1
	for _, item := range o.Items {
		if item.LineNumber >= next {
			next = item.LineNumber + 1
		}
	}
	item, err := newLineItem(o.ID, next, in)
	if err != nil {
		return nil, err
	}
	o.Items = append(o.Items, *item)
	o.recalculateTotals()
	o.MarkModified()
	return item, nil
}

// UpdateLineItem replaces the fields of an existing line on a draft order
func (o *PurchaseOrder) UpdateLineItem(itemID uuid.UUID, in LineItemInput) error {
	if err := o.requireEditable("update lines"); err != nil {
		return err
	}
	if err := in.validate(); err != nil {
		return err
	}
	item := o.findItem(itemID)
	if item == nil {
		return shared.NewDomainError("ITEM_NOT_FOUND", "Line item not found")
	}
	item.apply(in)
	o.recalculateTotals()
	o.MarkModified()
	return nil
}

// RemoveLineItem deletes a line from a draft order
func (o *PurchaseOrder) RemoveLineItem(itemID uuid.UUID) error {
	if err := o.requireEditable("remove lines"); err != nil {
		return err
	}
	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.recalculateTotals()
			o.MarkModified()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Line item not found")
}

// SetTax sets the order-level tax amount
func (o *PurchaseOrder) SetTax(amount decimal.Decimal) error {
	if err := o.requireEditable("change tax"); err != nil {
		return err
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_TAX", "Tax amount cannot be negative")
	}
	o.TaxAmount = amount.Round(2)
	o.recalculateTotals()
	o.MarkModified()
	return nil
}

// UpdateDetails changes vendor and header fields of a draft order
func (o *PurchaseOrder) UpdateDetails(d Details) error {
	if err := o.requireEditable("edit details"); err != nil {
		return err
	}
	if d.VendorID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Vendor is required")
	}
	if err := validateDetails(d.Description, d.DeliveryAddress); err != nil {
		return err
	}
	o.VendorID = d.VendorID
	o.Description = strings.TrimSpace(d.Description)
	o.DeliveryAddress = strings.TrimSpace(d.DeliveryAddress)
	o.NeededBy = d.NeededBy
	o.MarkModified()
	return nil
}

func (o *PurchaseOrder) findItem(itemID uuid.UUID) *LineItem {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

func (o *PurchaseOrder) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.Amount)
	}
	o.Subtotal = subtotal
	o.Total = subtotal.Add(o.TaxAmount)
}

// Submit sends a draft for approval. Orders below the auto-approve limit
// are approved immediately.
func (o *PurchaseOrder) Submit(policy ApprovalPolicy, actorID uuid.UUID) error {
	if !o.Status.CanTransitionTo(StatusSubmitted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot submit a %s purchase order", o.Status))
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot submit a purchase order without line items")
	}
	if o.Total.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Purchase order total must be positive")
	}

	now := time.Now()
	from := o.Status
	o.ApprovalRound++
	o.ApprovalStages = policy.RequiredStages(o.Total)
	o.RejectionReason = ""
	o.SubmittedAt = &now
	o.Status = StatusSubmitted
	o.CurrentStage = 0
	if len(o.ApprovalStages) > 0 {
		o.CurrentStage = o.ApprovalStages[0].Stage
	}
	o.MarkModified()
	o.AddDomainEvent(NewPurchaseOrderSubmittedEvent(o, from, actorID))

	if len(o.ApprovalStages) == 0 {
		o.Status = StatusApproved
		o.ApprovedAt = &now
		o.AddDomainEvent(NewPurchaseOrderApprovedEvent(o, StatusSubmitted, actorID, true))
	}
	return nil
}

// PendingStage returns the stage awaiting a decision
func (o *PurchaseOrder) PendingStage() (ApprovalStage, bool) {
	if o.Status != StatusSubmitted {
		return ApprovalStage{}, false
	}
	for _, s := range o.ApprovalStages {
		if s.Stage == o.CurrentStage {
			return s, true
		}
	}
	return ApprovalStage{}, false
}

// CurrentApprovals returns the decisions recorded in the latest submission round
func (o *PurchaseOrder) CurrentApprovals() []Approval {
	out := make([]Approval, 0, len(o.Approvals))
	for _, a := range o.Approvals {
		if a.Round == o.ApprovalRound {
			out = append(out, a)
		}
	}
	return out
}

// CanBeApprovedBy reports whether the approver may act on the pending stage
func (o *PurchaseOrder) CanBeApprovedBy(approver Approver) bool {
	stage, ok := o.PendingStage()
	if !ok {
		return false
	}
	return approver.canAct(o, stage) == nil
}

func (o *PurchaseOrder) decide(approver Approver, decision ApprovalDecision, comment string) (ApprovalStage, error) {
	stage, ok := o.PendingStage()
	if !ok {
		return ApprovalStage{}, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot record an approval decision on a %s purchase order", o.Status))
	}
	if err := approver.canAct(o, stage); err != nil {
		return ApprovalStage{}, err
	}
	o.Approvals = append(o.Approvals, Approval{
		ID:              uuid.New(),
		PurchaseOrderID: o.ID,
		Round:           o.ApprovalRound,
		Stage:           stage.Stage,
		StageRole:       stage.Role,
		ApproverID:      approver.UserID,
		ApproverRole:    approver.Role,
		Decision:        decision,
		Comment:         strings.TrimSpace(comment),
		DecidedAt:       time.Now(),
	})
	return stage, nil
}

// Approve signs off the pending stage. Clearing the last stage approves the order.
func (o *PurchaseOrder) Approve(approver Approver, comment string) error {
	stage, err := o.decide(approver, DecisionApproved, comment)
	if err != nil {
		return err
	}
	o.AddDomainEvent(NewPurchaseOrderStageApprovedEvent(o, stage, approver.UserID))

	next := 0
	for _, s := range o.ApprovalStages {
		if s.Stage > stage.Stage {
			next = s.Stage
			break
		}
	}
	o.CurrentStage = next
	if next == 0 {
		now := time.Now()
		o.Status = StatusApproved
		o.ApprovedAt = &now
		o.AddDomainEvent(NewPurchaseOrderApprovedEvent(o, StatusSubmitted, approver.UserID, false))
	}
	o.MarkModified()
	return nil
}

// Reject turns the order back to the requester with a reason
func (o *PurchaseOrder) Reject(approver Approver, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}
	if _, err := o.decide(approver, DecisionRejected, reason); err != nil {
		return err
	}
	o.Status = StatusRejected
	o.CurrentStage = 0
	o.RejectionReason = reason
	o.MarkModified()
	o.AddDomainEvent(NewPurchaseOrderRejectedEvent(o, approver.UserID, reason))
	return nil
}

// Reopen returns a rejected order to draft for revision
func (o *PurchaseOrder) Reopen(actorID uuid.UUID) error {
	if !o.Status.CanTransitionTo(StatusDraft) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reopen a %s purchase order", o.Status))
	}
	o.Status = StatusDraft
	o.ApprovalStages = nil
	o.CurrentStage = 0
	o.SubmittedAt = nil
	o.MarkModified()
	o.AddDomainEvent(NewPurchaseOrderReopenedEvent(o, actorID))
	return nil
}

// Issue sends an approved order to the vendor. The optional confirmation
// is the vendor's 4-character code that enables the legacy number.
func (o *PurchaseOrder) Issue(confirmation string, actorID uuid.UUID) error {
	if !o.Status.CanTransitionTo(StatusIssued) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot issue a %s purchase order", o.Status))
	}
	confirmation = strings.TrimSpace(confirmation)
	if confirmation != "" && !ponumber.IsConfirmationCode(confirmation) {
		return shared.NewDomainError("INVALID_CONFIRMATION",
			"Vendor confirmation must be 4 lowercase letters or digits, including at least one letter")
	}
	now := time.Now()
	o.Status = StatusIssued
	o.VendorConfirmation = confirmation
	o.IssuedAt = &now
	o.MarkModified()
	o.AddDomainEvent(NewPurchaseOrderIssuedEvent(o, actorID))
	return nil
}

// Receive records a delivery. The order becomes RECEIVED once every line is complete.
func (o *PurchaseOrder) Receive(lines []ReceiveLine, receivedBy uuid.UUID, packingSlip, note string) (*Receipt, error) {
	if !o.Status.CanReceive() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot receive goods on a %s purchase order", o.Status))
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Receipt must include at least one line")
	}
	if receivedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Receiver is required")
	}

	// validate against a copy so a bad line leaves the order untouched
	pending := make(map[uuid.UUID]decimal.Decimal, len(lines))
	for _, l := range lines {
		if l.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Receive quantity must be positive")
		}
		item := o.findItem(l.ItemID)
		if item == nil {
			return nil, shared.NewDomainError("ITEM_NOT_FOUND", fmt.Sprintf("Line item %s not found", l.ItemID))
		}
		total := pending[l.ItemID].Add(l.Quantity)
		if item.ReceivedQuantity.Add(total).GreaterThan(item.Quantity) {
			return nil, shared.NewDomainError("QUANTITY_EXCEEDED",
				fmt.Sprintf("Cannot receive %s of line %d, only %s remaining", total, item.LineNumber, item.RemainingQuantity()))
		}
		pending[l.ItemID] = total
	}

	now := time.Now()
	receipt := Receipt{
		ID:              uuid.New(),
		PurchaseOrderID: o.ID,
		ReceivedBy:      receivedBy,
		ReceivedAt:      now,
		PackingSlip:     strings.TrimSpace(packingSlip),
		Note:            strings.TrimSpace(note),
		Lines:           make([]ReceiptLine, 0, len(lines)),
	}
	for _, l := range lines {
		o.findItem(l.ItemID).addReceived(l.Quantity)
		receipt.Lines = append(receipt.Lines, ReceiptLine{
			ID:        uuid.New(),
			ReceiptID: receipt.ID,
			ItemID:    l.ItemID,
			Quantity:  l.Quantity,
		})
	}
	o.Receipts = append(o.Receipts, receipt)

	from := o.Status
	if o.IsFullyReceived() {
		o.Status = StatusReceived
		o.ReceivedAt = &now
	} else {
		o.Status = StatusPartiallyReceived
	}
	o.MarkModified()
	o.AddDomainEvent(NewPurchaseOrderReceivedEvent(o, from, &receipt))
	return &receipt, nil
}

// IsFullyReceived reports whether every line has arrived in full
func (o *PurchaseOrder) IsFullyReceived() bool {
	if len(o.Items) == 0 {
		return false
	}
	for _, item := range o.Items {
		if !item.IsFullyReceived() {
			return false
		}
	}
	return true
}

// ReceivedSubtotal is the value of the goods received so far, before tax
func (o *PurchaseOrder) ReceivedSubtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.ReceivedAmount())
	}
	return sum
}

// MarkPaid closes a received order once its invoices reconcile, or when
// a variance override has been granted.
func (o *PurchaseOrder) MarkPaid(rec Reconciliation, override bool, reference string, actorID uuid.UUID) error {
	if !o.Status.CanTransitionTo(StatusPaid) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot pay a %s purchase order", o.Status))
	}
	if rec.Status == ReconciliationNoInvoice {
		return shared.NewDomainError("NO_INVOICE", "Cannot pay a purchase order without a recorded invoice")
	}
	if !rec.WithinTolerance && !override {
		return shared.NewDomainError("VARIANCE_EXCEEDS_TOLERANCE",
			fmt.Sprintf("Invoiced %s differs from expected %s by more than %s", rec.Invoiced, rec.Expected, rec.Allowed))
	}
	now := time.Now()
	o.Status = StatusPaid
	o.PaidAt = &now
	o.PaymentReference = strings.TrimSpace(reference)
	o.VarianceOverridden = !rec.WithinTolerance
	o.MarkModified()
	o.AddDomainEvent(NewPurchaseOrderPaidEvent(o, rec, actorID))
	return nil
}

// Cancel abandons the order. Orders with goods received cannot be cancelled.
func (o *PurchaseOrder) Cancel(reason string, actorID uuid.UUID) error {
	if !o.Status.CanTransitionTo(StatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel a %s purchase order", o.Status))
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}
	from := o.Status
	now := time.Now()
	o.Status = StatusCancelled
	o.CancelReason = reason
	o.CancelledAt = &now
	o.CurrentStage = 0
	o.MarkModified()
	o.AddDomainEvent(NewPurchaseOrderCancelledEvent(o, from, actorID))
	return nil
}

// CanDelete reports whether the order may be soft-deleted
func (o *PurchaseOrder) CanDelete() bool {
	return o.Status.IsDeletable()
}

// IsArchivable reports whether the order is closed and older than the cutoff
func (o *PurchaseOrder) IsArchivable(cutoff time.Time) bool {
	if o.ArchivedAt != nil {
		return false
	}
	switch o.Status {
	case StatusPaid:
		return o.PaidAt != nil && o.PaidAt.Before(cutoff)
	case StatusCancelled:
		return o.CancelledAt != nil && o.CancelledAt.Before(cutoff)
	}
	return false
}
