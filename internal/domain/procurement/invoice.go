package procurement

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle of a vendor invoice
type InvoiceStatus string

const (
	InvoiceStatusRecorded InvoiceStatus = "RECORDED"
	InvoiceStatusPaid     InvoiceStatus = "PAID"
	InvoiceStatusVoid     InvoiceStatus = "VOID"
)

// IsValid checks if the status is known
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusRecorded, InvoiceStatusPaid, InvoiceStatusVoid:
		return true
	}
	return false
}

// Invoice is a vendor bill recorded against a purchase order
type Invoice struct {
	shared.BaseAggregateRoot
	PurchaseOrderID uuid.UUID
	VendorID        uuid.UUID
	Number          string
	Amount          decimal.Decimal
	InvoiceDate     time.Time
	DueDate         *time.Time
	Status          InvoiceStatus
	AttachmentKey   string
	RecordedBy      uuid.UUID
	Notes           string
	PaidAt          *time.Time
	VoidedAt        *time.Time
	VoidReason      string
}

// NewInvoiceParams holds what is recorded from the vendor document
type NewInvoiceParams struct {
	Number      string
	Amount      decimal.Decimal
	InvoiceDate time.Time
	DueDate     *time.Time
	// TermsDays derives the due date when DueDate is not given
	TermsDays  int
	RecordedBy uuid.UUID
	Notes      string
}

// NewInvoice records an invoice against an order that has been issued
func NewInvoice(po *PurchaseOrder, p NewInvoiceParams) (*Invoice, error) {
	if po == nil {
		return nil, shared.NewDomainError("INVALID_PURCHASE_ORDER", "Purchase order is required")
	}
	if !po.Status.CanInvoice() {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot record invoices on a %s purchase order", po.Status))
	}
	number := strings.TrimSpace(p.Number)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(number) > 100 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 100 characters")
	}
	if !p.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice amount must be positive")
	}
	if p.InvoiceDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Invoice date is required")
	}
	due := p.DueDate
	if due == nil {
		d := p.InvoiceDate.AddDate(0, 0, p.TermsDays)
		due = &d
	}
	if due != nil && due.Before(p.InvoiceDate) {
		return nil, shared.NewDomainError("INVALID_DATE", "Due date cannot be before the invoice date")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PurchaseOrderID:   po.ID,
		VendorID:          po.VendorID,
		Number:            number,
		Amount:            p.Amount.Round(2),
		InvoiceDate:       p.InvoiceDate,
		DueDate:           due,
		Status:            InvoiceStatusRecorded,
		RecordedBy:        p.RecordedBy,
		Notes:             strings.TrimSpace(p.Notes),
	}
	inv.AddDomainEvent(NewInvoiceRecordedEvent(inv, po))
	return inv, nil
}

// AttachDocument links the stored copy of the vendor document
func (i *Invoice) AttachDocument(key string) {
	i.AttachmentKey = key
	i.MarkModified()
}

// MarkPaid settles a recorded invoice
func (i *Invoice) MarkPaid() error {
	if i.Status != InvoiceStatusRecorded {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot pay a %s invoice", i.Status))
	}
	now := time.Now()
	i.Status = InvoiceStatusPaid
	i.PaidAt = &now
	i.MarkModified()
	return nil
}

// Void withdraws a recorded invoice from reconciliation
func (i *Invoice) Void(reason string, actorID uuid.UUID) error {
	if i.Status != InvoiceStatusRecorded {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot void a %s invoice", i.Status))
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Void reason is required")
	}
	now := time.Now()
	i.Status = InvoiceStatusVoid
	i.VoidedAt = &now
	i.VoidReason = reason
	i.MarkModified()
	i.AddDomainEvent(NewInvoiceVoidedEvent(i, actorID))
	return nil
}

// IsOverdue reports whether a recorded invoice is past its due date
func (i *Invoice) IsOverdue(now time.Time) bool {
	return i.Status == InvoiceStatusRecorded && i.DueDate != nil && now.After(*i.DueDate)
}
