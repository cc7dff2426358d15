package procurement

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineItem is one material or service line on a purchase order
type LineItem struct {
	ID               uuid.UUID
	PurchaseOrderID  uuid.UUID
	LineNumber       int
	Description      string
	PartNumber       string
	Unit             string
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	Amount           decimal.Decimal // Quantity * UnitPrice, rounded to cents
	ReceivedQuantity decimal.Decimal
	CostCode         string
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LineItemInput carries the editable fields of a line item
type LineItemInput struct {
	Description string
	PartNumber  string
	Unit        string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	CostCode    string
	Notes       string
}

func (in LineItemInput) validate() error {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Line description cannot be empty")
	}
	if len(desc) > 500 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Line description cannot exceed 500 characters")
	}
	if strings.TrimSpace(in.Unit) == "" {
		return shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}
	if in.Quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if in.UnitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	return nil
}

func newLineItem(orderID uuid.UUID, lineNumber int, in LineItemInput) (*LineItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	item := &LineItem{
		ID:               uuid.New(),
		PurchaseOrderID:  orderID,
		LineNumber:       lineNumber,
		ReceivedQuantity: decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	item.apply(in)
	return item, nil
}

func (i *LineItem) apply(in LineItemInput) {
	i.Description = strings.TrimSpace(in.Description)
	i.PartNumber = strings.TrimSpace(in.PartNumber)
	i.Unit = strings.TrimSpace(in.Unit)
	i.Quantity = in.Quantity
	i.UnitPrice = in.UnitPrice
	i.Amount = in.Quantity.Mul(in.UnitPrice).Round(2)
	i.CostCode = strings.TrimSpace(in.CostCode)
	i.Notes = in.Notes
	i.UpdatedAt = time.Now()
}

// RemainingQuantity returns the quantity still to be received
func (i *LineItem) RemainingQuantity() decimal.Decimal {
	remaining := i.Quantity.Sub(i.ReceivedQuantity)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// IsFullyReceived returns true once the ordered quantity has arrived
func (i *LineItem) IsFullyReceived() bool {
	return i.ReceivedQuantity.GreaterThanOrEqual(i.Quantity)
}

// ReceivedAmount is the value of what has arrived so far
func (i *LineItem) ReceivedAmount() decimal.Decimal {
	return i.ReceivedQuantity.Mul(i.UnitPrice).Round(2)
}

// addReceived adds a delivered quantity. Receive checks it against the
// remaining quantity first.
func (i *LineItem) addReceived(quantity decimal.Decimal) {
	i.ReceivedQuantity = i.ReceivedQuantity.Add(quantity)
	i.UpdatedAt = time.Now()
}
