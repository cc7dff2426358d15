package procurement

import (
	"github.com/shopspring/decimal"
)

// ReconciliationStatus summarises how invoices compare to received goods
type ReconciliationStatus string

const (
	ReconciliationNoInvoice   ReconciliationStatus = "NO_INVOICE"
	ReconciliationMatched     ReconciliationStatus = "MATCHED"
	ReconciliationUnderBilled ReconciliationStatus = "UNDER_BILLED"
	ReconciliationOverBilled  ReconciliationStatus = "OVER_BILLED"
)

var hundred = decimal.NewFromInt(100)

// Tolerance is how far invoiced totals may drift from the expected amount
type Tolerance struct {
	// Percent of the expected amount, e.g. 2 for 2%
	Percent decimal.Decimal
	// Amount is an absolute floor in dollars
	Amount decimal.Decimal
}

// DefaultTolerance allows 2% or $5, whichever is larger
func DefaultTolerance() Tolerance {
	return Tolerance{Percent: decimal.NewFromInt(2), Amount: decimal.NewFromInt(5)}
}

// Allowed returns the permitted absolute variance for an expected amount
func (t Tolerance) Allowed(expected decimal.Decimal) decimal.Decimal {
	pct := expected.Abs().Mul(t.Percent).Div(hundred).Round(2)
	if pct.GreaterThan(t.Amount) {
		return pct
	}
	return t.Amount
}

// Reconciliation is the three-way match of order, receipts and invoices
type Reconciliation struct {
	PurchaseOrderID  string               `json:"purchase_order_id"`
	Ordered          decimal.Decimal      `json:"ordered"`
	ReceivedSubtotal decimal.Decimal      `json:"received_subtotal"`
	ProratedTax      decimal.Decimal      `json:"prorated_tax"`
	Expected         decimal.Decimal      `json:"expected"`
	Invoiced         decimal.Decimal      `json:"invoiced"`
	Variance         decimal.Decimal      `json:"variance"`
	Allowed          decimal.Decimal      `json:"allowed"`
	InvoiceCount     int                  `json:"invoice_count"`
	Status           ReconciliationStatus `json:"status"`
	WithinTolerance  bool                 `json:"within_tolerance"`
}

// Reconcile compares the invoiced total against the value of goods received.
// Tax is pro-rated by the received share of the subtotal. Void invoices are ignored.
func Reconcile(po *PurchaseOrder, invoices []Invoice, tol Tolerance) Reconciliation {
	received := po.ReceivedSubtotal()
	tax := decimal.Zero
	if po.Subtotal.IsPositive() {
		tax = po.TaxAmount.Mul(received).Div(po.Subtotal).Round(2)
	}
	expected := received.Add(tax)

	invoiced := decimal.Zero
	count := 0
	for _, inv := range invoices {
		if inv.PurchaseOrderID != po.ID || inv.Status == InvoiceStatusVoid {
			continue
		}
		invoiced = invoiced.Add(inv.Amount)
		count++
	}

	rec := Reconciliation{
		PurchaseOrderID:  po.ID.String(),
		Ordered:          po.Total,
		ReceivedSubtotal: received,
		ProratedTax:      tax,
		Expected:         expected,
		Invoiced:         invoiced,
		Variance:         invoiced.Sub(expected),
		Allowed:          tol.Allowed(expected),
		InvoiceCount:     count,
	}

	switch {
	case count == 0:
		rec.Status = ReconciliationNoInvoice
	case rec.Variance.Abs().LessThanOrEqual(rec.Allowed):
		rec.Status = ReconciliationMatched
		rec.WithinTolerance = true
	case rec.Variance.IsPositive():
		rec.Status = ReconciliationOverBilled
	default:
		rec.Status = ReconciliationUnderBilled
	}
	return rec
}
