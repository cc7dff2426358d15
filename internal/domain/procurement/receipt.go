package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptLine is the quantity of one line item delivered in a receipt
type ReceiptLine struct {
	ID        uuid.UUID
	ReceiptID uuid.UUID
	ItemID    uuid.UUID
	Quantity  decimal.Decimal
}

// Receipt records one delivery against an issued purchase order
type Receipt struct {
	ID              uuid.UUID
	PurchaseOrderID uuid.UUID
	ReceivedBy      uuid.UUID
	ReceivedAt      time.Time
	PackingSlip     string
	Note            string
	Lines           []ReceiptLine
}

// ReceiveLine is the input for receiving a quantity of one line item
type ReceiveLine struct {
	ItemID   uuid.UUID       `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}
