package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/roofpo/backend/internal/domain/procurement/ponumber"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root.
// The number is stored both encoded and as its components so legacy lookups can
// match on the logical fields.
type PurchaseOrderModel struct {
	AggregateModel
	PONumber           string                   `gorm:"column:po_number;type:varchar(20);not null;uniqueIndex"`
	LeaderID           string                   `gorm:"type:varchar(2);not null;uniqueIndex:idx_po_components,priority:1"`
	DivisionCode       string                   `gorm:"type:varchar(3);not null;uniqueIndex:idx_po_components,priority:2"`
	WorkOrderNumber    int                      `gorm:"not null;uniqueIndex:idx_po_components,priority:3"`
	PurchaseSequence   int                      `gorm:"not null;uniqueIndex:idx_po_components,priority:4"`
	DivisionID         uuid.UUID                `gorm:"type:uuid;not null;index"`
	ProjectID          uuid.UUID                `gorm:"type:uuid;not null;index"`
	WorkOrderID        uuid.UUID                `gorm:"type:uuid;not null;index"`
	VendorID           uuid.UUID                `gorm:"type:uuid;not null;index"`
	RequestedBy        uuid.UUID                `gorm:"type:uuid;not null;index"`
	Description        string                   `gorm:"type:text"`
	DeliveryAddress    string                   `gorm:"type:varchar(500)"`
	NeededBy           *time.Time               `gorm:"type:date"`
	Subtotal           decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0"`
	TaxAmount          decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0"`
	Total              decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0"`
	Status             procurement.Status       `gorm:"type:varchar(30);not null;default:'DRAFT';index"`
	ApprovalRound      int                      `gorm:"not null;default:0"`
	ApprovalStages     string                   `gorm:"type:jsonb;not null;default:'[]'"`
	CurrentStage       int                      `gorm:"not null;default:0"`
	VendorConfirmation string                   `gorm:"type:varchar(4)"`
	PaymentReference   string                   `gorm:"type:varchar(100)"`
	VarianceOverridden bool                     `gorm:"not null;default:false"`
	RejectionReason    string                   `gorm:"type:varchar(500)"`
	CancelReason       string                   `gorm:"type:varchar(500)"`
	SubmittedAt        *time.Time               `gorm:"index"`
	ApprovedAt         *time.Time               `gorm:"index"`
	IssuedAt           *time.Time               `gorm:"index"`
	ReceivedAt         *time.Time               `gorm:"index"`
	PaidAt             *time.Time               `gorm:"index"`
	CancelledAt        *time.Time               `gorm:"index"`
	ArchivedAt         *time.Time               `gorm:"index"`
	DeletedAt          gorm.DeletedAt           `gorm:"index"`
	Items              []PurchaseOrderItemModel `gorm:"foreignKey:PurchaseOrderID;references:ID"`
	Approvals          []ApprovalModel          `gorm:"foreignKey:PurchaseOrderID;references:ID"`
	Receipts           []ReceiptModel           `gorm:"foreignKey:PurchaseOrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder.
func (m *PurchaseOrderModel) ToDomain() *procurement.PurchaseOrder {
	po := &procurement.PurchaseOrder{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Number: ponumber.Number{
			LeaderID:         m.LeaderID,
			DivisionCode:     m.DivisionCode,
			WorkOrderNumber:  m.WorkOrderNumber,
			PurchaseSequence: m.PurchaseSequence,
		},
		DivisionID:         m.DivisionID,
		ProjectID:          m.ProjectID,
		WorkOrderID:        m.WorkOrderID,
		VendorID:           m.VendorID,
		RequestedBy:        m.RequestedBy,
		Description:        m.Description,
		DeliveryAddress:    m.DeliveryAddress,
		NeededBy:           m.NeededBy,
		Subtotal:           m.Subtotal,
		TaxAmount:          m.TaxAmount,
		Total:              m.Total,
		Status:             m.Status,
		ApprovalRound:      m.ApprovalRound,
		ApprovalStages:     decodeStages(m.ApprovalStages),
		CurrentStage:       m.CurrentStage,
		VendorConfirmation: m.VendorConfirmation,
		PaymentReference:   m.PaymentReference,
		VarianceOverridden: m.VarianceOverridden,
		RejectionReason:    m.RejectionReason,
		CancelReason:       m.CancelReason,
		SubmittedAt:        m.SubmittedAt,
		ApprovedAt:         m.ApprovedAt,
		IssuedAt:           m.IssuedAt,
		ReceivedAt:         m.ReceivedAt,
		PaidAt:             m.PaidAt,
		CancelledAt:        m.CancelledAt,
		ArchivedAt:         m.ArchivedAt,
		Items:              make([]procurement.LineItem, len(m.Items)),
		Approvals:          make([]procurement.Approval, len(m.Approvals)),
		Receipts:           make([]procurement.Receipt, len(m.Receipts)),
	}
	for i := range m.Items {
		po.Items[i] = *m.Items[i].ToDomain()
	}
	for i := range m.Approvals {
		po.Approvals[i] = *m.Approvals[i].ToDomain()
	}
	for i := range m.Receipts {
		po.Receipts[i] = *m.Receipts[i].ToDomain()
	}
	return po
}

// FromDomain populates the persistence model from a domain PurchaseOrder.
func (m *PurchaseOrderModel) FromDomain(po *procurement.PurchaseOrder) {
	m.FromDomainAggregateRoot(po.BaseAggregateRoot)
	m.PONumber = po.PONumber()
	m.LeaderID = po.Number.LeaderID
	m.DivisionCode = po.Number.DivisionCode
	m.WorkOrderNumber = po.Number.WorkOrderNumber
	m.PurchaseSequence = po.Number.PurchaseSequence
	m.DivisionID = po.DivisionID
	m.ProjectID = po.ProjectID
	m.WorkOrderID = po.WorkOrderID
	m.VendorID = po.VendorID
	m.RequestedBy = po.RequestedBy
	m.Description = po.Description
	m.DeliveryAddress = po.DeliveryAddress
	m.NeededBy = po.NeededBy
	m.Subtotal = po.Subtotal
	m.TaxAmount = po.TaxAmount
	m.Total = po.Total
	m.Status = po.Status
	m.ApprovalRound = po.ApprovalRound
	m.ApprovalStages = encodeStages(po.ApprovalStages)
	m.CurrentStage = po.CurrentStage
	m.VendorConfirmation = po.VendorConfirmation
	m.PaymentReference = po.PaymentReference
	m.VarianceOverridden = po.VarianceOverridden
	m.RejectionReason = po.RejectionReason
	m.CancelReason = po.CancelReason
	m.SubmittedAt = po.SubmittedAt
	m.ApprovedAt = po.ApprovedAt
	m.IssuedAt = po.IssuedAt
	m.ReceivedAt = po.ReceivedAt
	m.PaidAt = po.PaidAt
	m.CancelledAt = po.CancelledAt
	m.ArchivedAt = po.ArchivedAt
}

// UpdateColumns returns the mutable header columns written by a version-checked update
func (m *PurchaseOrderModel) UpdateColumns() map[string]any {
	return map[string]any{
		"vendor_id":           m.VendorID,
		"description":         m.Description,
		"delivery_address":    m.DeliveryAddress,
		"needed_by":           m.NeededBy,
		"subtotal":            m.Subtotal,
		"tax_amount":          m.TaxAmount,
		"total":               m.Total,
		"status":              m.Status,
		"approval_round":      m.ApprovalRound,
		"approval_stages":     m.ApprovalStages,
		"current_stage":       m.CurrentStage,
		"vendor_confirmation": m.VendorConfirmation,
		"payment_reference":   m.PaymentReference,
		"variance_overridden": m.VarianceOverridden,
		"rejection_reason":    m.RejectionReason,
		"cancel_reason":       m.CancelReason,
		"submitted_at":        m.SubmittedAt,
		"approved_at":         m.ApprovedAt,
		"issued_at":           m.IssuedAt,
		"received_at":         m.ReceivedAt,
		"paid_at":             m.PaidAt,
		"cancelled_at":        m.CancelledAt,
		"archived_at":         m.ArchivedAt,
		"version":             m.Version,
		"updated_at":          m.UpdatedAt,
	}
}

// PurchaseOrderModelFromDomain creates a new persistence model from a domain PurchaseOrder.
func PurchaseOrderModelFromDomain(po *procurement.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(po)
	return m
}

type stageJSON struct {
	Stage int           `json:"stage"`
	Role  identity.Role `json:"role"`
}

func encodeStages(stages []procurement.ApprovalStage) string {
	out := make([]stageJSON, len(stages))
	for i, s := range stages {
		out[i] = stageJSON{Stage: s.Stage, Role: s.Role}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeStages(raw string) []procurement.ApprovalStage {
	var in []stageJSON
	if raw == "" || json.Unmarshal([]byte(raw), &in) != nil {
		return nil
	}
	stages := make([]procurement.ApprovalStage, len(in))
	for i, s := range in {
		stages[i] = procurement.ApprovalStage{Stage: s.Stage, Role: s.Role}
	}
	return stages
}

// PurchaseOrderItemModel is the persistence model for a purchase order line.
type PurchaseOrderItemModel struct {
	BaseModel
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNumber       int             `gorm:"not null"`
	Description      string          `gorm:"type:varchar(500);not null"`
	PartNumber       string          `gorm:"type:varchar(100)"`
	Unit             string          `gorm:"type:varchar(20);not null"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ReceivedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CostCode         string          `gorm:"type:varchar(50)"`
	Notes            string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// ToDomain converts the persistence model to a domain LineItem.
func (m *PurchaseOrderItemModel) ToDomain() *procurement.LineItem {
	return &procurement.LineItem{
		ID:               m.ID,
		PurchaseOrderID:  m.PurchaseOrderID,
		LineNumber:       m.LineNumber,
		Description:      m.Description,
		PartNumber:       m.PartNumber,
		Unit:             m.Unit,
		Quantity:         m.Quantity,
		UnitPrice:        m.UnitPrice,
		Amount:           m.Amount,
		ReceivedQuantity: m.ReceivedQuantity,
		CostCode:         m.CostCode,
		Notes:            m.Notes,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// PurchaseOrderItemModelFromDomain creates a persistence model from a domain LineItem.
func PurchaseOrderItemModelFromDomain(item *procurement.LineItem) *PurchaseOrderItemModel {
	return &PurchaseOrderItemModel{
		BaseModel: BaseModel{
			ID:        item.ID,
			CreatedAt: item.CreatedAt,
			UpdatedAt: item.UpdatedAt,
		},
		PurchaseOrderID:  item.PurchaseOrderID,
		LineNumber:       item.LineNumber,
		Description:      item.Description,
		PartNumber:       item.PartNumber,
		Unit:             item.Unit,
		Quantity:         item.Quantity,
		UnitPrice:        item.UnitPrice,
		Amount:           item.Amount,
		ReceivedQuantity: item.ReceivedQuantity,
		CostCode:         item.CostCode,
		Notes:            item.Notes,
	}
}

// ApprovalModel is the persistence model for one approval decision. Rows are append-only.
type ApprovalModel struct {
	ID              uuid.UUID                    `gorm:"type:uuid;primary_key"`
	PurchaseOrderID uuid.UUID                    `gorm:"type:uuid;not null;index"`
	Round           int                          `gorm:"not null"`
	Stage           int                          `gorm:"not null"`
	StageRole       identity.Role                `gorm:"type:varchar(30);not null"`
	ApproverID      uuid.UUID                    `gorm:"type:uuid;not null;index"`
	ApproverRole    identity.Role                `gorm:"type:varchar(30);not null"`
	Decision        procurement.ApprovalDecision `gorm:"type:varchar(20);not null"`
	Comment         string                       `gorm:"type:varchar(1000)"`
	DecidedAt       time.Time                    `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ApprovalModel) TableName() string {
	return "po_approvals"
}

// ToDomain converts the persistence model to a domain Approval.
func (m *ApprovalModel) ToDomain() *procurement.Approval {
	return &procurement.Approval{
		ID:              m.ID,
		PurchaseOrderID: m.PurchaseOrderID,
		Round:           m.Round,
		Stage:           m.Stage,
		StageRole:       m.StageRole,
		ApproverID:      m.ApproverID,
		ApproverRole:    m.ApproverRole,
		Decision:        m.Decision,
		Comment:         m.Comment,
		DecidedAt:       m.DecidedAt,
	}
}

// ApprovalModelFromDomain creates a persistence model from a domain Approval.
func ApprovalModelFromDomain(a *procurement.Approval) *ApprovalModel {
	return &ApprovalModel{
		ID:              a.ID,
		PurchaseOrderID: a.PurchaseOrderID,
		Round:           a.Round,
		Stage:           a.Stage,
		StageRole:       a.StageRole,
		ApproverID:      a.ApproverID,
		ApproverRole:    a.ApproverRole,
		Decision:        a.Decision,
		Comment:         a.Comment,
		DecidedAt:       a.DecidedAt,
	}
}

// ReceiptModel is the persistence model for a delivery against an order. Rows are append-only.
type ReceiptModel struct {
	ID              uuid.UUID          `gorm:"type:uuid;primary_key"`
	PurchaseOrderID uuid.UUID          `gorm:"type:uuid;not null;index"`
	ReceivedBy      uuid.UUID          `gorm:"type:uuid;not null"`
	ReceivedAt      time.Time          `gorm:"not null;index"`
	PackingSlip     string             `gorm:"type:varchar(100)"`
	Note            string             `gorm:"type:varchar(1000)"`
	Lines           []ReceiptLineModel `gorm:"foreignKey:ReceiptID;references:ID"`
}

// TableName returns the table name for GORM
func (ReceiptModel) TableName() string {
	return "po_receipts"
}

// ToDomain converts the persistence model to a domain Receipt.
func (m *ReceiptModel) ToDomain() *procurement.Receipt {
	r := &procurement.Receipt{
		ID:              m.ID,
		PurchaseOrderID: m.PurchaseOrderID,
		ReceivedBy:      m.ReceivedBy,
		ReceivedAt:      m.ReceivedAt,
		PackingSlip:     m.PackingSlip,
		Note:            m.Note,
		Lines:           make([]procurement.ReceiptLine, len(m.Lines)),
	}
	for i, l := range m.Lines {
		r.Lines[i] = procurement.ReceiptLine{
			ID:        l.ID,
			ReceiptID: l.ReceiptID,
			ItemID:    l.ItemID,
			Quantity:  l.Quantity,
		}
	}
	return r
}

// ReceiptModelFromDomain creates a persistence model, lines included, from a domain Receipt.
func ReceiptModelFromDomain(r *procurement.Receipt) *ReceiptModel {
	m := &ReceiptModel{
		ID:              r.ID,
		PurchaseOrderID: r.PurchaseOrderID,
		ReceivedBy:      r.ReceivedBy,
		ReceivedAt:      r.ReceivedAt,
		PackingSlip:     r.PackingSlip,
		Note:            r.Note,
		Lines:           make([]ReceiptLineModel, len(r.Lines)),
	}
	for i, l := range r.Lines {
		m.Lines[i] = ReceiptLineModel{
			ID:        l.ID,
			ReceiptID: r.ID,
			ItemID:    l.ItemID,
			Quantity:  l.Quantity,
		}
	}
	return m
}

// ReceiptLineModel is the persistence model for one received line.
type ReceiptLineModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReceiptID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (ReceiptLineModel) TableName() string {
	return "po_receipt_lines"
}

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	AggregateModel
	PurchaseOrderID uuid.UUID                 `gorm:"type:uuid;not null;index"`
	VendorID        uuid.UUID                 `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_vendor_number,priority:1"`
	Number          string                    `gorm:"type:varchar(100);not null;uniqueIndex:idx_invoice_vendor_number,priority:2"`
	Amount          decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	InvoiceDate     time.Time                 `gorm:"type:date;not null"`
	DueDate         *time.Time                `gorm:"type:date;index"`
	Status          procurement.InvoiceStatus `gorm:"type:varchar(20);not null;default:'RECORDED'"`
	AttachmentKey   string                    `gorm:"type:varchar(500)"`
	RecordedBy      uuid.UUID                 `gorm:"type:uuid;not null"`
	Notes           string                    `gorm:"type:text"`
	PaidAt          *time.Time
	VoidedAt        *time.Time
	VoidReason      string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice.
func (m *InvoiceModel) ToDomain() *procurement.Invoice {
	return &procurement.Invoice{
		BaseAggregateRoot: m.ToAggregateRoot(),
		PurchaseOrderID:   m.PurchaseOrderID,
		VendorID:          m.VendorID,
		Number:            m.Number,
		Amount:            m.Amount,
		InvoiceDate:       m.InvoiceDate,
		DueDate:           m.DueDate,
		Status:            m.Status,
		AttachmentKey:     m.AttachmentKey,
		RecordedBy:        m.RecordedBy,
		Notes:             m.Notes,
		PaidAt:            m.PaidAt,
		VoidedAt:          m.VoidedAt,
		VoidReason:        m.VoidReason,
	}
}

// FromDomain populates the persistence model from a domain Invoice.
func (m *InvoiceModel) FromDomain(inv *procurement.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.PurchaseOrderID = inv.PurchaseOrderID
	m.VendorID = inv.VendorID
	m.Number = inv.Number
	m.Amount = inv.Amount
	m.InvoiceDate = inv.InvoiceDate
	m.DueDate = inv.DueDate
	m.Status = inv.Status
	m.AttachmentKey = inv.AttachmentKey
	m.RecordedBy = inv.RecordedBy
	m.Notes = inv.Notes
	m.PaidAt = inv.PaidAt
	m.VoidedAt = inv.VoidedAt
	m.VoidReason = inv.VoidReason
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *procurement.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// HistoryModel is the persistence model for a purchase order audit entry.
type HistoryModel struct {
	ID              uuid.UUID          `gorm:"type:uuid;primary_key"`
	PurchaseOrderID uuid.UUID          `gorm:"type:uuid;not null;index:idx_po_history_order,priority:1"`
	EventID         uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex"`
	EventType       string             `gorm:"type:varchar(100);not null"`
	FromStatus      procurement.Status `gorm:"type:varchar(30)"`
	ToStatus        procurement.Status `gorm:"type:varchar(30)"`
	ActorID         uuid.UUID          `gorm:"type:uuid"`
	Summary         string             `gorm:"type:varchar(1000)"`
	OccurredAt      time.Time          `gorm:"not null;index:idx_po_history_order,priority:2"`
}

// TableName returns the table name for GORM
func (HistoryModel) TableName() string {
	return "po_history"
}

// ToDomain converts the persistence model to a domain HistoryEntry.
func (m *HistoryModel) ToDomain() procurement.HistoryEntry {
	return procurement.HistoryEntry{
		ID:              m.ID,
		PurchaseOrderID: m.PurchaseOrderID,
		EventID:         m.EventID,
		EventType:       m.EventType,
		FromStatus:      m.FromStatus,
		ToStatus:        m.ToStatus,
		ActorID:         m.ActorID,
		Summary:         m.Summary,
		OccurredAt:      m.OccurredAt,
	}
}

// HistoryModelFromDomain creates a persistence model from a domain HistoryEntry.
func HistoryModelFromDomain(e *procurement.HistoryEntry) *HistoryModel {
	return &HistoryModel{
		ID:              e.ID,
		PurchaseOrderID: e.PurchaseOrderID,
		EventID:         e.EventID,
		EventType:       e.EventType,
		FromStatus:      e.FromStatus,
		ToStatus:        e.ToStatus,
		ActorID:         e.ActorID,
		Summary:         e.Summary,
		OccurredAt:      e.OccurredAt,
	}
}
