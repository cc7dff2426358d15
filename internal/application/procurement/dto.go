package procurement

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/roofpo/backend/internal/domain/procurement/ponumber"
	"github.com/shopspring/decimal"
)

// ==================== Purchase Order Requests ====================

// CreatePurchaseOrderRequest opens a draft against a work order
type CreatePurchaseOrderRequest struct {
	WorkOrderID     uuid.UUID
	VendorID        uuid.UUID
	Description     string
	DeliveryAddress string
	NeededBy        *time.Time
	TaxAmount       *decimal.Decimal
	Lines           []LineItemRequest
}

// UpdatePurchaseOrderRequest changes header fields of a draft. Nil fields are left alone.
type UpdatePurchaseOrderRequest struct {
	// Version, when set, must match the stored version
	Version         int
	VendorID        *uuid.UUID
	Description     *string
	DeliveryAddress *string
	NeededBy        *time.Time
	TaxAmount       *decimal.Decimal
}

// LineItemRequest carries the fields of one line
type LineItemRequest struct {
	Description string
	PartNumber  string
	Unit        string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	CostCode    string
	Notes       string
}

func (r LineItemRequest) toInput() procurement.LineItemInput {
	return procurement.LineItemInput{
		Description: r.Description,
		PartNumber:  r.PartNumber,
		Unit:        r.Unit,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		CostCode:    r.CostCode,
		Notes:       r.Notes,
	}
}

// ReceiveRequest records a delivery
type ReceiveRequest struct {
	Lines       []procurement.ReceiveLine
	PackingSlip string
	Note        string
}

// PayRequest closes a received order
type PayRequest struct {
	Reference string
	// OverrideVariance pays despite an out-of-tolerance reconciliation
	OverrideVariance bool
}

// PurchaseOrderListFilter is the query accepted by List and the CSV export
type PurchaseOrderListFilter struct {
	Page        int
	PageSize    int
	OrderBy     string
	OrderDir    string
	Search      string
	Statuses    []procurement.Status
	DivisionID  *uuid.UUID
	ProjectID   *uuid.UUID
	WorkOrderID *uuid.UUID
	VendorID    *uuid.UUID
	RequestedBy *uuid.UUID
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ==================== Purchase Order Responses ====================

// PurchaseOrderResponse is the full view of an order
type PurchaseOrderResponse struct {
	ID                 uuid.UUID           `json:"id"`
	PONumber           string              `json:"po_number"`
	LegacyNumber       string              `json:"legacy_number,omitempty"`
	Components         ponumber.Number     `json:"components"`
	DivisionID         uuid.UUID           `json:"division_id"`
	ProjectID          uuid.UUID           `json:"project_id"`
	WorkOrderID        uuid.UUID           `json:"work_order_id"`
	VendorID           uuid.UUID           `json:"vendor_id"`
	RequestedBy        uuid.UUID           `json:"requested_by"`
	Description        string              `json:"description"`
	DeliveryAddress    string              `json:"delivery_address,omitempty"`
	NeededBy           *time.Time          `json:"needed_by,omitempty"`
	Lines              []LineItemResponse  `json:"lines"`
	Subtotal           decimal.Decimal     `json:"subtotal"`
	TaxAmount          decimal.Decimal     `json:"tax_amount"`
	Total              decimal.Decimal     `json:"total"`
	Status             procurement.Status  `json:"status"`
	ApprovalStages     []ApprovalStageView `json:"approval_stages"`
	CurrentStage       int                 `json:"current_stage"`
	Approvals          []ApprovalResponse  `json:"approvals"`
	Receipts           []ReceiptResponse   `json:"receipts"`
	VendorConfirmation string              `json:"vendor_confirmation,omitempty"`
	PaymentReference   string              `json:"payment_reference,omitempty"`
	VarianceOverridden bool                `json:"variance_overridden"`
	RejectionReason    string              `json:"rejection_reason,omitempty"`
	CancelReason       string              `json:"cancel_reason,omitempty"`
	SubmittedAt        *time.Time          `json:"submitted_at,omitempty"`
	ApprovedAt         *time.Time          `json:"approved_at,omitempty"`
	IssuedAt           *time.Time          `json:"issued_at,omitempty"`
	ReceivedAt         *time.Time          `json:"received_at,omitempty"`
	PaidAt             *time.Time          `json:"paid_at,omitempty"`
	CancelledAt        *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	Version            int                 `json:"version"`
}

// PurchaseOrderListItemResponse is the summary row used in listings
type PurchaseOrderListItemResponse struct {
	ID           uuid.UUID          `json:"id"`
	PONumber     string             `json:"po_number"`
	DivisionID   uuid.UUID          `json:"division_id"`
	ProjectID    uuid.UUID          `json:"project_id"`
	WorkOrderID  uuid.UUID          `json:"work_order_id"`
	VendorID     uuid.UUID          `json:"vendor_id"`
	RequestedBy  uuid.UUID          `json:"requested_by"`
	Description  string             `json:"description"`
	LineCount    int                `json:"line_count"`
	Total        decimal.Decimal    `json:"total"`
	Status       procurement.Status `json:"status"`
	CurrentStage int                `json:"current_stage"`
	NeededBy     *time.Time         `json:"needed_by,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// LineItemResponse is one line of an order
type LineItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	LineNumber        int             `json:"line_number"`
	Description       string          `json:"description"`
	PartNumber        string          `json:"part_number,omitempty"`
	Unit              string          `json:"unit"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Amount            decimal.Decimal `json:"amount"`
	ReceivedQuantity  decimal.Decimal `json:"received_quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	CostCode          string          `json:"cost_code,omitempty"`
	Notes             string          `json:"notes,omitempty"`
}

// ApprovalStageView is one required sign-off
type ApprovalStageView struct {
	Stage int    `json:"stage"`
	Role  string `json:"role"`
}

// ApprovalResponse is one recorded decision
type ApprovalResponse struct {
	ID           uuid.UUID `json:"id"`
	Round        int       `json:"round"`
	Stage        int       `json:"stage"`
	StageRole    string    `json:"stage_role"`
	ApproverID   uuid.UUID `json:"approver_id"`
	ApproverRole string    `json:"approver_role"`
	Decision     string    `json:"decision"`
	Comment      string    `json:"comment,omitempty"`
	DecidedAt    time.Time `json:"decided_at"`
}

// ReceiptResponse is one delivery
type ReceiptResponse struct {
	ID          uuid.UUID             `json:"id"`
	ReceivedBy  uuid.UUID             `json:"received_by"`
	ReceivedAt  time.Time             `json:"received_at"`
	PackingSlip string                `json:"packing_slip,omitempty"`
	Note        string                `json:"note,omitempty"`
	Lines       []ReceiptLineResponse `json:"lines"`
}

// ReceiptLineResponse is the quantity of one line in a delivery
type ReceiptLineResponse struct {
	ItemID   uuid.UUID       `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ReceiveResultResponse is returned by Receive
type ReceiveResultResponse struct {
	Order           PurchaseOrderResponse `json:"order"`
	Receipt         ReceiptResponse       `json:"receipt"`
	IsFullyReceived bool                  `json:"is_fully_received"`
}

// ToPurchaseOrderResponse converts the aggregate to its full view
func ToPurchaseOrderResponse(po *procurement.PurchaseOrder) PurchaseOrderResponse {
	resp := PurchaseOrderResponse{
		ID:                 po.ID,
		PONumber:           po.PONumber(),
		Components:         po.Number,
		DivisionID:         po.DivisionID,
		ProjectID:          po.ProjectID,
		WorkOrderID:        po.WorkOrderID,
		VendorID:           po.VendorID,
		RequestedBy:        po.RequestedBy,
		Description:        po.Description,
		DeliveryAddress:    po.DeliveryAddress,
		NeededBy:           po.NeededBy,
		Lines:              make([]LineItemResponse, len(po.Items)),
		Subtotal:           po.Subtotal,
		TaxAmount:          po.TaxAmount,
		Total:              po.Total,
		Status:             po.Status,
		ApprovalStages:     make([]ApprovalStageView, len(po.ApprovalStages)),
		CurrentStage:       po.CurrentStage,
		Approvals:          make([]ApprovalResponse, len(po.Approvals)),
		Receipts:           make([]ReceiptResponse, len(po.Receipts)),
		VendorConfirmation: po.VendorConfirmation,
		PaymentReference:   po.PaymentReference,
		VarianceOverridden: po.VarianceOverridden,
		RejectionReason:    po.RejectionReason,
		CancelReason:       po.CancelReason,
		SubmittedAt:        po.SubmittedAt,
		ApprovedAt:         po.ApprovedAt,
		IssuedAt:           po.IssuedAt,
		ReceivedAt:         po.ReceivedAt,
		PaidAt:             po.PaidAt,
		CancelledAt:        po.CancelledAt,
		CreatedAt:          po.CreatedAt,
		UpdatedAt:          po.UpdatedAt,
		Version:            po.Version,
	}
	if legacy, ok := po.LegacyNumber(); ok {
		resp.LegacyNumber = legacy
	}
	for i := range po.Items {
		resp.Lines[i] = toLineItemResponse(&po.Items[i])
	}
	for i, s := range po.ApprovalStages {
		resp.ApprovalStages[i] = ApprovalStageView{Stage: s.Stage, Role: s.Role.String()}
	}
	for i, a := range po.Approvals {
		resp.Approvals[i] = ApprovalResponse{
			ID:           a.ID,
			Round:        a.Round,
			Stage:        a.Stage,
			StageRole:    a.StageRole.String(),
			ApproverID:   a.ApproverID,
			ApproverRole: a.ApproverRole.String(),
			Decision:     string(a.Decision),
			Comment:      a.Comment,
			DecidedAt:    a.DecidedAt,
		}
	}
	for i := range po.Receipts {
		resp.Receipts[i] = toReceiptResponse(&po.Receipts[i])
	}
	return resp
}

func toLineItemResponse(item *procurement.LineItem) LineItemResponse {
	return LineItemResponse{
		ID:                item.ID,
		LineNumber:        item.LineNumber,
		Description:       item.Description,
		PartNumber:        item.PartNumber,
		Unit:              item.Unit,
		Quantity:          item.Quantity,
		UnitPrice:         item.UnitPrice,
		Amount:            item.Amount,
		ReceivedQuantity:  item.ReceivedQuantity,
		RemainingQuantity: item.RemainingQuantity(),
		CostCode:          item.CostCode,
		Notes:             item.Notes,
	}
}

func toReceiptResponse(r *procurement.Receipt) ReceiptResponse {
	lines := make([]ReceiptLineResponse, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = ReceiptLineResponse{ItemID: l.ItemID, Quantity: l.Quantity}
	}
	return ReceiptResponse{
		ID:          r.ID,
		ReceivedBy:  r.ReceivedBy,
		ReceivedAt:  r.ReceivedAt,
		PackingSlip: r.PackingSlip,
		Note:        r.Note,
		Lines:       lines,
	}
}

// ToPurchaseOrderListItemResponse converts the aggregate to a listing row
func ToPurchaseOrderListItemResponse(po *procurement.PurchaseOrder) PurchaseOrderListItemResponse {
	return PurchaseOrderListItemResponse{
		ID:           po.ID,
		PONumber:     po.PONumber(),
		DivisionID:   po.DivisionID,
		ProjectID:    po.ProjectID,
		WorkOrderID:  po.WorkOrderID,
		VendorID:     po.VendorID,
		RequestedBy:  po.RequestedBy,
		Description:  po.Description,
		LineCount:    len(po.Items),
		Total:        po.Total,
		Status:       po.Status,
		CurrentStage: po.CurrentStage,
		NeededBy:     po.NeededBy,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}
}

// ToPurchaseOrderListItemResponses converts a page of orders
func ToPurchaseOrderListItemResponses(orders []procurement.PurchaseOrder) []PurchaseOrderListItemResponse {
	out := make([]PurchaseOrderListItemResponse, len(orders))
	for i := range orders {
		out[i] = ToPurchaseOrderListItemResponse(&orders[i])
	}
	return out
}

// ==================== Invoice DTOs ====================

// RecordInvoiceRequest enters a vendor invoice
type RecordInvoiceRequest struct {
	Number      string
	Amount      decimal.Decimal
	InvoiceDate time.Time
	DueDate     *time.Time
	Notes       string
	Attachment  *AttachmentUpload
}

// InvoiceResponse is the view of a vendor invoice
type InvoiceResponse struct {
	ID              uuid.UUID                 `json:"id"`
	PurchaseOrderID uuid.UUID                 `json:"purchase_order_id"`
	VendorID        uuid.UUID                 `json:"vendor_id"`
	Number          string                    `json:"number"`
	Amount          decimal.Decimal           `json:"amount"`
	InvoiceDate     time.Time                 `json:"invoice_date"`
	DueDate         *time.Time                `json:"due_date,omitempty"`
	Status          procurement.InvoiceStatus `json:"status"`
	HasAttachment   bool                      `json:"has_attachment"`
	RecordedBy      uuid.UUID                 `json:"recorded_by"`
	Notes           string                    `json:"notes,omitempty"`
	Overdue         bool                      `json:"overdue"`
	PaidAt          *time.Time                `json:"paid_at,omitempty"`
	VoidedAt        *time.Time                `json:"voided_at,omitempty"`
	VoidReason      string                    `json:"void_reason,omitempty"`
	CreatedAt       time.Time                 `json:"created_at"`
}

// AttachmentURLResponse is a time-limited download link
type AttachmentURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToInvoiceResponse converts an invoice to its view
func ToInvoiceResponse(inv *procurement.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:              inv.ID,
		PurchaseOrderID: inv.PurchaseOrderID,
		VendorID:        inv.VendorID,
		Number:          inv.Number,
		Amount:          inv.Amount,
		InvoiceDate:     inv.InvoiceDate,
		DueDate:         inv.DueDate,
		Status:          inv.Status,
		HasAttachment:   inv.AttachmentKey != "",
		RecordedBy:      inv.RecordedBy,
		Notes:           inv.Notes,
		Overdue:         inv.IsOverdue(time.Now()),
		PaidAt:          inv.PaidAt,
		VoidedAt:        inv.VoidedAt,
		VoidReason:      inv.VoidReason,
		CreatedAt:       inv.CreatedAt,
	}
}

// ==================== Archive DTOs ====================

// ArchiveSearchFilter is the query accepted by the archive search
type ArchiveSearchFilter struct {
	Page       int
	PageSize   int
	Search     string
	VendorID   *uuid.UUID
	ClosedFrom *time.Time
	ClosedTo   *time.Time
}

// ArchivedOrderResponse is a closed order read back from the archive
type ArchivedOrderResponse struct {
	ID           uuid.UUID          `json:"id"`
	PONumber     string             `json:"po_number"`
	LegacyNumber string             `json:"legacy_number,omitempty"`
	DivisionID   uuid.UUID          `json:"division_id"`
	ProjectID    uuid.UUID          `json:"project_id"`
	WorkOrderID  uuid.UUID          `json:"work_order_id"`
	VendorID     uuid.UUID          `json:"vendor_id"`
	Description  string             `json:"description"`
	Status       procurement.Status `json:"status"`
	Total        string             `json:"total"`
	ClosedAt     time.Time          `json:"closed_at"`
	ArchivedAt   time.Time          `json:"archived_at"`
}

// ArchivedOrderDetailResponse adds the frozen order document to the summary
type ArchivedOrderDetailResponse struct {
	ArchivedOrderResponse
	Snapshot json.RawMessage `json:"snapshot" swaggertype:"object"`
}

// ToArchivedOrderResponse converts an archive row to its summary view
func ToArchivedOrderResponse(o *procurement.ArchivedOrder) ArchivedOrderResponse {
	return ArchivedOrderResponse{
		ID:           o.ID,
		PONumber:     o.PONumber,
		LegacyNumber: o.LegacyNumber,
		DivisionID:   o.DivisionID,
		ProjectID:    o.ProjectID,
		WorkOrderID:  o.WorkOrderID,
		VendorID:     o.VendorID,
		Description:  o.Description,
		Status:       o.Status,
		Total:        o.Total,
		ClosedAt:     o.ClosedAt,
		ArchivedAt:   o.ArchivedAt,
	}
}

// ToArchivedOrderDetailResponse converts an archive row including its snapshot
func ToArchivedOrderDetailResponse(o *procurement.ArchivedOrder) ArchivedOrderDetailResponse {
	snapshot := json.RawMessage(o.Snapshot)
	if !json.Valid(snapshot) {
		snapshot = json.RawMessage("null")
	}
	return ArchivedOrderDetailResponse{
		ArchivedOrderResponse: ToArchivedOrderResponse(o),
		Snapshot:              snapshot,
	}
}

// ArchiveRunResult summarises one archive pass
type ArchiveRunResult struct {
	Archived int       `json:"archived"`
	Batches  int       `json:"batches"`
	Cutoff   time.Time `json:"cutoff"`
}
