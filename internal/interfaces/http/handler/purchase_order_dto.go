package handler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	appprocurement "github.com/roofpo/backend/internal/application/procurement"
	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/roofpo/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// CreatePurchaseOrderRequest represents a request to open a purchase order
// @Description Request body for creating a draft purchase order against a work order
type CreatePurchaseOrderRequest struct {
	WorkOrderID     string           `json:"work_order_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	VendorID        string           `json:"vendor_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440001"`
	Description     string           `json:"description" binding:"required,max=500" example:"Shingles and underlayment for tear-off"`
	DeliveryAddress string           `json:"delivery_address" binding:"max=500" example:"1200 Oak St, Springfield"`
	NeededBy        *time.Time       `json:"needed_by" example:"2026-04-01T00:00:00Z"`
	TaxAmount       *decimal.Decimal `json:"tax_amount" binding:"omitempty,gte=0" swaggertype:"string" example:"82.50"`
	Lines           []LineItemInput  `json:"lines" binding:"omitempty,max=200,dive"`
}

// LineItemInput is one line of a purchase order
// @Description Purchase order line
type LineItemInput struct {
	Description string          `json:"description" binding:"required,max=500" example:"Architectural shingles, charcoal"`
	PartNumber  string          `json:"part_number" binding:"max=100" example:"GAF-TIM-HDZ-CH"`
	Unit        string          `json:"unit" binding:"required,max=20" example:"bundle"`
	Quantity    decimal.Decimal `json:"quantity" binding:"gt=0" swaggertype:"string" example:"33"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"gte=0" swaggertype:"string" example:"38.75"`
	CostCode    string          `json:"cost_code" binding:"max=50" example:"07-3113"`
	Notes       string          `json:"notes" binding:"max=1000"`
}

func (l LineItemInput) toRequest() appprocurement.LineItemRequest {
	return appprocurement.LineItemRequest{
		Description: l.Description,
		PartNumber:  l.PartNumber,
		Unit:        l.Unit,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		CostCode:    l.CostCode,
		Notes:       l.Notes,
	}
}

// UpdatePurchaseOrderRequest represents a request to update a draft
// @Description Header changes for a draft or rejected order. Omitted fields are left alone.
type UpdatePurchaseOrderRequest struct {
	Version         int              `json:"version" binding:"gte=0" example:"3"`
	VendorID        *string          `json:"vendor_id" binding:"omitempty,uuid"`
	Description     *string          `json:"description" binding:"omitempty,max=500"`
	DeliveryAddress *string          `json:"delivery_address" binding:"omitempty,max=500"`
	NeededBy        *time.Time       `json:"needed_by"`
	TaxAmount       *decimal.Decimal `json:"tax_amount" binding:"omitempty,gte=0" swaggertype:"string"`
}

// ApproveRequest is the body of an approval
type ApproveRequest struct {
	Comment string `json:"comment" binding:"max=1000" example:"Within budget"`
}

// ReasonRequest is the body of reject and cancel
type ReasonRequest struct {
	Reason string `json:"reason" binding:"required,max=1000" example:"Vendor cannot meet the delivery date"`
}

// IssueRequest is the body of issuing an order to the vendor
type IssueRequest struct {
	Confirmation string `json:"confirmation" binding:"omitempty,len=4" example:"bn23"`
}

// ReceiveLineInput is the quantity delivered for one line
type ReceiveLineInput struct {
	ItemID   string          `json:"item_id" binding:"required,uuid"`
	Quantity decimal.Decimal `json:"quantity" binding:"gt=0" swaggertype:"string" example:"10"`
}

// ReceivePurchaseOrderRequest records a delivery
// @Description Delivered quantities, per line
type ReceivePurchaseOrderRequest struct {
	Lines       []ReceiveLineInput `json:"lines" binding:"required,min=1,max=200,dive"`
	PackingSlip string             `json:"packing_slip" binding:"max=100" example:"PS-55102"`
	Note        string             `json:"note" binding:"max=1000"`
}

// PayPurchaseOrderRequest closes a received order
type PayPurchaseOrderRequest struct {
	Reference        string `json:"reference" binding:"required,max=100" example:"CHK-10442"`
	OverrideVariance bool   `json:"override_variance"`
}

// PurchaseOrderListQuery is the query string of the listing and the CSV export
type PurchaseOrderListQuery struct {
	dto.ListRequest
	Status      string `form:"status" example:"SUBMITTED,APPROVED"`
	DivisionID  string `form:"division_id"`
	ProjectID   string `form:"project_id"`
	WorkOrderID string `form:"work_order_id"`
	VendorID    string `form:"vendor_id"`
	RequestedBy string `form:"requested_by"`
	CreatedFrom string `form:"created_from" example:"2026-01-01"`
	CreatedTo   string `form:"created_to" example:"2026-03-31"`
}

// toFilter validates the query values that binding tags cannot express
func (q PurchaseOrderListQuery) toFilter() (appprocurement.PurchaseOrderListFilter, error) {
	list := q.WithDefaults()
	filter := appprocurement.PurchaseOrderListFilter{
		Page:     list.Page,
		PageSize: list.PageSize,
		OrderBy:  list.OrderBy,
		OrderDir: list.OrderDir,
		Search:   list.Search,
	}

	for _, raw := range splitCSV(q.Status) {
		status := procurement.Status(strings.ToUpper(raw))
		if !status.IsValid() {
			return filter, fmt.Errorf("unknown status %q", raw)
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	ids := []struct {
		raw   string
		field string
		dst   **uuid.UUID
	}{
		{q.DivisionID, "division_id", &filter.DivisionID},
		{q.ProjectID, "project_id", &filter.ProjectID},
		{q.WorkOrderID, "work_order_id", &filter.WorkOrderID},
		{q.VendorID, "vendor_id", &filter.VendorID},
		{q.RequestedBy, "requested_by", &filter.RequestedBy},
	}
	for _, id := range ids {
		parsed, err := parseOptionalUUID(id.raw, id.field)
		if err != nil {
			return filter, err
		}
		*id.dst = parsed
	}

	from, err := parseOptionalTime(q.CreatedFrom, "created_from")
	if err != nil {
		return filter, err
	}
	to, err := parseOptionalTime(q.CreatedTo, "created_to")
	if err != nil {
		return filter, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return filter, errors.New("created_to is before created_from")
	}
	filter.CreatedFrom, filter.CreatedTo = from, endOfDay(to)
	return filter, nil
}
