package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appprocurement "github.com/roofpo/backend/internal/application/procurement"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/domain/procurement"
)

type purchaseOrderService interface {
	Create(ctx context.Context, actor identity.Actor, req appprocurement.CreatePurchaseOrderRequest) (*appprocurement.PurchaseOrderResponse, error)
	Get(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*appprocurement.PurchaseOrderResponse, error)
	GetByNumber(ctx context.Context, actor identity.Actor, number string) (*appprocurement.PurchaseOrderResponse, error)
	List(ctx context.Context, actor identity.Actor, filter appprocurement.PurchaseOrderListFilter) ([]appprocurement.PurchaseOrderListItemResponse, int64, error)
	Update(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req appprocurement.UpdatePurchaseOrderRequest) (*appprocurement.PurchaseOrderResponse, error)
	AddLine(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req appprocurement.LineItemRequest) (*appprocurement.PurchaseOrderResponse, error)
	UpdateLine(ctx context.Context, actor identity.Actor, orderID, lineID uuid.UUID, req appprocurement.LineItemRequest) (*appprocurement.PurchaseOrderResponse, error)
	RemoveLine(ctx context.Context, actor identity.Actor, orderID, lineID uuid.UUID) (*appprocurement.PurchaseOrderResponse, error)
	Submit(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*appprocurement.PurchaseOrderResponse, error)
	Approve(ctx context.Context, actor identity.Actor, orderID uuid.UUID, comment string) (*appprocurement.PurchaseOrderResponse, error)
	Reject(ctx context.Context, actor identity.Actor, orderID uuid.UUID, reason string) (*appprocurement.PurchaseOrderResponse, error)
	Reopen(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*appprocurement.PurchaseOrderResponse, error)
	Issue(ctx context.Context, actor identity.Actor, orderID uuid.UUID, confirmation string) (*appprocurement.PurchaseOrderResponse, error)
	Receive(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req appprocurement.ReceiveRequest) (*appprocurement.ReceiveResultResponse, error)
	Pay(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req appprocurement.PayRequest) (*appprocurement.PurchaseOrderResponse, error)
	Cancel(ctx context.Context, actor identity.Actor, orderID uuid.UUID, reason string) (*appprocurement.PurchaseOrderResponse, error)
	Delete(ctx context.Context, actor identity.Actor, orderID uuid.UUID) error
	History(ctx context.Context, actor identity.Actor, orderID uuid.UUID) ([]procurement.HistoryEntry, error)
	PendingApprovals(ctx context.Context, actor identity.Actor) ([]appprocurement.PurchaseOrderListItemResponse, error)
}

// PurchaseOrderHandler handles purchase order API endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orderService purchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService purchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		orderService: orderService,
	}
}

// Create godoc
// @ID           createPurchaseOrder
// @Summary      Create a purchase order
// @Description  Open a draft against a work order. The PO number is assigned from the requester's leader ID, the division and the work order.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Retry key; a repeated key within the TTL is rejected"
// @Param        request body CreatePurchaseOrderRequest true "Purchase order"
// @Success      201 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	appReq := appprocurement.CreatePurchaseOrderRequest{
		WorkOrderID:     uuid.MustParse(req.WorkOrderID),
		VendorID:        uuid.MustParse(req.VendorID),
		Description:     req.Description,
		DeliveryAddress: req.DeliveryAddress,
		NeededBy:        req.NeededBy,
		TaxAmount:       req.TaxAmount,
	}
	for _, line := range req.Lines {
		appReq.Lines = append(appReq.Lines, line.toRequest())
	}

	order, err := h.orderService.Create(c.Request.Context(), actor, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID godoc
// @ID           getPurchaseOrderById
// @Summary      Get purchase order by ID
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Success      200 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// GetByNumber godoc
// @ID           getPurchaseOrderByNumber
// @Summary      Get purchase order by PO number
// @Description  Accepts both the current and the legacy number format
// @Tags         purchase-orders
// @Produce      json
// @Param        number path string true "PO number" example:"07CP0142-3"
// @Success      200 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/by-number/{number} [get]
func (h *PurchaseOrderHandler) GetByNumber(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetByNumber(c.Request.Context(), actor, c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// List godoc
// @ID           listPurchaseOrders
// @Summary      List purchase orders
// @Description  Paginated listing limited to the caller's divisions
// @Tags         purchase-orders
// @Produce      json
// @Param        search query string false "Search in PO number and description"
// @Param        status query string false "Comma separated statuses" example(SUBMITTED,APPROVED)
// @Param        division_id query string false "Division ID" format(uuid)
// @Param        project_id query string false "Project ID" format(uuid)
// @Param        work_order_id query string false "Work order ID" format(uuid)
// @Param        vendor_id query string false "Vendor ID" format(uuid)
// @Param        requested_by query string false "Requester user ID" format(uuid)
// @Param        created_from query string false "Created on or after" format(date)
// @Param        created_to query string false "Created on or before" format(date)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]appprocurement.PurchaseOrderListItemResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var query PurchaseOrderListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}
	filter, err := query.toFilter()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	orders, total, err := h.orderService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// PendingApproval godoc
// @ID           listPurchaseOrdersPendingApproval
// @Summary      Orders waiting for my approval
// @Description  Submitted orders whose current approval stage the caller can sign
// @Tags         purchase-orders
// @Produce      json
// @Success      200 {object} APIResponse[[]appprocurement.PurchaseOrderListItemResponse]
// @Security     BearerAuth
// @Router       /purchase-orders/pending-approval [get]
func (h *PurchaseOrderHandler) PendingApproval(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	orders, err := h.orderService.PendingApprovals(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, orders)
}

// Update godoc
// @ID           updatePurchaseOrder
// @Summary      Update a purchase order
// @Description  Change header fields of a draft or rejected order. A stale version is rejected with 409.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        request body UpdatePurchaseOrderRequest true "Changes"
// @Success      200 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id} [put]
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req UpdatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	appReq := appprocurement.UpdatePurchaseOrderRequest{
		Version:         req.Version,
		Description:     req.Description,
		DeliveryAddress: req.DeliveryAddress,
		NeededBy:        req.NeededBy,
		TaxAmount:       req.TaxAmount,
	}
	if req.VendorID != nil {
		vendorID := uuid.MustParse(*req.VendorID)
		appReq.VendorID = &vendorID
	}

	order, err := h.orderService.Update(c.Request.Context(), actor, id, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Delete godoc
// @ID           deletePurchaseOrder
// @Summary      Delete a purchase order
// @Description  Only drafts that were never submitted can be deleted
// @Tags         purchase-orders
// @Param        id path string true "Purchase order ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id} [delete]
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// AddLine godoc
// @ID           addPurchaseOrderLine
// @Summary      Add a line
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        request body LineItemInput true "Line"
// @Success      201 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/lines [post]
func (h *PurchaseOrderHandler) AddLine(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req LineItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	order, err := h.orderService.AddLine(c.Request.Context(), actor, id, req.toRequest())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// UpdateLine godoc
// @ID           updatePurchaseOrderLine
// @Summary      Replace a line
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        lineId path string true "Line ID" format(uuid)
// @Param        request body LineItemInput true "Line"
// @Success      200 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/lines/{lineId} [put]
func (h *PurchaseOrderHandler) UpdateLine(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.uuidParam(c, "lineId")
	if !ok {
		return
	}

	var req LineItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	order, err := h.orderService.UpdateLine(c.Request.Context(), actor, id, lineID, req.toRequest())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// RemoveLine godoc
// @ID           removePurchaseOrderLine
// @Summary      Remove a line
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        lineId path string true "Line ID" format(uuid)
// @Success      200 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/lines/{lineId} [delete]
func (h *PurchaseOrderHandler) RemoveLine(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.uuidParam(c, "lineId")
	if !ok {
		return
	}

	order, err := h.orderService.RemoveLine(c.Request.Context(), actor, id, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// History godoc
// @ID           getPurchaseOrderHistory
// @Summary      Audit trail of a purchase order
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Success      200 {object} APIResponse[[]procurement.HistoryEntry]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/history [get]
func (h *PurchaseOrderHandler) History(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.orderService.History(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if entries == nil {
		entries = []procurement.HistoryEntry{}
	}

	h.Success(c, entries)
}
