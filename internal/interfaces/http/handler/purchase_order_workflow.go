package handler

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appprocurement "github.com/roofpo/backend/internal/application/procurement"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/domain/procurement"
)

// bindOptionalJSON binds a body that clients may leave out entirely
func bindOptionalJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Submit godoc
// @ID           submitPurchaseOrder
// @Summary      Submit for approval
// @Description  Moves a draft to SUBMITTED and fixes the approval stages required by its total
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Success      200 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/submit [post]
func (h *PurchaseOrderHandler) Submit(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Submit(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Approve godoc
// @ID           approvePurchaseOrder
// @Summary      Approve the current stage
// @Description  Signs the current approval stage. The requester cannot approve their own order.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        request body ApproveRequest false "Optional comment"
// @Success      200 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/approve [post]
func (h *PurchaseOrderHandler) Approve(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req ApproveRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.ValidationError(c, err)
		return
	}

	order, err := h.orderService.Approve(c.Request.Context(), actor, id, req.Comment)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Reject godoc
// @ID           rejectPurchaseOrder
// @Summary      Reject a submitted order
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        request body ReasonRequest true "Rejection reason"
// @Success      200 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/reject [post]
func (h *PurchaseOrderHandler) Reject(c *gin.Context) {
	h.withReason(c, h.orderService.Reject)
}

// Cancel godoc
// @ID           cancelPurchaseOrder
// @Summary      Cancel an order
// @Description  Allowed until goods are received
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        request body ReasonRequest true "Cancellation reason"
// @Success      200 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/cancel [post]
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	h.withReason(c, h.orderService.Cancel)
}

type reasonAction func(ctx context.Context, actor identity.Actor, orderID uuid.UUID, reason string) (*appprocurement.PurchaseOrderResponse, error)

func (h *PurchaseOrderHandler) withReason(c *gin.Context, action reasonAction) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	order, err := action(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Reopen godoc
// @ID           reopenPurchaseOrder
// @Summary      Reopen a rejected order
// @Description  Returns a rejected order to DRAFT so the requester can revise and resubmit it
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Success      200 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/reopen [post]
func (h *PurchaseOrderHandler) Reopen(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Reopen(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Issue godoc
// @ID           issuePurchaseOrder
// @Summary      Issue to the vendor
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        request body IssueRequest false "Vendor confirmation number"
// @Success      200 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/issue [post]
func (h *PurchaseOrderHandler) Issue(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req IssueRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.ValidationError(c, err)
		return
	}

	order, err := h.orderService.Issue(c.Request.Context(), actor, id, req.Confirmation)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Receive godoc
// @ID           receivePurchaseOrder
// @Summary      Record a delivery
// @Description  Quantities may not exceed what is still outstanding on each line
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        request body ReceivePurchaseOrderRequest true "Delivered quantities"
// @Success      200 {object} APIResponse[appprocurement.ReceiveResultResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/receive [post]
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req ReceivePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	lines := make([]procurement.ReceiveLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = procurement.ReceiveLine{ItemID: uuid.MustParse(l.ItemID), Quantity: l.Quantity}
	}

	result, err := h.orderService.Receive(c.Request.Context(), actor, id, appprocurement.ReceiveRequest{
		Lines:       lines,
		PackingSlip: req.PackingSlip,
		Note:        req.Note,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Pay godoc
// @ID           payPurchaseOrder
// @Summary      Mark a received order paid
// @Description  Requires invoices within tolerance of the received value unless the caller may override the variance
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        request body PayPurchaseOrderRequest true "Payment reference"
// @Success      200 {object} APIResponse[appprocurement.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/pay [post]
func (h *PurchaseOrderHandler) Pay(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req PayPurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	order, err := h.orderService.Pay(c.Request.Context(), actor, id, appprocurement.PayRequest{
		Reference:        req.Reference,
		OverrideVariance: req.OverrideVariance,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
