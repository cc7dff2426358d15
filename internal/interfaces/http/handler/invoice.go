package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appprocurement "github.com/roofpo/backend/internal/application/procurement"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/domain/procurement"
	"github.com/shopspring/decimal"
)

type invoiceService interface {
	Record(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req appprocurement.RecordInvoiceRequest) (*appprocurement.InvoiceResponse, error)
	List(ctx context.Context, actor identity.Actor, orderID uuid.UUID) ([]appprocurement.InvoiceResponse, error)
	Void(ctx context.Context, actor identity.Actor, invoiceID uuid.UUID, reason string) (*appprocurement.InvoiceResponse, error)
	Reconciliation(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*procurement.Reconciliation, error)
	AttachmentURL(ctx context.Context, actor identity.Actor, invoiceID uuid.UUID) (*appprocurement.AttachmentURLResponse, error)
}

// InvoiceHandler handles vendor invoices and reconciliation
type InvoiceHandler struct {
	BaseHandler
	invoiceService invoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService invoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// RecordInvoiceRequest is accepted as JSON or, with a document attached, as
// multipart/form-data with the file in the "attachment" part
// @Description Vendor invoice
type RecordInvoiceRequest struct {
	Number      string `json:"number" form:"number" binding:"required,max=100" example:"INV-20931"`
	Amount      string `json:"amount" form:"amount" binding:"required" example:"1358.25"`
	InvoiceDate string `json:"invoice_date" form:"invoice_date" binding:"required" example:"2026-03-04"`
	DueDate     string `json:"due_date" form:"due_date" example:"2026-04-03"`
	Notes       string `json:"notes" form:"notes" binding:"max=1000"`
}

// VoidInvoiceRequest carries the reason an invoice is voided
type VoidInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,max=1000" example:"Duplicate of INV-20930"`
}

func (r RecordInvoiceRequest) toRequest() (appprocurement.RecordInvoiceRequest, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return appprocurement.RecordInvoiceRequest{}, errors.New("invalid amount")
	}
	invoiceDate, err := parseOptionalTime(r.InvoiceDate, "invoice_date")
	if err != nil {
		return appprocurement.RecordInvoiceRequest{}, err
	}
	dueDate, err := parseOptionalTime(r.DueDate, "due_date")
	if err != nil {
		return appprocurement.RecordInvoiceRequest{}, err
	}
	return appprocurement.RecordInvoiceRequest{
		Number:      r.Number,
		Amount:      amount,
		InvoiceDate: *invoiceDate,
		DueDate:     dueDate,
		Notes:       r.Notes,
	}, nil
}

// Record godoc
// @ID           recordInvoice
// @Summary      Record a vendor invoice
// @Description  Accepts JSON, or multipart/form-data with an optional PDF or image in the "attachment" field
// @Tags         invoices
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        request body RecordInvoiceRequest true "Invoice"
// @Success      201 {object} APIResponse[appprocurement.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/invoices [post]
func (h *InvoiceHandler) Record(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	orderID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req RecordInvoiceRequest
	if err := c.ShouldBind(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	appReq, err := req.toRequest()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("attachment")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			h.BadRequest(c, "Invalid attachment")
			return
		default:
			file, err := fh.Open()
			if err != nil {
				h.BadRequest(c, "Invalid attachment")
				return
			}
			defer file.Close()
			appReq.Attachment = &appprocurement.AttachmentUpload{
				FileName:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
				Body:        file,
			}
		}
	}

	invoice, err := h.invoiceService.Record(c.Request.Context(), actor, orderID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, invoice)
}

// List godoc
// @ID           listInvoices
// @Summary      Invoices of a purchase order
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Success      200 {object} APIResponse[[]appprocurement.InvoiceResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	orderID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	invoices, err := h.invoiceService.List(c.Request.Context(), actor, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if invoices == nil {
		invoices = []appprocurement.InvoiceResponse{}
	}

	h.Success(c, invoices)
}

// Reconciliation godoc
// @ID           getReconciliation
// @Summary      Three-way match of a purchase order
// @Description  Compares the invoiced total with the ordered and received value
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Success      200 {object} APIResponse[procurement.Reconciliation]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/reconciliation [get]
func (h *InvoiceHandler) Reconciliation(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	orderID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	rec, err := h.invoiceService.Reconciliation(c.Request.Context(), actor, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rec)
}

// Void godoc
// @ID           voidInvoice
// @Summary      Void an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body VoidInvoiceRequest true "Reason"
// @Success      200 {object} APIResponse[appprocurement.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/void [post]
func (h *InvoiceHandler) Void(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req VoidInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	invoice, err := h.invoiceService.Void(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Attachment godoc
// @ID           getInvoiceAttachment
// @Summary      Download link for an invoice document
// @Description  Returns a presigned URL that expires shortly
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[appprocurement.AttachmentURLResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/attachment [get]
func (h *InvoiceHandler) Attachment(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	link, err := h.invoiceService.AttachmentURL(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, link)
}
