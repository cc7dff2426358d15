package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appprocurement "github.com/roofpo/backend/internal/application/procurement"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/domain/procurement"
)

type archiveService interface {
	Get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*procurement.ArchivedOrder, error)
	Search(ctx context.Context, actor identity.Actor, filter appprocurement.ArchiveSearchFilter) ([]appprocurement.ArchivedOrderResponse, int64, error)
}

// ArchiveHandler serves closed purchase orders moved out of the live tables
type ArchiveHandler struct {
	BaseHandler
	archiveService archiveService
}

// NewArchiveHandler creates a new ArchiveHandler
func NewArchiveHandler(archiveService archiveService) *ArchiveHandler {
	return &ArchiveHandler{archiveService: archiveService}
}

// ArchiveSearchQuery is the query string of the archive search
type ArchiveSearchQuery struct {
	Search     string `form:"search"`
	VendorID   string `form:"vendor_id" binding:"omitempty,uuid"`
	ClosedFrom string `form:"closed_from" example:"2024-01-01"`
	ClosedTo   string `form:"closed_to" example:"2024-12-31"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Search godoc
// @ID           searchArchivedOrders
// @Summary      Search archived purchase orders
// @Description  Matches the PO number, legacy number and description
// @Tags         archive
// @Produce      json
// @Param        search query string false "Search text"
// @Param        vendor_id query string false "Vendor ID" format(uuid)
// @Param        closed_from query string false "Closed on or after (YYYY-MM-DD)"
// @Param        closed_to query string false "Closed on or before (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]appprocurement.ArchivedOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /archive/purchase-orders [get]
func (h *ArchiveHandler) Search(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var query ArchiveSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}

	filter := appprocurement.ArchiveSearchFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		Search:   query.Search,
	}
	var err error
	if filter.VendorID, err = parseOptionalUUID(query.VendorID, "vendor_id"); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.ClosedFrom, err = parseOptionalTime(query.ClosedFrom, "closed_from"); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	closedTo, err := parseOptionalTime(query.ClosedTo, "closed_to")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter.ClosedTo = endOfDay(closedTo)

	orders, total, err := h.archiveService.Search(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @ID           getArchivedOrder
// @Summary      Get an archived purchase order
// @Description  Returns the summary and the full order document frozen at archive time
// @Tags         archive
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Success      200 {object} APIResponse[appprocurement.ArchivedOrderDetailResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /archive/purchase-orders/{id} [get]
func (h *ArchiveHandler) GetByID(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	order, err := h.archiveService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, appprocurement.ToArchivedOrderDetailResponse(order))
}
