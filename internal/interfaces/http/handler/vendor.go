package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apppartner "github.com/roofpo/backend/internal/application/partner"
	"github.com/roofpo/backend/internal/domain/partner"
	"github.com/roofpo/backend/internal/interfaces/http/dto"
)

type vendorService interface {
	Create(ctx context.Context, req apppartner.CreateVendorRequest) (*apppartner.VendorResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*apppartner.VendorResponse, error)
	List(ctx context.Context, filter apppartner.VendorListFilter) ([]apppartner.VendorResponse, int64, error)
	Update(ctx context.Context, id uuid.UUID, req apppartner.UpdateVendorRequest) (*apppartner.VendorResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*apppartner.VendorResponse, error)
	Activate(ctx context.Context, id uuid.UUID) (*apppartner.VendorResponse, error)
}

// VendorHandler handles vendor API endpoints
type VendorHandler struct {
	BaseHandler
	vendorService vendorService
}

// NewVendorHandler creates a new VendorHandler
func NewVendorHandler(vendorService vendorService) *VendorHandler {
	return &VendorHandler{vendorService: vendorService}
}

// CreateVendorRequest represents a request to register a vendor
// @Description Request body for creating a vendor
type CreateVendorRequest struct {
	Code         string `json:"code" binding:"required,max=50" example:"ABC-SUPPLY"`
	Name         string `json:"name" binding:"required,max=200" example:"ABC Supply Co."`
	ContactName  string `json:"contact_name" binding:"max=100" example:"Dana Ruiz"`
	Email        string `json:"email" binding:"omitempty,email,max=254" example:"orders@abcsupply.example"`
	Phone        string `json:"phone" binding:"max=30" example:"555-0142"`
	Address      string `json:"address" binding:"max=500"`
	PaymentTerms string `json:"payment_terms" binding:"omitempty,oneof=DUE_ON_RECEIPT NET15 NET30 NET45 NET60" example:"NET30"`
	TaxID        string `json:"tax_id" binding:"max=30"`
}

// UpdateVendorRequest represents a request to update a vendor
// @Description Omitted fields are left unchanged
type UpdateVendorRequest struct {
	Name         *string `json:"name" binding:"omitempty,max=200"`
	ContactName  *string `json:"contact_name" binding:"omitempty,max=100"`
	Email        *string `json:"email" binding:"omitempty,email,max=254"`
	Phone        *string `json:"phone" binding:"omitempty,max=30"`
	Address      *string `json:"address" binding:"omitempty,max=500"`
	PaymentTerms *string `json:"payment_terms" binding:"omitempty,oneof=DUE_ON_RECEIPT NET15 NET30 NET45 NET60"`
	TaxID        *string `json:"tax_id" binding:"omitempty,max=30"`
}

// VendorListQuery is the query string of the vendor listing
type VendorListQuery struct {
	dto.ListRequest
	Active *bool `form:"active"`
}

// Create godoc
// @ID           createVendor
// @Summary      Create a vendor
// @Tags         vendors
// @Accept       json
// @Produce      json
// @Param        request body CreateVendorRequest true "Vendor"
// @Success      201 {object} APIResponse[apppartner.VendorResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /vendors [post]
func (h *VendorHandler) Create(c *gin.Context) {
	var req CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	vendor, err := h.vendorService.Create(c.Request.Context(), apppartner.CreateVendorRequest{
		Code:         req.Code,
		Name:         req.Name,
		ContactName:  req.ContactName,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		PaymentTerms: partner.PaymentTerms(req.PaymentTerms),
		TaxID:        req.TaxID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, vendor)
}

// GetByID godoc
// @ID           getVendorById
// @Summary      Get a vendor
// @Tags         vendors
// @Produce      json
// @Param        id path string true "Vendor ID" format(uuid)
// @Success      200 {object} APIResponse[apppartner.VendorResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /vendors/{id} [get]
func (h *VendorHandler) GetByID(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	vendor, err := h.vendorService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, vendor)
}

// List godoc
// @ID           listVendors
// @Summary      List vendors
// @Tags         vendors
// @Produce      json
// @Param        search query string false "Search in code and name"
// @Param        active query bool false "Only active or inactive vendors"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(name)
// @Param        order_dir query string false "Order direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]apppartner.VendorResponse]
// @Security     BearerAuth
// @Router       /vendors [get]
func (h *VendorHandler) List(c *gin.Context) {
	var query VendorListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}
	list := query.WithDefaults()

	vendors, total, err := h.vendorService.List(c.Request.Context(), apppartner.VendorListFilter{
		Page:     list.Page,
		PageSize: list.PageSize,
		OrderBy:  list.OrderBy,
		OrderDir: list.OrderDir,
		Search:   list.Search,
		Active:   query.Active,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, vendors, total, list.Page, list.PageSize)
}

// Update godoc
// @ID           updateVendor
// @Summary      Update a vendor
// @Tags         vendors
// @Accept       json
// @Produce      json
// @Param        id path string true "Vendor ID" format(uuid)
// @Param        request body UpdateVendorRequest true "Changes"
// @Success      200 {object} APIResponse[apppartner.VendorResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /vendors/{id} [put]
func (h *VendorHandler) Update(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req UpdateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	appReq := apppartner.UpdateVendorRequest{
		Name:        req.Name,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		TaxID:       req.TaxID,
	}
	if req.PaymentTerms != nil {
		terms := partner.PaymentTerms(*req.PaymentTerms)
		appReq.PaymentTerms = &terms
	}

	vendor, err := h.vendorService.Update(c.Request.Context(), id, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, vendor)
}

// Deactivate godoc
// @ID           deactivateVendor
// @Summary      Deactivate a vendor
// @Description  Vendors are never hard deleted; inactive vendors cannot receive new orders
// @Tags         vendors
// @Produce      json
// @Param        id path string true "Vendor ID" format(uuid)
// @Success      200 {object} APIResponse[apppartner.VendorResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /vendors/{id} [delete]
func (h *VendorHandler) Deactivate(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	vendor, err := h.vendorService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, vendor)
}

// Activate godoc
// @ID           activateVendor
// @Summary      Reactivate a vendor
// @Tags         vendors
// @Produce      json
// @Param        id path string true "Vendor ID" format(uuid)
// @Success      200 {object} APIResponse[apppartner.VendorResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /vendors/{id}/activate [post]
func (h *VendorHandler) Activate(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	vendor, err := h.vendorService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, vendor)
}
