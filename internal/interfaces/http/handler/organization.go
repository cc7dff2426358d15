package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apporg "github.com/roofpo/backend/internal/application/organization"
	"github.com/roofpo/backend/internal/domain/identity"
	"github.com/roofpo/backend/internal/domain/organization"
	"github.com/roofpo/backend/internal/domain/shared"
	"github.com/roofpo/backend/internal/interfaces/http/dto"
)

type divisionService interface {
	Create(ctx context.Context, req apporg.CreateDivisionRequest) (*apporg.DivisionResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*apporg.DivisionResponse, error)
	List(ctx context.Context, filter shared.Filter) ([]apporg.DivisionResponse, int64, error)
	Update(ctx context.Context, id uuid.UUID, req apporg.UpdateDivisionRequest) (*apporg.DivisionResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*apporg.DivisionResponse, error)
	Activate(ctx context.Context, id uuid.UUID) (*apporg.DivisionResponse, error)
}

type projectService interface {
	Create(ctx context.Context, actor identity.Actor, req apporg.CreateProjectRequest) (*apporg.ProjectResponse, error)
	GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*apporg.ProjectResponse, error)
	List(ctx context.Context, actor identity.Actor, filter apporg.ProjectListFilter) ([]apporg.ProjectResponse, int64, error)
	Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req apporg.UpdateProjectRequest) (*apporg.ProjectResponse, error)
	Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error
}

type workOrderService interface {
	Create(ctx context.Context, actor identity.Actor, req apporg.CreateWorkOrderRequest) (*apporg.WorkOrderResponse, error)
	GetByID(ctx context.Context, actor identity.Actor, id uuid.UUID) (*apporg.WorkOrderResponse, error)
	List(ctx context.Context, actor identity.Actor, filter apporg.WorkOrderListFilter) ([]apporg.WorkOrderResponse, int64, error)
	UpdateDescription(ctx context.Context, actor identity.Actor, id uuid.UUID, description string) (*apporg.WorkOrderResponse, error)
	Close(ctx context.Context, actor identity.Actor, id uuid.UUID) (*apporg.WorkOrderResponse, error)
	Reopen(ctx context.Context, actor identity.Actor, id uuid.UUID) (*apporg.WorkOrderResponse, error)
	Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error
}

// ==================== Divisions ====================

// DivisionHandler handles division API endpoints
type DivisionHandler struct {
	BaseHandler
	divisionService divisionService
}

// NewDivisionHandler creates a new DivisionHandler
func NewDivisionHandler(divisionService divisionService) *DivisionHandler {
	return &DivisionHandler{divisionService: divisionService}
}

// CreateDivisionRequest opens a business unit
type CreateDivisionRequest struct {
	Code        string `json:"code" binding:"required,min=2,max=3,alphanum" example:"CP"`
	Name        string `json:"name" binding:"required,max=100" example:"Commercial Projects"`
	Description string `json:"description" binding:"max=500"`
}

// UpdateDivisionRequest changes the descriptive fields of a division
type UpdateDivisionRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// Create godoc
// @ID           createDivision
// @Summary      Create a division
// @Tags         divisions
// @Accept       json
// @Produce      json
// @Param        request body CreateDivisionRequest true "Division"
// @Success      201 {object} APIResponse[apporg.DivisionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /divisions [post]
func (h *DivisionHandler) Create(c *gin.Context) {
	var req CreateDivisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	division, err := h.divisionService.Create(c.Request.Context(), apporg.CreateDivisionRequest{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, division)
}

// GetByID godoc
// @ID           getDivisionById
// @Summary      Get a division
// @Tags         divisions
// @Produce      json
// @Param        id path string true "Division ID" format(uuid)
// @Success      200 {object} APIResponse[apporg.DivisionResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /divisions/{id} [get]
func (h *DivisionHandler) GetByID(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	division, err := h.divisionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, division)
}

// List godoc
// @ID           listDivisions
// @Summary      List divisions
// @Tags         divisions
// @Produce      json
// @Param        search query string false "Search in code and name"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]apporg.DivisionResponse]
// @Security     BearerAuth
// @Router       /divisions [get]
func (h *DivisionHandler) List(c *gin.Context) {
	var query dto.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}
	query = query.WithDefaults()

	divisions, total, err := h.divisionService.List(c.Request.Context(), shared.Filter{
		Page:     query.Page,
		PageSize: query.PageSize,
		OrderBy:  query.OrderBy,
		OrderDir: query.OrderDir,
		Search:   query.Search,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, divisions, total, query.Page, query.PageSize)
}

// Update godoc
// @ID           updateDivision
// @Summary      Update a division
// @Description  The code is immutable because it is embedded in PO numbers
// @Tags         divisions
// @Accept       json
// @Produce      json
// @Param        id path string true "Division ID" format(uuid)
// @Param        request body UpdateDivisionRequest true "Changes"
// @Success      200 {object} APIResponse[apporg.DivisionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /divisions/{id} [put]
func (h *DivisionHandler) Update(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req UpdateDivisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	division, err := h.divisionService.Update(c.Request.Context(), id, apporg.UpdateDivisionRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, division)
}

// Deactivate godoc
// @ID           deactivateDivision
// @Summary      Deactivate a division
// @Tags         divisions
// @Produce      json
// @Param        id path string true "Division ID" format(uuid)
// @Success      200 {object} APIResponse[apporg.DivisionResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /divisions/{id} [delete]
func (h *DivisionHandler) Deactivate(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	division, err := h.divisionService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, division)
}

// Activate godoc
// @ID           activateDivision
// @Summary      Reactivate a division
// @Tags         divisions
// @Produce      json
// @Param        id path string true "Division ID" format(uuid)
// @Success      200 {object} APIResponse[apporg.DivisionResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /divisions/{id}/activate [post]
func (h *DivisionHandler) Activate(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	division, err := h.divisionService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, division)
}

// ==================== Projects ====================

// ProjectHandler handles project API endpoints
type ProjectHandler struct {
	BaseHandler
	projectService projectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projectService projectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// CreateProjectRequest opens a customer job
type CreateProjectRequest struct {
	DivisionID   string `json:"division_id" binding:"required,uuid"`
	Code         string `json:"code" binding:"required,max=50" example:"P-2026-014"`
	Name         string `json:"name" binding:"required,max=200" example:"Lakeside Mall re-roof"`
	CustomerName string `json:"customer_name" binding:"max=200"`
	SiteAddress  string `json:"site_address" binding:"max=500"`
}

// UpdateProjectRequest changes a project
type UpdateProjectRequest struct {
	Name         *string `json:"name" binding:"omitempty,max=200"`
	CustomerName *string `json:"customer_name" binding:"omitempty,max=200"`
	SiteAddress  *string `json:"site_address" binding:"omitempty,max=500"`
	Status       *string `json:"status" binding:"omitempty,oneof=ACTIVE ON_HOLD COMPLETED"`
}

// ProjectListQuery is the query string of the project listing
type ProjectListQuery struct {
	dto.ListRequest
	DivisionID string `form:"division_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=ACTIVE ON_HOLD COMPLETED"`
}

// Create godoc
// @ID           createProject
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        request body CreateProjectRequest true "Project"
// @Success      201 {object} APIResponse[apporg.ProjectResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), actor, apporg.CreateProjectRequest{
		DivisionID:   uuid.MustParse(req.DivisionID),
		Code:         req.Code,
		Name:         req.Name,
		CustomerName: req.CustomerName,
		SiteAddress:  req.SiteAddress,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, project)
}

// GetByID godoc
// @ID           getProjectById
// @Summary      Get a project
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Success      200 {object} APIResponse[apporg.ProjectResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id} [get]
func (h *ProjectHandler) GetByID(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, project)
}

// List godoc
// @ID           listProjects
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Param        search query string false "Search in code, name and customer"
// @Param        division_id query string false "Division ID" format(uuid)
// @Param        status query string false "Project status" Enums(ACTIVE, ON_HOLD, COMPLETED)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]apporg.ProjectResponse]
// @Security     BearerAuth
// @Router       /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var query ProjectListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}
	list := query.WithDefaults()
	divisionID, _ := parseOptionalUUID(query.DivisionID, "division_id")

	projects, total, err := h.projectService.List(c.Request.Context(), actor, apporg.ProjectListFilter{
		Page:       list.Page,
		PageSize:   list.PageSize,
		Search:     list.Search,
		DivisionID: divisionID,
		Status:     organization.ProjectStatus(query.Status),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, projects, total, list.Page, list.PageSize)
}

// Update godoc
// @ID           updateProject
// @Summary      Update a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body UpdateProjectRequest true "Changes"
// @Success      200 {object} APIResponse[apporg.ProjectResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	appReq := apporg.UpdateProjectRequest{
		Name:         req.Name,
		CustomerName: req.CustomerName,
		SiteAddress:  req.SiteAddress,
	}
	if req.Status != nil {
		status := organization.ProjectStatus(*req.Status)
		appReq.Status = &status
	}

	project, err := h.projectService.Update(c.Request.Context(), actor, id, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, project)
}

// Delete godoc
// @ID           deleteProject
// @Summary      Delete a project
// @Description  Only projects without work orders can be deleted
// @Tags         projects
// @Param        id path string true "Project ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ==================== Work orders ====================

// WorkOrderHandler handles work order API endpoints
type WorkOrderHandler struct {
	BaseHandler
	workOrderService workOrderService
}

// NewWorkOrderHandler creates a new WorkOrderHandler
func NewWorkOrderHandler(workOrderService workOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{workOrderService: workOrderService}
}

// CreateWorkOrderRequest opens a work order. Without a number the next free
// one in the division is used.
type CreateWorkOrderRequest struct {
	ProjectID   string `json:"project_id" binding:"required,uuid"`
	Number      *int   `json:"number" binding:"omitempty,gte=0,lte=9999" example:"142"`
	Description string `json:"description" binding:"max=500" example:"Tear-off and replace, building B"`
}

// UpdateWorkOrderRequest changes a work order's description
type UpdateWorkOrderRequest struct {
	Description string `json:"description" binding:"max=500"`
}

// WorkOrderListQuery is the query string of the work order listing
type WorkOrderListQuery struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	ProjectID string `form:"project_id" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,oneof=OPEN CLOSED"`
}

// Create godoc
// @ID           createWorkOrder
// @Summary      Create a work order
// @Tags         work-orders
// @Accept       json
// @Produce      json
// @Param        request body CreateWorkOrderRequest true "Work order"
// @Success      201 {object} APIResponse[apporg.WorkOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /work-orders [post]
func (h *WorkOrderHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	workOrder, err := h.workOrderService.Create(c.Request.Context(), actor, apporg.CreateWorkOrderRequest{
		ProjectID:   uuid.MustParse(req.ProjectID),
		Number:      req.Number,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, workOrder)
}

// GetByID godoc
// @ID           getWorkOrderById
// @Summary      Get a work order
// @Tags         work-orders
// @Produce      json
// @Param        id path string true "Work order ID" format(uuid)
// @Success      200 {object} APIResponse[apporg.WorkOrderResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /work-orders/{id} [get]
func (h *WorkOrderHandler) GetByID(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	workOrder, err := h.workOrderService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, workOrder)
}

// List godoc
// @ID           listWorkOrders
// @Summary      List work orders
// @Tags         work-orders
// @Produce      json
// @Param        project_id query string false "Project ID" format(uuid)
// @Param        status query string false "Work order status" Enums(OPEN, CLOSED)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]apporg.WorkOrderResponse]
// @Security     BearerAuth
// @Router       /work-orders [get]
func (h *WorkOrderHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var query WorkOrderListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}
	if query.Page == 0 {
		query.Page = 1
	}
	if query.PageSize == 0 {
		query.PageSize = 20
	}
	projectID, _ := parseOptionalUUID(query.ProjectID, "project_id")

	workOrders, total, err := h.workOrderService.List(c.Request.Context(), actor, apporg.WorkOrderListFilter{
		Page:      query.Page,
		PageSize:  query.PageSize,
		ProjectID: projectID,
		Status:    organization.WorkOrderStatus(query.Status),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, workOrders, total, query.Page, query.PageSize)
}

// Update godoc
// @ID           updateWorkOrder
// @Summary      Update a work order description
// @Tags         work-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Work order ID" format(uuid)
// @Param        request body UpdateWorkOrderRequest true "Changes"
// @Success      200 {object} APIResponse[apporg.WorkOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /work-orders/{id} [put]
func (h *WorkOrderHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req UpdateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	workOrder, err := h.workOrderService.UpdateDescription(c.Request.Context(), actor, id, req.Description)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, workOrder)
}

// Close godoc
// @ID           closeWorkOrder
// @Summary      Close a work order
// @Description  Closed work orders accept no new purchase orders
// @Tags         work-orders
// @Produce      json
// @Param        id path string true "Work order ID" format(uuid)
// @Success      200 {object} APIResponse[apporg.WorkOrderResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /work-orders/{id}/close [post]
func (h *WorkOrderHandler) Close(c *gin.Context) {
	h.transition(c, h.workOrderService.Close)
}

// Reopen godoc
// @ID           reopenWorkOrder
// @Summary      Reopen a closed work order
// @Tags         work-orders
// @Produce      json
// @Param        id path string true "Work order ID" format(uuid)
// @Success      200 {object} APIResponse[apporg.WorkOrderResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /work-orders/{id}/reopen [post]
func (h *WorkOrderHandler) Reopen(c *gin.Context) {
	h.transition(c, h.workOrderService.Reopen)
}

func (h *WorkOrderHandler) transition(c *gin.Context, fn func(context.Context, identity.Actor, uuid.UUID) (*apporg.WorkOrderResponse, error)) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	workOrder, err := fn(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, workOrder)
}

// Delete godoc
// @ID           deleteWorkOrder
// @Summary      Delete a work order
// @Description  Only work orders that never had a purchase order can be deleted
// @Tags         work-orders
// @Param        id path string true "Work order ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /work-orders/{id} [delete]
func (h *WorkOrderHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.workOrderService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
