package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/roofpo/backend/internal/application/identity"
	"github.com/roofpo/backend/internal/domain/identity"
)

type userService interface {
	Create(ctx context.Context, input appidentity.CreateUserInput) (*appidentity.UserDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*appidentity.UserDTO, error)
	List(ctx context.Context, filter appidentity.UserListFilter) ([]appidentity.UserDTO, int64, error)
	Update(ctx context.Context, actor identity.Actor, id uuid.UUID, input appidentity.UpdateUserInput) (*appidentity.UserDTO, error)
	Activate(ctx context.Context, id uuid.UUID) (*appidentity.UserDTO, error)
	Deactivate(ctx context.Context, actor identity.Actor, id uuid.UUID) (*appidentity.UserDTO, error)
	ResetPassword(ctx context.Context, id uuid.UUID, newPassword string) error
}

// UserHandler handles user management HTTP requests
type UserHandler struct {
	BaseHandler
	userService userService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService userService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Create godoc
// @ID           createUser
// @Summary      Create a user
// @Description  Division leaders need a two digit leader ID that is unique among users
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "User"
// @Success      201 {object} APIResponse[appidentity.UserDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	divisionIDs, err := parseUUIDs(req.DivisionIDs, "division_ids")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Create(c.Request.Context(), appidentity.CreateUserInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		Role:        req.Role,
		LeaderID:    req.LeaderID,
		DivisionIDs: divisionIDs,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, user)
}

// GetByID godoc
// @ID           getUserById
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[appidentity.UserDTO]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// List godoc
// @ID           listUsers
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        search query string false "Search in email and display name"
// @Param        role query string false "Role"
// @Param        division_id query string false "Division ID" format(uuid)
// @Param        active query bool false "Active flag"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        sort_by query string false "Sort field" Enums(email, display_name, role, created_at, last_login_at)
// @Param        sort_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]appidentity.UserDTO]
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var query UserListQuery
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
	divisionID, _ := parseOptionalUUID(query.DivisionID, "division_id")

	users, total, err := h.userService.List(c.Request.Context(), appidentity.UserListFilter{
		Page:       query.Page,
		PageSize:   query.PageSize,
		Search:     query.Search,
		Role:       query.Role,
		DivisionID: divisionID,
		Active:     query.Active,
		OrderBy:    query.SortBy,
		OrderDir:   query.SortDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, users, total, query.Page, query.PageSize)
}

// Update godoc
// @ID           updateUser
// @Summary      Update a user
// @Description  Changing the role or divisions ends the user's current sessions
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Param        request body UpdateUserRequest true "Changes"
// @Success      200 {object} APIResponse[appidentity.UserDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	input := appidentity.UpdateUserInput{
		DisplayName: req.DisplayName,
		Role:        req.Role,
		LeaderID:    req.LeaderID,
	}
	if req.DivisionIDs != nil {
		divisionIDs, err := parseUUIDs(*req.DivisionIDs, "division_ids")
		if err != nil {
			h.BadRequest(c, err.Error())
			return
		}
		input.DivisionIDs = &divisionIDs
	}

	user, err := h.userService.Update(c.Request.Context(), actor, id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// Deactivate godoc
// @ID           deactivateUser
// @Summary      Deactivate a user
// @Description  Users cannot deactivate themselves
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[appidentity.UserDTO]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id} [delete]
func (h *UserHandler) Deactivate(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Deactivate(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// Activate godoc
// @ID           activateUser
// @Summary      Reactivate a user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[appidentity.UserDTO]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id}/activate [post]
func (h *UserHandler) Activate(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// ResetPassword godoc
// @ID           resetUserPassword
// @Summary      Reset a user's password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Param        request body ResetPasswordRequest true "New password"
// @Success      200 {object} APIResponse[MessageData]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id}/reset-password [post]
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), id, req.NewPassword); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageData{Message: "Password reset successfully"})
}
