package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "catalog/internal/errors"
	"catalog/internal/middleware"
	"catalog/internal/model"
	"catalog/internal/service"
)

// UserHandler serves the current-user and admin user management endpoints.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// SetRoleRequest changes a user's role.
type SetRoleRequest struct {
	Role string `json:"role" validate:"required" enums:"admin,user"`
}

// SetRoleResponse acknowledges a role change.
type SetRoleResponse struct {
	Msg  string       `json:"msg"`
	User UserResponse `json:"user"`
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /me [get]
func (h *UserHandler) Me(c echo.Context) error {
	actor := middleware.ActorFrom(c)
	if actor == nil {
		return errorResponse(apperrors.ErrTokenMissing)
	}
	return c.JSON(http.StatusOK, toUserResponse(actor))
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		return errorResponse(err)
	}
	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := pathID(c, apperrors.ErrUserNotFound)
	if err != nil {
		return errorResponse(err)
	}
	user, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// SetRole godoc
// @Summary Change a user's role
// @Description Admin only. This is the only way to grant the admin role.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body SetRoleRequest true "New role"
// @Success 200 {object} SetRoleResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id}/role [put]
func (h *UserHandler) SetRole(c echo.Context) error {
	id, err := pathID(c, apperrors.ErrUserNotFound)
	if err != nil {
		return errorResponse(err)
	}

	var req SetRoleRequest
	if err := c.Bind(&req); err != nil {
		return badRequestBody()
	}
	if err := c.Validate(&req); err != nil {
		return errorResponse(err)
	}

	user, err := h.svc.SetRole(c.Request().Context(), id, model.Role(req.Role))
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, SetRoleResponse{Msg: "Role updated", User: toUserResponse(user)})
}
