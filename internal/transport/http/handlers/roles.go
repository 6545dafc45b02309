package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fieldpoint/fieldservice/internal/repository"
	"github.com/fieldpoint/fieldservice/internal/transport/http/middleware"
	"github.com/fieldpoint/fieldservice/internal/usecase"
)

type RoleHandler struct {
	roles *usecase.RoleService
}

func NewRoleHandler(roles *usecase.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

// CreateRole godoc
// @Summary Create a new role
// @Description Creates a role with a per-module permission map inside the caller's tenant.
// @Tags Roles
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer identity token"
// @Param request body RoleCreateRequest true "Role create request"
// @Success 201 {object} RolePayload
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/roles [post]
func (h *RoleHandler) CreateRole(c *gin.Context) {
	auth, ok := middleware.GetAuthResult(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	var req RoleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid role payload"))
		return
	}

	input := usecase.CreateRoleInput{
		TenantID:    auth.TenantID,
		Name:        strings.TrimSpace(req.Name),
		Permissions: req.Permissions,
	}

	if req.Description != nil {
		trimmed := strings.TrimSpace(*req.Description)
		if trimmed != "" {
			descCopy := trimmed
			input.Description = &descCopy
		}
	}

	role, err := h.roles.CreateRole(c.Request.Context(), input)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidRoleName, Status: http.StatusBadRequest, Message: "invalid role name"},
			{Err: usecase.ErrRoleExists, Status: http.StatusConflict, Message: "role already exists"},
		}, http.StatusInternalServerError, "failed to create role")
		return
	}

	c.JSON(http.StatusCreated, NewRolePayload(*role))
}

// GetRole godoc
// @Summary Get a role
// @Tags Roles
// @Produce json
// @Param id path string true "Role ID"
// @Success 200 {object} RolePayload
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/roles/{id} [get]
func (h *RoleHandler) GetRole(c *gin.Context) {
	role, err := h.roles.GetRole(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "role not found"},
		}, http.StatusInternalServerError, "failed to load role")
		return
	}

	c.JSON(http.StatusOK, NewRolePayload(*role))
}

// ListRoles godoc
// @Summary List roles visible to the caller's tenant
// @Tags Roles
// @Produce json
// @Success 200 {array} RolePayload
// @Router /api/v1/roles [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	auth, ok := middleware.GetAuthResult(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	roles, err := h.roles.ListRoles(c.Request.Context(), auth.TenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list roles"))
		return
	}

	payloads := make([]RolePayload, 0, len(roles))
	for _, role := range roles {
		payloads = append(payloads, NewRolePayload(role))
	}

	c.JSON(http.StatusOK, payloads)
}

// UpdateRole godoc
// @Summary Update a role
// @Tags Roles
// @Accept json
// @Produce json
// @Param id path string true "Role ID"
// @Param request body RoleUpdateRequest true "Role update request"
// @Success 200 {object} RolePayload
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/roles/{id} [put]
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	var req RoleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid role payload"))
		return
	}

	input := usecase.UpdateRoleInput{
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	}

	role, err := h.roles.UpdateRole(c.Request.Context(), input)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidRoleName, Status: http.StatusBadRequest, Message: "invalid role name"},
			{Err: usecase.ErrRoleExists, Status: http.StatusConflict, Message: "role already exists"},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "role not found"},
		}, http.StatusInternalServerError, "failed to update role")
		return
	}

	c.JSON(http.StatusOK, NewRolePayload(*role))
}

// DeleteRole godoc
// @Summary Delete a role
// @Description Deletes a role that has no remaining user assignments.
// @Tags Roles
// @Produce json
// @Param id path string true "Role ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/roles/{id} [delete]
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	if err := h.roles.DeleteRole(c.Request.Context(), c.Param("id")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRoleInUse, Status: http.StatusConflict, Message: "role still has assignments"},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "role not found"},
		}, http.StatusInternalServerError, "failed to delete role")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "role deleted"})
}

// AssignRole godoc
// @Summary Assign a role to a user
// @Tags Roles
// @Accept json
// @Produce json
// @Param id path string true "Role ID"
// @Param request body RoleAssignmentRequest true "Assignment request"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/roles/{id}/assignments [post]
func (h *RoleHandler) AssignRole(c *gin.Context) {
	actorID, _ := middleware.GetAuthenticatedUserID(c)

	var req RoleAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid assignment payload"))
		return
	}

	err := h.roles.AssignRole(c.Request.Context(), actorID, strings.TrimSpace(req.UserID), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "role or user not found"},
		}, http.StatusInternalServerError, "failed to assign role")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "role assigned"})
}

// RevokeRole godoc
// @Summary Revoke a role from a user
// @Tags Roles
// @Produce json
// @Param id path string true "Role ID"
// @Param userId path string true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/roles/{id}/assignments/{userId} [delete]
func (h *RoleHandler) RevokeRole(c *gin.Context) {
	actorID, _ := middleware.GetAuthenticatedUserID(c)

	err := h.roles.RevokeRole(c.Request.Context(), actorID, c.Param("userId"), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "assignment not found"},
		}, http.StatusInternalServerError, "failed to revoke role")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "role revoked"})
}
