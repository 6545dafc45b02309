package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fieldpoint/fieldservice/internal/repository"
	"github.com/fieldpoint/fieldservice/internal/transport/http/middleware"
	"github.com/fieldpoint/fieldservice/internal/usecase"
)

type MeHandler struct {
	users *usecase.UserService
}

func NewMeHandler(users *usecase.UserService) *MeHandler {
	return &MeHandler{users: users}
}

// Profile godoc
// @Summary Get the authenticated caller's profile
// @Description Returns the caller's user record, roles, and freshly aggregated effective permissions.
// @Tags Me
// @Produce json
// @Param Authorization header string true "Bearer identity token"
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/me [get]
func (h *MeHandler) Profile(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok || userID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return
	}

	profile, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to load profile")
		return
	}

	roles := make([]RolePayload, 0, len(profile.Roles))
	for _, role := range profile.Roles {
		roles = append(roles, NewRolePayload(role))
	}

	c.JSON(http.StatusOK, ProfileResponse{
		User:        NewUserSummary(*profile.User),
		Roles:       roles,
		Permissions: profile.Permissions,
	})
}

// ListTechnicians godoc
// @Summary List tenant technicians
// @Tags Me
// @Produce json
// @Success 200 {array} UserSummary
// @Router /api/v1/technicians [get]
func (h *MeHandler) ListTechnicians(c *gin.Context) {
	tenantID, _, ok := tenantContext(c)
	if !ok {
		return
	}

	technicians, err := h.users.ListTechnicians(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list technicians"))
		return
	}

	payloads := make([]UserSummary, 0, len(technicians))
	for _, tech := range technicians {
		payloads = append(payloads, NewUserSummary(tech))
	}

	c.JSON(http.StatusOK, payloads)
}
