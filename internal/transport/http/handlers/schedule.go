package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fieldpoint/fieldservice/internal/core/domain"
	"github.com/fieldpoint/fieldservice/internal/repository"
	"github.com/fieldpoint/fieldservice/internal/usecase"
)

type ScheduleHandler struct {
	schedule *usecase.ScheduleService
}

func NewScheduleHandler(schedule *usecase.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule}
}

// ResolveDrop godoc
// @Summary Resolve a scheduling board drop gesture
// @Description Converts a drag-and-drop gesture into a technician and time-slot assignment. Overlapping slots are reported as advisory conflicts, never rejected.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer identity token"
// @Param request body ScheduleDropRequest true "Drop gesture"
// @Success 200 {object} ScheduleDropResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/schedule/drop [post]
func (h *ScheduleHandler) ResolveDrop(c *gin.Context) {
	tenantID, auth, ok := tenantContext(c)
	if !ok {
		return
	}

	var req ScheduleDropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid drop payload"))
		return
	}

	kind := domain.ColumnKind(strings.TrimSpace(req.ColumnKind))
	if kind != domain.ColumnTechnician && kind != domain.ColumnDay {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown column kind"))
		return
	}

	if kind == domain.ColumnTechnician && strings.TrimSpace(req.TechnicianID) == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "technician id required for technician columns"))
		return
	}

	input := usecase.ResolveDropInput{
		WorkOrderID:  strings.TrimSpace(req.WorkOrderID),
		ColumnKind:   kind,
		TechnicianID: strings.TrimSpace(req.TechnicianID),
		Day:          req.Day,
		OffsetY:      req.OffsetY,
	}

	resolution, err := h.schedule.ResolveDrop(c.Request.Context(), tenantID, auth.UserID, input)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: domain.ErrInvalidStateTransition, Status: http.StatusConflict, Message: "work order cannot be scheduled from its current status"},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "work order not found"},
		}, http.StatusInternalServerError, "failed to resolve drop")
		return
	}

	c.JSON(http.StatusOK, ScheduleDropResponse{
		WorkOrder: NewWorkOrderPayload(*resolution.WorkOrder),
		Conflicts: resolution.Conflicts,
		NoOp:      resolution.NoOp,
	})
}

// UnscheduledQueue godoc
// @Summary List unscheduled work orders
// @Description Returns open work orders with no technician or time slot, oldest first.
// @Tags Schedule
// @Produce json
// @Success 200 {array} WorkOrderPayload
// @Router /api/v1/schedule/unscheduled [get]
func (h *ScheduleHandler) UnscheduledQueue(c *gin.Context) {
	tenantID, _, ok := tenantContext(c)
	if !ok {
		return
	}

	orders, err := h.schedule.UnscheduledQueue(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list unscheduled work orders"))
		return
	}

	payloads := make([]WorkOrderPayload, 0, len(orders))
	for _, wo := range orders {
		payloads = append(payloads, NewWorkOrderPayload(wo))
	}

	c.JSON(http.StatusOK, payloads)
}
