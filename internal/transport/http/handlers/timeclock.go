package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fieldpoint/fieldservice/internal/core/port"
	"github.com/fieldpoint/fieldservice/internal/repository"
	"github.com/fieldpoint/fieldservice/internal/usecase"
)

type TimeclockHandler struct {
	timeclock *usecase.TimeclockService
}

func NewTimeclockHandler(timeclock *usecase.TimeclockService) *TimeclockHandler {
	return &TimeclockHandler{timeclock: timeclock}
}

// ClockIn godoc
// @Summary Clock in against a work order
// @Description Starts the caller's timer. A user can hold at most one active timer.
// @Tags Timeclock
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer identity token"
// @Param request body ClockInRequest true "Clock-in request"
// @Success 201 {object} ActiveTimerPayload
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/timeclock/in [post]
func (h *TimeclockHandler) ClockIn(c *gin.Context) {
	tenantID, auth, ok := tenantContext(c)
	if !ok {
		return
	}

	var req ClockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid clock-in payload"))
		return
	}

	timer, err := h.timeclock.ClockIn(c.Request.Context(), tenantID, auth.UserID, strings.TrimSpace(req.WorkOrderID))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAlreadyClockedIn, Status: http.StatusConflict, Message: "already clocked in"},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "work order not found"},
		}, http.StatusInternalServerError, "failed to clock in")
		return
	}

	c.JSON(http.StatusCreated, ActiveTimerPayload{
		WorkOrderID: timer.WorkOrderID,
		StartedAt:   timer.StartedAt,
	})
}

// ClockOut godoc
// @Summary Clock out of the active timer
// @Description Closes the caller's timer into an immutable time entry.
// @Tags Timeclock
// @Accept json
// @Produce json
// @Param request body ClockOutRequest false "Clock-out request"
// @Success 200 {object} TimeEntryPayload
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/timeclock/out [post]
func (h *TimeclockHandler) ClockOut(c *gin.Context) {
	tenantID, auth, ok := tenantContext(c)
	if !ok {
		return
	}

	var req ClockOutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid clock-out payload"))
			return
		}
	}

	entry, err := h.timeclock.ClockOut(c.Request.Context(), tenantID, auth.UserID, req.Notes)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotClockedIn, Status: http.StatusConflict, Message: "no active timer"},
		}, http.StatusInternalServerError, "failed to clock out")
		return
	}

	c.JSON(http.StatusOK, NewTimeEntryPayload(*entry))
}

// ActiveTimer godoc
// @Summary Get the caller's active timer
// @Tags Timeclock
// @Produce json
// @Success 200 {object} ActiveTimerPayload
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/timeclock/active [get]
func (h *TimeclockHandler) ActiveTimer(c *gin.Context) {
	_, auth, ok := tenantContext(c)
	if !ok {
		return
	}

	timer, err := h.timeclock.ActiveTimer(c.Request.Context(), auth.UserID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to load timer")
		return
	}

	if timer == nil {
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "no active timer"))
		return
	}

	c.JSON(http.StatusOK, ActiveTimerPayload{
		WorkOrderID: timer.WorkOrderID,
		StartedAt:   timer.StartedAt,
	})
}

// ListTimeEntries godoc
// @Summary List time entries
// @Description Lists immutable time entries for the tenant with optional user, work order, and date filters.
// @Tags Timeclock
// @Produce json
// @Param user_id query string false "User filter"
// @Param work_order_id query string false "Work order filter"
// @Param from query string false "RFC 3339 lower bound"
// @Param to query string false "RFC 3339 upper bound"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} TimeEntryPayload
// @Router /api/v1/time-entries [get]
func (h *TimeclockHandler) ListTimeEntries(c *gin.Context) {
	tenantID, _, ok := tenantContext(c)
	if !ok {
		return
	}

	var filter port.TimeEntryFilter

	if userID := strings.TrimSpace(c.Query("user_id")); userID != "" {
		filter.UserID = &userID
	}

	if workOrderID := strings.TrimSpace(c.Query("work_order_id")); workOrderID != "" {
		filter.WorkOrderID = &workOrderID
	}

	if from := strings.TrimSpace(c.Query("from")); from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid from timestamp"))
			return
		}
		filter.From = &parsed
	}

	if to := strings.TrimSpace(c.Query("to")); to != "" {
		parsed, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid to timestamp"))
			return
		}
		filter.To = &parsed
	}

	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.timeclock.ListEntries(c.Request.Context(), tenantID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list time entries"))
		return
	}

	payloads := make([]TimeEntryPayload, 0, len(entries))
	for _, entry := range entries {
		payloads = append(payloads, NewTimeEntryPayload(entry))
	}

	c.JSON(http.StatusOK, payloads)
}
