package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fieldpoint/fieldservice/internal/core/domain"
	"github.com/fieldpoint/fieldservice/internal/core/port"
	"github.com/fieldpoint/fieldservice/internal/repository"
	"github.com/fieldpoint/fieldservice/internal/transport/http/middleware"
	"github.com/fieldpoint/fieldservice/internal/usecase"
)

type WorkOrderHandler struct {
	workOrders *usecase.WorkOrderService
}

func NewWorkOrderHandler(workOrders *usecase.WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{workOrders: workOrders}
}

// tenantContext resolves the effective tenant for the request. Work order
// operations always act inside a tenant; a platform admin must name one
// through the X-Tenant-ID header.
func tenantContext(c *gin.Context) (string, *usecase.AuthorizationResult, bool) {
	auth, ok := middleware.GetAuthResult(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid authentication"))
		return "", nil, false
	}

	if auth.TenantID == nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "tenant context required"))
		return "", nil, false
	}

	return *auth.TenantID, auth, true
}

// CreateWorkOrder godoc
// @Summary Create a work order
// @Description Creates a work order in the new status.
// @Tags WorkOrders
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer identity token"
// @Param request body WorkOrderCreateRequest true "Work order create request"
// @Success 201 {object} WorkOrderPayload
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/work-orders [post]
func (h *WorkOrderHandler) CreateWorkOrder(c *gin.Context) {
	tenantID, auth, ok := tenantContext(c)
	if !ok {
		return
	}

	var req WorkOrderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid work order payload"))
		return
	}

	input := usecase.CreateWorkOrderInput{
		CustomerID:  strings.TrimSpace(req.CustomerID),
		LocationID:  strings.TrimSpace(req.LocationID),
		EquipmentID: req.EquipmentID,
		Summary:     strings.TrimSpace(req.Summary),
		Priority:    domain.WorkOrderPriority(req.Priority),
	}

	wo, err := h.workOrders.CreateWorkOrder(c.Request.Context(), tenantID, auth.UserID, input)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidWorkOrder, Status: http.StatusBadRequest, Message: "invalid work order payload"},
		}, http.StatusInternalServerError, "failed to create work order")
		return
	}

	c.JSON(http.StatusCreated, NewWorkOrderPayload(*wo))
}

// GetWorkOrder godoc
// @Summary Get a work order
// @Tags WorkOrders
// @Produce json
// @Param id path string true "Work order ID"
// @Success 200 {object} WorkOrderPayload
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/work-orders/{id} [get]
func (h *WorkOrderHandler) GetWorkOrder(c *gin.Context) {
	tenantID, _, ok := tenantContext(c)
	if !ok {
		return
	}

	wo, err := h.workOrders.GetWorkOrder(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "work order not found"},
		}, http.StatusInternalServerError, "failed to load work order")
		return
	}

	c.JSON(http.StatusOK, NewWorkOrderPayload(*wo))
}

// ListWorkOrders godoc
// @Summary List work orders
// @Description Lists tenant work orders filtered by status, technician, or customer.
// @Tags WorkOrders
// @Produce json
// @Param status query string false "Status filter"
// @Param technician_id query string false "Technician filter"
// @Param customer_id query string false "Customer filter"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} WorkOrderPayload
// @Router /api/v1/work-orders [get]
func (h *WorkOrderHandler) ListWorkOrders(c *gin.Context) {
	tenantID, _, ok := tenantContext(c)
	if !ok {
		return
	}

	var filter port.WorkOrderFilter

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		parsed := domain.WorkOrderStatus(status)
		if !parsed.Valid() {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown status filter"))
			return
		}
		filter.Status = &parsed
	}

	if technicianID := strings.TrimSpace(c.Query("technician_id")); technicianID != "" {
		filter.TechnicianID = &technicianID
	}

	if customerID := strings.TrimSpace(c.Query("customer_id")); customerID != "" {
		filter.CustomerID = &customerID
	}

	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	orders, err := h.workOrders.ListWorkOrders(c.Request.Context(), tenantID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list work orders"))
		return
	}

	payloads := make([]WorkOrderPayload, 0, len(orders))
	for _, wo := range orders {
		payloads = append(payloads, NewWorkOrderPayload(wo))
	}

	c.JSON(http.StatusOK, payloads)
}

// TransitionStatus godoc
// @Summary Transition a work order's status
// @Description Applies a lifecycle transition, rejecting moves the state machine forbids.
// @Tags WorkOrders
// @Accept json
// @Produce json
// @Param id path string true "Work order ID"
// @Param request body WorkOrderTransitionRequest true "Transition request"
// @Success 200 {object} WorkOrderPayload
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/work-orders/{id}/status [patch]
func (h *WorkOrderHandler) TransitionStatus(c *gin.Context) {
	tenantID, auth, ok := tenantContext(c)
	if !ok {
		return
	}

	var req WorkOrderTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid transition payload"))
		return
	}

	next := domain.WorkOrderStatus(strings.TrimSpace(req.Status))
	if !next.Valid() {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown target status"))
		return
	}

	input := usecase.TransitionInput{
		TechnicianID: req.TechnicianID,
		ScheduledAt:  req.ScheduledAt,
	}

	wo, err := h.workOrders.TransitionStatus(c.Request.Context(), tenantID, auth.UserID, c.Param("id"), next, input)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: domain.ErrInvalidStateTransition, Status: http.StatusConflict, Message: "transition not allowed from current status"},
			{Err: usecase.ErrInvalidWorkOrder, Status: http.StatusBadRequest, Message: "invalid transition payload"},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "work order not found"},
		}, http.StatusInternalServerError, "failed to transition work order")
		return
	}

	c.JSON(http.StatusOK, NewWorkOrderPayload(*wo))
}
