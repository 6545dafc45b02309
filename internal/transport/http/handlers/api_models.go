package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fieldpoint/fieldservice/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// RoleCreateRequest defines the payload for creating a role.
type RoleCreateRequest struct {
	Name        string                            `json:"name" binding:"required"`
	Description *string                           `json:"description"`
	Permissions map[string]domain.PermissionGrant `json:"permissions"`
}

// RoleUpdateRequest defines the payload for updating a role.
type RoleUpdateRequest struct {
	Name        *string                           `json:"name"`
	Description *string                           `json:"description"`
	Permissions map[string]domain.PermissionGrant `json:"permissions"`
}

// RolePayload describes a role in API responses.
type RolePayload struct {
	ID          string                            `json:"id"`
	TenantID    *string                           `json:"tenant_id,omitempty"`
	Name        string                            `json:"name"`
	Description *string                           `json:"description,omitempty"`
	Permissions map[string]domain.PermissionGrant `json:"permissions"`
	CreatedAt   time.Time                         `json:"created_at"`
	UpdatedAt   time.Time                         `json:"updated_at"`
}

// NewRolePayload maps a domain role into its API representation.
func NewRolePayload(role domain.Role) RolePayload {
	return RolePayload{
		ID:          role.ID,
		TenantID:    role.TenantID,
		Name:        role.Name,
		Description: role.Description,
		Permissions: role.Permissions,
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	}
}

// RoleAssignmentRequest defines the payload for assigning or revoking a role.
type RoleAssignmentRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// WorkOrderCreateRequest defines the payload for creating a work order.
type WorkOrderCreateRequest struct {
	CustomerID  string  `json:"customer_id" binding:"required"`
	LocationID  string  `json:"location_id" binding:"required"`
	EquipmentID *string `json:"equipment_id"`
	Summary     string  `json:"summary" binding:"required"`
	Priority    string  `json:"priority"`
}

// WorkOrderTransitionRequest defines the payload for a status transition.
type WorkOrderTransitionRequest struct {
	Status       string     `json:"status" binding:"required"`
	TechnicianID *string    `json:"technician_id"`
	ScheduledAt  *time.Time `json:"scheduled_at"`
}

// WorkOrderPayload describes a work order in API responses.
type WorkOrderPayload struct {
	ID           string                 `json:"id"`
	TenantID     string                 `json:"tenant_id"`
	CustomerID   string                 `json:"customer_id"`
	LocationID   string                 `json:"location_id"`
	EquipmentID  *string                `json:"equipment_id,omitempty"`
	TechnicianID *string                `json:"assigned_technician_id,omitempty"`
	Status       string                 `json:"status"`
	Priority     string                 `json:"priority"`
	Summary      string                 `json:"summary"`
	ScheduledAt  *time.Time             `json:"scheduled_at,omitempty"`
	StartedAt    *time.Time             `json:"started_at,omitempty"`
	CompletedAt  *time.Time             `json:"completed_at,omitempty"`
	Notes        []domain.WorkOrderNote `json:"notes,omitempty"`
	CreatedBy    string                 `json:"created_by"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// NewWorkOrderPayload maps a domain work order into its API representation.
func NewWorkOrderPayload(wo domain.WorkOrder) WorkOrderPayload {
	return WorkOrderPayload{
		ID:           wo.ID,
		TenantID:     wo.TenantID,
		CustomerID:   wo.CustomerID,
		LocationID:   wo.LocationID,
		EquipmentID:  wo.EquipmentID,
		TechnicianID: wo.AssignedTechnicianID,
		Status:       string(wo.Status),
		Priority:     string(wo.Priority),
		Summary:      wo.Summary,
		ScheduledAt:  wo.ScheduledAt,
		StartedAt:    wo.StartedAt,
		CompletedAt:  wo.CompletedAt,
		Notes:        wo.Notes,
		CreatedBy:    wo.CreatedBy,
		CreatedAt:    wo.CreatedAt,
		UpdatedAt:    wo.UpdatedAt,
	}
}

// ScheduleDropRequest defines the payload for resolving a board drop gesture.
type ScheduleDropRequest struct {
	WorkOrderID  string    `json:"work_order_id" binding:"required"`
	ColumnKind   string    `json:"column_kind" binding:"required"`
	TechnicianID string    `json:"technician_id"`
	Day          time.Time `json:"day" binding:"required"`
	OffsetY      float64   `json:"offset_y"`
}

// ScheduleDropResponse describes the outcome of a resolved drop.
type ScheduleDropResponse struct {
	WorkOrder WorkOrderPayload `json:"work_order"`
	Conflicts []string         `json:"conflicts,omitempty"`
	NoOp      bool             `json:"no_op"`
}

// ClockInRequest defines the payload for starting a timer.
type ClockInRequest struct {
	WorkOrderID string `json:"work_order_id" binding:"required"`
}

// ClockOutRequest defines the payload for closing a timer.
type ClockOutRequest struct {
	Notes *string `json:"notes"`
}

// ActiveTimerPayload describes a running timer.
type ActiveTimerPayload struct {
	WorkOrderID string    `json:"work_order_id"`
	StartedAt   time.Time `json:"started_at"`
}

// TimeEntryPayload describes a closed time entry.
type TimeEntryPayload struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenant_id"`
	UserID        string    `json:"user_id"`
	WorkOrderID   string    `json:"work_order_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	DurationHours float64   `json:"duration_hours"`
	EntryType     string    `json:"entry_type"`
	Notes         *string   `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewTimeEntryPayload maps a domain time entry into its API representation.
func NewTimeEntryPayload(entry domain.TimeEntry) TimeEntryPayload {
	return TimeEntryPayload{
		ID:            entry.ID,
		TenantID:      entry.TenantID,
		UserID:        entry.UserID,
		WorkOrderID:   entry.WorkOrderID,
		StartTime:     entry.StartTime,
		EndTime:       entry.EndTime,
		DurationHours: entry.DurationHours,
		EntryType:     string(entry.EntryType),
		Notes:         entry.Notes,
		CreatedAt:     entry.CreatedAt,
	}
}

// UserSummary describes a minimal view of a user returned by the API.
type UserSummary struct {
	ID           string  `json:"id"`
	TenantID     *string `json:"tenant_id,omitempty"`
	Email        string  `json:"email"`
	DisplayName  string  `json:"display_name"`
	Status       string  `json:"status"`
	IsTechnician bool    `json:"is_technician"`
}

// NewUserSummary maps a domain user into its API representation.
func NewUserSummary(user domain.User) UserSummary {
	return UserSummary{
		ID:           user.ID,
		TenantID:     user.TenantID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		Status:       string(user.Status),
		IsTechnician: user.IsTechnician,
	}
}

// ProfileResponse describes the authenticated caller's profile.
type ProfileResponse struct {
	User        UserSummary                 `json:"user"`
	Roles       []RolePayload               `json:"roles"`
	Permissions domain.EffectivePermissions `json:"permissions"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
