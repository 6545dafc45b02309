package domain

import "time"

// WorkOrderTransitionedEvent records a status change on a work order.
type WorkOrderTransitionedEvent struct {
	WorkOrderID  string
	TenantID     string
	ActorID      string
	FromStatus   WorkOrderStatus
	ToStatus     WorkOrderStatus
	TechnicianID *string
	OccurredAt   time.Time
	Metadata     map[string]string
}

// WorkOrderScheduledEvent records a drag-and-drop scheduling assignment.
type WorkOrderScheduledEvent struct {
	WorkOrderID  string
	TenantID     string
	ActorID      string
	TechnicianID *string
	ScheduledAt  time.Time
	ConflictIDs  []string
	OccurredAt   time.Time
}

// ClockedInEvent records the start of a technician timer.
type ClockedInEvent struct {
	UserID      string
	TenantID    string
	WorkOrderID string
	StartedAt   time.Time
}

// ClockedOutEvent records a timer closed into an immutable time entry.
type ClockedOutEvent struct {
	UserID        string
	TenantID      string
	WorkOrderID   string
	TimeEntryID   string
	StartTime     time.Time
	EndTime       time.Time
	DurationHours float64
}

// RolesAssignedEvent records role grants to a user.
type RolesAssignedEvent struct {
	UserID     string
	TenantID   *string
	RoleIDs    []string
	AssignedBy string
	AssignedAt time.Time
}

// RolesRevokedEvent records role revocations from a user.
type RolesRevokedEvent struct {
	UserID    string
	TenantID  *string
	RoleIDs   []string
	RevokedBy string
	RevokedAt time.Time
}
