package domain

import (
	"fmt"
	"time"
)

// WorkOrderStatus enumerates the lifecycle states of a work order.
type WorkOrderStatus string

const (
	WorkOrderStatusNew        WorkOrderStatus = "new"
	WorkOrderStatusScheduled  WorkOrderStatus = "scheduled"
	WorkOrderStatusTraveling  WorkOrderStatus = "traveling"
	WorkOrderStatusInProgress WorkOrderStatus = "in-progress"
	WorkOrderStatusOnHold     WorkOrderStatus = "on-hold"
	WorkOrderStatusCompleted  WorkOrderStatus = "completed"
	WorkOrderStatusInvoiced   WorkOrderStatus = "invoiced"
	WorkOrderStatusCancelled  WorkOrderStatus = "cancelled"
)

// Valid reports whether the status is a known lifecycle state.
func (s WorkOrderStatus) Valid() bool {
	switch s {
	case WorkOrderStatusNew, WorkOrderStatusScheduled, WorkOrderStatusTraveling,
		WorkOrderStatusInProgress, WorkOrderStatusOnHold, WorkOrderStatusCompleted,
		WorkOrderStatusInvoiced, WorkOrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s WorkOrderStatus) Terminal() bool {
	return s == WorkOrderStatusInvoiced || s == WorkOrderStatusCancelled
}

// workOrderTransitions lists forward edges beyond the universal
// completed/cancelled targets reachable from any non-terminal state.
var workOrderTransitions = map[WorkOrderStatus][]WorkOrderStatus{
	WorkOrderStatusNew:        {WorkOrderStatusScheduled},
	WorkOrderStatusScheduled:  {WorkOrderStatusTraveling, WorkOrderStatusInProgress},
	WorkOrderStatusTraveling:  {WorkOrderStatusInProgress},
	WorkOrderStatusInProgress: {WorkOrderStatusOnHold},
	WorkOrderStatusOnHold:     {WorkOrderStatusScheduled, WorkOrderStatusInProgress},
	WorkOrderStatusCompleted:  {WorkOrderStatusInvoiced},
}

// CanTransitionTo reports whether the transition is legal. Re-asserting the
// current status is always legal and treated as a no-op by Transition.
func (s WorkOrderStatus) CanTransitionTo(next WorkOrderStatus) bool {
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	if next == WorkOrderStatusCancelled {
		return true
	}
	if next == WorkOrderStatusCompleted {
		return true
	}
	for _, allowed := range workOrderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// InvalidTransitionError reports an illegal status change, naming both the
// current and the requested status.
type InvalidTransitionError struct {
	From WorkOrderStatus
	To   WorkOrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("work order: invalid transition from %q to %q", e.From, e.To)
}

// Is lets callers match against ErrInvalidStateTransition with errors.Is.
func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidStateTransition
}

// WorkOrderPriority ranks work orders for dispatch.
type WorkOrderPriority string

const (
	WorkOrderPriorityLow    WorkOrderPriority = "low"
	WorkOrderPriorityMedium WorkOrderPriority = "medium"
	WorkOrderPriorityHigh   WorkOrderPriority = "high"
	WorkOrderPriorityUrgent WorkOrderPriority = "urgent"
)

// WorkOrderNote is an append-only remark on a work order.
type WorkOrderNote struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// WorkOrder is a unit of field work scoped to one tenant.
type WorkOrder struct {
	ID                   string
	TenantID             string
	CustomerID           string
	LocationID           string
	EquipmentID          *string
	AssignedTechnicianID *string
	Status               WorkOrderStatus
	Priority             WorkOrderPriority
	Summary              string
	ScheduledAt          *time.Time
	StartedAt            *time.Time
	CompletedAt          *time.Time
	Notes                []WorkOrderNote
	CreatedBy            string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TransitionEffects carries the side-effect fields a transition may require.
// TechnicianID and ScheduledAt must both be supplied when scheduling a new
// work order; Now stamps started_at and completed_at.
type TransitionEffects struct {
	TechnicianID *string
	ScheduledAt  *time.Time
	Now          time.Time
}

// Transition applies the status change and its side-effect fields in memory.
// The caller persists the whole work order in a single write so no partial
// state is ever observable. Returns *InvalidTransitionError when the change
// is illegal, including when a required side-effect field is missing.
func (w *WorkOrder) Transition(next WorkOrderStatus, effects TransitionEffects) error {
	if !next.Valid() {
		return &InvalidTransitionError{From: w.Status, To: next}
	}
	if w.Status == next {
		return nil
	}
	if !w.Status.CanTransitionTo(next) {
		return &InvalidTransitionError{From: w.Status, To: next}
	}

	switch next {
	case WorkOrderStatusScheduled:
		if effects.TechnicianID != nil {
			w.AssignedTechnicianID = effects.TechnicianID
		}
		if effects.ScheduledAt != nil {
			w.ScheduledAt = effects.ScheduledAt
		}
		// A technician and time slot are required before a work order may
		// be scheduled; re-entry from on-hold reuses the existing ones.
		if w.AssignedTechnicianID == nil || w.ScheduledAt == nil {
			return &InvalidTransitionError{From: w.Status, To: next}
		}
	case WorkOrderStatusInProgress:
		if w.StartedAt == nil {
			startedAt := effects.Now
			w.StartedAt = &startedAt
		}
	case WorkOrderStatusCompleted:
		completedAt := effects.Now
		w.CompletedAt = &completedAt
	case WorkOrderStatusCancelled:
		// completed_at is only meaningful on completed and invoiced orders.
		if w.Status == WorkOrderStatusCompleted {
			w.CompletedAt = nil
		}
	}

	w.Status = next
	w.UpdatedAt = effects.Now
	return nil
}

// Unscheduled reports whether the work order belongs in the unscheduled
// pool: no technician assigned and in a state awaiting dispatch.
func (w *WorkOrder) Unscheduled() bool {
	if w.AssignedTechnicianID != nil {
		return false
	}
	return w.Status == WorkOrderStatusNew || w.Status == WorkOrderStatusOnHold
}
