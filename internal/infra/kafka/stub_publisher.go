package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fieldpoint/fieldservice/internal/core/domain"
	"github.com/fieldpoint/fieldservice/internal/core/port"
)

var _ port.EventPublisher = (*StubPublisher)(nil)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishWorkOrderTransitioned logs workorder.transitioned events.
func (p *StubPublisher) PublishWorkOrderTransitioned(_ context.Context, event domain.WorkOrderTransitionedEvent) error {
	payload := map[string]any{
		"work_order_id": event.WorkOrderID,
		"tenant_id":     event.TenantID,
		"actor_id":      event.ActorID,
		"from_status":   string(event.FromStatus),
		"to_status":     string(event.ToStatus),
		"technician_id": event.TechnicianID,
	}
	p.logEvent("workorder.transitioned", event.OccurredAt, payload)
	return nil
}

// PublishWorkOrderScheduled logs workorder.scheduled events.
func (p *StubPublisher) PublishWorkOrderScheduled(_ context.Context, event domain.WorkOrderScheduledEvent) error {
	payload := map[string]any{
		"work_order_id": event.WorkOrderID,
		"tenant_id":     event.TenantID,
		"actor_id":      event.ActorID,
		"technician_id": event.TechnicianID,
		"scheduled_at":  event.ScheduledAt,
		"conflict_ids":  event.ConflictIDs,
	}
	p.logEvent("workorder.scheduled", event.OccurredAt, payload)
	return nil
}

// PublishClockedIn logs timeclock.clocked_in events.
func (p *StubPublisher) PublishClockedIn(_ context.Context, event domain.ClockedInEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"tenant_id":     event.TenantID,
		"work_order_id": event.WorkOrderID,
		"started_at":    event.StartedAt,
	}
	p.logEvent("timeclock.clocked_in", event.StartedAt, payload)
	return nil
}

// PublishClockedOut logs timeclock.clocked_out events.
func (p *StubPublisher) PublishClockedOut(_ context.Context, event domain.ClockedOutEvent) error {
	payload := map[string]any{
		"user_id":        event.UserID,
		"tenant_id":      event.TenantID,
		"work_order_id":  event.WorkOrderID,
		"time_entry_id":  event.TimeEntryID,
		"start_time":     event.StartTime,
		"end_time":       event.EndTime,
		"duration_hours": event.DurationHours,
	}
	p.logEvent("timeclock.clocked_out", event.EndTime, payload)
	return nil
}

// PublishRolesAssigned logs user.roles.assigned events.
func (p *StubPublisher) PublishRolesAssigned(_ context.Context, event domain.RolesAssignedEvent) error {
	payload := map[string]any{
		"user_id":     event.UserID,
		"tenant_id":   event.TenantID,
		"role_ids":    event.RoleIDs,
		"assigned_by": event.AssignedBy,
	}
	p.logEvent("user.roles.assigned", event.AssignedAt, payload)
	return nil
}

// PublishRolesRevoked logs user.roles.revoked events.
func (p *StubPublisher) PublishRolesRevoked(_ context.Context, event domain.RolesRevokedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"tenant_id":  event.TenantID,
		"role_ids":   event.RoleIDs,
		"revoked_by": event.RevokedBy,
	}
	p.logEvent("user.roles.revoked", event.RevokedAt, payload)
	return nil
}
