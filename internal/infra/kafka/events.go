package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fieldpoint/fieldservice/internal/core/domain"
	"github.com/fieldpoint/fieldservice/internal/core/port"
	"github.com/fieldpoint/fieldservice/internal/infra/config"
)

var _ port.EventPublisher = (*EventPublisher)(nil)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	TenantID  string           `json:"tenant_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventType, tenantID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   uuid.NewString(),
		EventType: eventType,
		TenantID:  tenantID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishWorkOrderTransitioned publishes fieldservice.workorder.transitioned events.
func (p *EventPublisher) PublishWorkOrderTransitioned(ctx context.Context, event domain.WorkOrderTransitionedEvent) error {
	payload := struct {
		WorkOrderID  string            `json:"work_order_id"`
		TenantID     string            `json:"tenant_id"`
		ActorID      string            `json:"actor_id"`
		FromStatus   string            `json:"from_status"`
		ToStatus     string            `json:"to_status"`
		TechnicianID *string           `json:"technician_id,omitempty"`
		OccurredAt   time.Time         `json:"occurred_at"`
		Metadata     map[string]string `json:"metadata,omitempty"`
	}{
		WorkOrderID:  event.WorkOrderID,
		TenantID:     event.TenantID,
		ActorID:      event.ActorID,
		FromStatus:   string(event.FromStatus),
		ToStatus:     string(event.ToStatus),
		TechnicianID: event.TechnicianID,
		OccurredAt:   event.OccurredAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, "workorder.transitioned", event.TenantID, event.OccurredAt, payload)
}

// PublishWorkOrderScheduled publishes fieldservice.workorder.scheduled events.
func (p *EventPublisher) PublishWorkOrderScheduled(ctx context.Context, event domain.WorkOrderScheduledEvent) error {
	payload := struct {
		WorkOrderID  string    `json:"work_order_id"`
		TenantID     string    `json:"tenant_id"`
		ActorID      string    `json:"actor_id"`
		TechnicianID *string   `json:"technician_id,omitempty"`
		ScheduledAt  time.Time `json:"scheduled_at"`
		ConflictIDs  []string  `json:"conflict_ids,omitempty"`
		OccurredAt   time.Time `json:"occurred_at"`
	}{
		WorkOrderID:  event.WorkOrderID,
		TenantID:     event.TenantID,
		ActorID:      event.ActorID,
		TechnicianID: event.TechnicianID,
		ScheduledAt:  event.ScheduledAt.UTC(),
		ConflictIDs:  event.ConflictIDs,
		OccurredAt:   event.OccurredAt.UTC(),
	}

	return p.publish(ctx, "workorder.scheduled", event.TenantID, event.OccurredAt, payload)
}

// PublishClockedIn publishes fieldservice.timeclock.clocked_in events.
func (p *EventPublisher) PublishClockedIn(ctx context.Context, event domain.ClockedInEvent) error {
	payload := struct {
		UserID      string    `json:"user_id"`
		TenantID    string    `json:"tenant_id"`
		WorkOrderID string    `json:"work_order_id"`
		StartedAt   time.Time `json:"started_at"`
	}{
		UserID:      event.UserID,
		TenantID:    event.TenantID,
		WorkOrderID: event.WorkOrderID,
		StartedAt:   event.StartedAt.UTC(),
	}

	return p.publish(ctx, "timeclock.clocked_in", event.TenantID, event.StartedAt, payload)
}

// PublishClockedOut publishes fieldservice.timeclock.clocked_out events.
func (p *EventPublisher) PublishClockedOut(ctx context.Context, event domain.ClockedOutEvent) error {
	payload := struct {
		UserID        string    `json:"user_id"`
		TenantID      string    `json:"tenant_id"`
		WorkOrderID   string    `json:"work_order_id"`
		TimeEntryID   string    `json:"time_entry_id"`
		StartTime     time.Time `json:"start_time"`
		EndTime       time.Time `json:"end_time"`
		DurationHours float64   `json:"duration_hours"`
	}{
		UserID:        event.UserID,
		TenantID:      event.TenantID,
		WorkOrderID:   event.WorkOrderID,
		TimeEntryID:   event.TimeEntryID,
		StartTime:     event.StartTime.UTC(),
		EndTime:       event.EndTime.UTC(),
		DurationHours: event.DurationHours,
	}

	return p.publish(ctx, "timeclock.clocked_out", event.TenantID, event.EndTime, payload)
}

// PublishRolesAssigned publishes fieldservice.user.roles.assigned events.
func (p *EventPublisher) PublishRolesAssigned(ctx context.Context, event domain.RolesAssignedEvent) error {
	tenantID := ""
	if event.TenantID != nil {
		tenantID = *event.TenantID
	}

	payload := struct {
		UserID     string    `json:"user_id"`
		TenantID   *string   `json:"tenant_id,omitempty"`
		RoleIDs    []string  `json:"role_ids"`
		AssignedBy string    `json:"assigned_by"`
		AssignedAt time.Time `json:"assigned_at"`
	}{
		UserID:     event.UserID,
		TenantID:   event.TenantID,
		RoleIDs:    event.RoleIDs,
		AssignedBy: event.AssignedBy,
		AssignedAt: event.AssignedAt.UTC(),
	}

	return p.publish(ctx, "user.roles.assigned", tenantID, event.AssignedAt, payload)
}

// PublishRolesRevoked publishes fieldservice.user.roles.revoked events.
func (p *EventPublisher) PublishRolesRevoked(ctx context.Context, event domain.RolesRevokedEvent) error {
	tenantID := ""
	if event.TenantID != nil {
		tenantID = *event.TenantID
	}

	payload := struct {
		UserID    string    `json:"user_id"`
		TenantID  *string   `json:"tenant_id,omitempty"`
		RoleIDs   []string  `json:"role_ids"`
		RevokedBy string    `json:"revoked_by"`
		RevokedAt time.Time `json:"revoked_at"`
	}{
		UserID:    event.UserID,
		TenantID:  event.TenantID,
		RoleIDs:   event.RoleIDs,
		RevokedBy: event.RevokedBy,
		RevokedAt: event.RevokedAt.UTC(),
	}

	return p.publish(ctx, "user.roles.revoked", tenantID, event.RevokedAt, payload)
}
