package port

import (
	"context"

	"github.com/fieldpoint/fieldservice/internal/core/domain"
)

// EventPublisher publishes audit events to the message bus.
type EventPublisher interface {
	PublishWorkOrderTransitioned(ctx context.Context, event domain.WorkOrderTransitionedEvent) error
	PublishWorkOrderScheduled(ctx context.Context, event domain.WorkOrderScheduledEvent) error
	PublishClockedIn(ctx context.Context, event domain.ClockedInEvent) error
	PublishClockedOut(ctx context.Context, event domain.ClockedOutEvent) error
	PublishRolesAssigned(ctx context.Context, event domain.RolesAssignedEvent) error
	PublishRolesRevoked(ctx context.Context, event domain.RolesRevokedEvent) error
}
