package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fieldpoint/fieldservice/internal/core/domain"
	"github.com/fieldpoint/fieldservice/internal/core/port"
)

// ResolveDropInput describes a completed drag-and-drop gesture from the
// scheduling board, already stripped of any UI library specifics.
type ResolveDropInput struct {
	WorkOrderID  string
	ColumnKind   domain.ColumnKind
	TechnicianID string
	Day          time.Time
	OffsetY      float64
}

// DropResolution is the outcome of a resolved drop. Conflicts lists other
// work orders occupying an overlapping slot for the same technician; they
// are advisory and never block the assignment.
type DropResolution struct {
	WorkOrder *domain.WorkOrder
	Conflicts []string
	NoOp      bool
}

// ScheduleConfig tunes the board geometry and conflict window.
type ScheduleConfig struct {
	PixelsPerHour float64
	JobDuration   time.Duration
}

// ScheduleService converts drop gestures into persisted technician and
// time-slot assignments.
type ScheduleService struct {
	uow        port.UnitOfWork
	workOrders port.WorkOrderRepository
	events     port.EventPublisher
	cfg        ScheduleConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(uow port.UnitOfWork, workOrders port.WorkOrderRepository, events port.EventPublisher, cfg ScheduleConfig) *ScheduleService {
	if cfg.PixelsPerHour <= 0 {
		cfg.PixelsPerHour = domain.DefaultPixelsPerHour
	}
	if cfg.JobDuration <= 0 {
		cfg.JobDuration = domain.DefaultJobDurationMin * time.Minute
	}
	return &ScheduleService{
		uow:        uow,
		workOrders: workOrders,
		events:     events,
		cfg:        cfg,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
}

// WithLogger attaches a logger for audit trails.
func (s *ScheduleService) WithLogger(logger *zap.Logger) *ScheduleService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// ResolveDrop converts the gesture into an assignment and persists it in
// one transaction. Technician-column drops assign the technician and snap
// the time slot; day-column drops move the date only. A day-column drop
// landing on the current date resolves to a no-op with no write.
func (s *ScheduleService) ResolveDrop(ctx context.Context, tenantID, actorID string, input ResolveDropInput) (*DropResolution, error) {
	resolution := &DropResolution{}

	err := s.uow.Do(ctx, func(ctx context.Context, repos port.RepositorySet) error {
		wo, err := repos.WorkOrders().GetForUpdate(ctx, tenantID, input.WorkOrderID)
		if err != nil {
			return fmt.Errorf("get work order: %w", err)
		}

		assignment := domain.ResolveDrop(wo, domain.DropInput{
			Column: domain.DropColumn{
				Kind:         input.ColumnKind,
				TechnicianID: input.TechnicianID,
				Day:          input.Day,
			},
			OffsetY:       input.OffsetY,
			PixelsPerHour: s.cfg.PixelsPerHour,
		})

		if assignment.NoOp {
			resolution.WorkOrder = wo
			resolution.NoOp = true
			return nil
		}

		if assignment.TechnicianID != nil {
			conflicts, err := s.detectConflicts(ctx, repos.WorkOrders(), tenantID, *assignment.TechnicianID, assignment.ScheduledAt, wo.ID)
			if err != nil {
				return err
			}
			resolution.Conflicts = conflicts
		}

		scheduledAt := assignment.ScheduledAt
		now := s.now().UTC()

		if assignment.TechnicianID != nil {
			effects := domain.TransitionEffects{
				TechnicianID: assignment.TechnicianID,
				ScheduledAt:  &scheduledAt,
				Now:          now,
			}
			if err := wo.Transition(domain.WorkOrderStatusScheduled, effects); err != nil {
				return err
			}
			// Re-asserting scheduled is a no-op for the state machine, so
			// apply the new slot directly for pure reschedules.
			wo.AssignedTechnicianID = assignment.TechnicianID
			wo.ScheduledAt = &scheduledAt
			wo.UpdatedAt = now
		} else {
			// Date reflow for an unassigned order: the slot moves but the
			// order stays in the unscheduled pool.
			wo.ScheduledAt = &scheduledAt
			wo.UpdatedAt = now
		}

		if err := repos.WorkOrders().Update(ctx, *wo); err != nil {
			return fmt.Errorf("update work order: %w", err)
		}

		resolution.WorkOrder = wo
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !resolution.NoOp && s.events != nil {
		event := domain.WorkOrderScheduledEvent{
			WorkOrderID:  resolution.WorkOrder.ID,
			TenantID:     tenantID,
			ActorID:      actorID,
			TechnicianID: resolution.WorkOrder.AssignedTechnicianID,
			ScheduledAt:  *resolution.WorkOrder.ScheduledAt,
			ConflictIDs:  resolution.Conflicts,
			OccurredAt:   resolution.WorkOrder.UpdatedAt,
		}
		if err := s.events.PublishWorkOrderScheduled(ctx, event); err != nil {
			s.logger.Warn("publish work order scheduled event", zap.Error(err))
		}
	}

	return resolution, nil
}

// UnscheduledQueue returns the pool of work orders awaiting dispatch.
func (s *ScheduleService) UnscheduledQueue(ctx context.Context, tenantID string) ([]domain.WorkOrder, error) {
	orders, err := s.workOrders.ListUnscheduled(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list unscheduled work orders: %w", err)
	}
	return orders, nil
}

func (s *ScheduleService) detectConflicts(ctx context.Context, repo port.WorkOrderRepository, tenantID, technicianID string, slot time.Time, excludeID string) ([]string, error) {
	existing, err := repo.ListForTechnicianDay(ctx, tenantID, technicianID, slot)
	if err != nil {
		return nil, fmt.Errorf("list technician day: %w", err)
	}

	var conflicts []string
	for _, other := range existing {
		if other.ID == excludeID || other.ScheduledAt == nil {
			continue
		}
		if domain.SlotsOverlap(slot, *other.ScheduledAt, s.cfg.JobDuration) {
			conflicts = append(conflicts, other.ID)
		}
	}
	return conflicts, nil
}
