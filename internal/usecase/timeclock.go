package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fieldpoint/fieldservice/internal/core/domain"
	"github.com/fieldpoint/fieldservice/internal/core/port"
)

var (
	// ErrAlreadyClockedIn indicates the user already has an active timer.
	ErrAlreadyClockedIn = errors.New("already clocked in")
	// ErrNotClockedIn indicates no active timer exists for the user.
	ErrNotClockedIn = errors.New("not clocked in")
)

// TimeclockService manages the clock-in/clock-out timer lifecycle. Both
// mutations run inside a unit of work with the user row locked, so two
// concurrent clock-ins can never race into two timers and a timer is never
// deleted without its time entry being created.
type TimeclockService struct {
	uow     port.UnitOfWork
	users   port.UserRepository
	entries port.TimeEntryRepository
	events  port.EventPublisher
	logger  *zap.Logger
	now     func() time.Time
}

// NewTimeclockService constructs a TimeclockService.
func NewTimeclockService(uow port.UnitOfWork, users port.UserRepository, entries port.TimeEntryRepository, events port.EventPublisher) *TimeclockService {
	return &TimeclockService{
		uow:     uow,
		users:   users,
		entries: entries,
		events:  events,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
}

// WithLogger attaches a logger for audit trails.
func (s *TimeclockService) WithLogger(logger *zap.Logger) *TimeclockService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// ClockIn starts a timer for the user against the work order and moves the
// work order toward in-progress where the state machine allows it.
func (s *TimeclockService) ClockIn(ctx context.Context, tenantID, userID, workOrderID string) (*domain.ActiveTimer, error) {
	workOrderID = strings.TrimSpace(workOrderID)
	if workOrderID == "" {
		return nil, fmt.Errorf("work order id is required")
	}

	var timer domain.ActiveTimer

	err := s.uow.Do(ctx, func(ctx context.Context, repos port.RepositorySet) error {
		user, err := repos.Users().GetForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}

		if user.ActiveTimer != nil {
			return ErrAlreadyClockedIn
		}

		wo, err := repos.WorkOrders().GetForUpdate(ctx, tenantID, workOrderID)
		if err != nil {
			return fmt.Errorf("get work order: %w", err)
		}

		now := s.now().UTC()
		timer = domain.ActiveTimer{WorkOrderID: wo.ID, StartedAt: now}

		if err := repos.Users().SetActiveTimer(ctx, userID, &timer); err != nil {
			return fmt.Errorf("set active timer: %w", err)
		}

		// Move the order toward in-progress when the state machine allows
		// it; clocking in against an on-hold or traveling order resumes it.
		if wo.Status != domain.WorkOrderStatusInProgress &&
			wo.Status.CanTransitionTo(domain.WorkOrderStatusInProgress) {
			if err := wo.Transition(domain.WorkOrderStatusInProgress, domain.TransitionEffects{Now: now}); err != nil {
				return err
			}
			if err := repos.WorkOrders().Update(ctx, *wo); err != nil {
				return fmt.Errorf("update work order: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		event := domain.ClockedInEvent{
			UserID:      userID,
			TenantID:    tenantID,
			WorkOrderID: timer.WorkOrderID,
			StartedAt:   timer.StartedAt,
		}
		if err := s.events.PublishClockedIn(ctx, event); err != nil {
			s.logger.Warn("publish clocked in event", zap.Error(err))
		}
	}

	return &timer, nil
}

// ClockOut closes the user's active timer into an immutable time entry.
// The entry insert and the timer deletion commit in the same transaction,
// so "timer gone but no entry" is never observable. The work order's status
// is left for the caller to transition explicitly.
func (s *TimeclockService) ClockOut(ctx context.Context, tenantID, userID string, notes *string) (*domain.TimeEntry, error) {
	var entry domain.TimeEntry

	err := s.uow.Do(ctx, func(ctx context.Context, repos port.RepositorySet) error {
		user, err := repos.Users().GetForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}

		if user.ActiveTimer == nil {
			return ErrNotClockedIn
		}

		now := s.now().UTC()
		entry = domain.TimeEntry{
			ID:            uuid.NewString(),
			TenantID:      tenantID,
			UserID:        userID,
			WorkOrderID:   user.ActiveTimer.WorkOrderID,
			StartTime:     user.ActiveTimer.StartedAt,
			EndTime:       now,
			DurationHours: domain.DurationHours(user.ActiveTimer.StartedAt, now),
			EntryType:     domain.TimeEntryTypeClock,
			CreatedAt:     now,
		}

		if notes != nil {
			trimmed := strings.TrimSpace(*notes)
			if trimmed != "" {
				entry.Notes = &trimmed
			}
		}

		if err := repos.TimeEntries().Create(ctx, entry); err != nil {
			return fmt.Errorf("create time entry: %w", err)
		}

		if err := repos.Users().SetActiveTimer(ctx, userID, nil); err != nil {
			return fmt.Errorf("clear active timer: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		event := domain.ClockedOutEvent{
			UserID:        userID,
			TenantID:      tenantID,
			WorkOrderID:   entry.WorkOrderID,
			TimeEntryID:   entry.ID,
			StartTime:     entry.StartTime,
			EndTime:       entry.EndTime,
			DurationHours: entry.DurationHours,
		}
		if err := s.events.PublishClockedOut(ctx, event); err != nil {
			s.logger.Warn("publish clocked out event", zap.Error(err))
		}
	}

	return &entry, nil
}

// ActiveTimer returns the user's current timer, or nil when not clocked in.
func (s *TimeclockService) ActiveTimer(ctx context.Context, userID string) (*domain.ActiveTimer, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user.ActiveTimer, nil
}

// ListEntries returns closed time entries for the tenant, newest first.
func (s *TimeclockService) ListEntries(ctx context.Context, tenantID string, filter port.TimeEntryFilter) ([]domain.TimeEntry, error) {
	entries, err := s.entries.List(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("list time entries: %w", err)
	}
	return entries, nil
}
