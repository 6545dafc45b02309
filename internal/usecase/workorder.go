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

// ErrInvalidWorkOrder indicates a malformed work order payload.
var ErrInvalidWorkOrder = errors.New("invalid work order payload")

// CreateWorkOrderInput captures the payload for creating a work order.
type CreateWorkOrderInput struct {
	CustomerID  string
	LocationID  string
	EquipmentID *string
	Summary     string
	Priority    domain.WorkOrderPriority
}

// TransitionInput carries the side-effect fields for a status transition.
type TransitionInput struct {
	TechnicianID *string
	ScheduledAt  *time.Time
}

// WorkOrderService drives the work order lifecycle state machine.
type WorkOrderService struct {
	uow        port.UnitOfWork
	workOrders port.WorkOrderRepository
	events     port.EventPublisher
	logger     *zap.Logger
	now        func() time.Time
}

// NewWorkOrderService constructs a WorkOrderService.
func NewWorkOrderService(uow port.UnitOfWork, workOrders port.WorkOrderRepository, events port.EventPublisher) *WorkOrderService {
	return &WorkOrderService{
		uow:        uow,
		workOrders: workOrders,
		events:     events,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
}

// WithLogger attaches a logger for audit trails.
func (s *WorkOrderService) WithLogger(logger *zap.Logger) *WorkOrderService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// CreateWorkOrder provisions a new work order in status "new".
func (s *WorkOrderService) CreateWorkOrder(ctx context.Context, tenantID, actorID string, input CreateWorkOrderInput) (*domain.WorkOrder, error) {
	customerID := strings.TrimSpace(input.CustomerID)
	locationID := strings.TrimSpace(input.LocationID)
	if customerID == "" || locationID == "" {
		return nil, fmt.Errorf("%w: customer and location are required", ErrInvalidWorkOrder)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.WorkOrderPriorityMedium
	}

	now := s.now().UTC()
	wo := domain.WorkOrder{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		CustomerID:  customerID,
		LocationID:  locationID,
		EquipmentID: input.EquipmentID,
		Status:      domain.WorkOrderStatusNew,
		Priority:    priority,
		Summary:     strings.TrimSpace(input.Summary),
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.workOrders.Create(ctx, wo); err != nil {
		return nil, fmt.Errorf("create work order: %w", err)
	}

	return &wo, nil
}

// GetWorkOrder retrieves a work order within the tenant.
func (s *WorkOrderService) GetWorkOrder(ctx context.Context, tenantID, id string) (*domain.WorkOrder, error) {
	wo, err := s.workOrders.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("get work order: %w", err)
	}
	return wo, nil
}

// ListWorkOrders returns work orders matching the filter within the tenant.
func (s *WorkOrderService) ListWorkOrders(ctx context.Context, tenantID string, filter port.WorkOrderFilter) ([]domain.WorkOrder, error) {
	orders, err := s.workOrders.List(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	return orders, nil
}

// TransitionStatus applies a status change and its side-effect fields in a
// single transaction. Re-asserting the current status is a no-op success.
func (s *WorkOrderService) TransitionStatus(ctx context.Context, tenantID, actorID, workOrderID string, next domain.WorkOrderStatus, input TransitionInput) (*domain.WorkOrder, error) {
	var (
		updated *domain.WorkOrder
		from    domain.WorkOrderStatus
		noOp    bool
	)

	err := s.uow.Do(ctx, func(ctx context.Context, repos port.RepositorySet) error {
		wo, err := repos.WorkOrders().GetForUpdate(ctx, tenantID, workOrderID)
		if err != nil {
			return fmt.Errorf("get work order: %w", err)
		}

		from = wo.Status
		if wo.Status == next {
			noOp = true
			updated = wo
			return nil
		}

		effects := domain.TransitionEffects{
			TechnicianID: input.TechnicianID,
			ScheduledAt:  input.ScheduledAt,
			Now:          s.now().UTC(),
		}
		if err := wo.Transition(next, effects); err != nil {
			return err
		}

		if err := repos.WorkOrders().Update(ctx, *wo); err != nil {
			return fmt.Errorf("update work order: %w", err)
		}

		updated = wo
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !noOp && s.events != nil {
		event := domain.WorkOrderTransitionedEvent{
			WorkOrderID:  updated.ID,
			TenantID:     tenantID,
			ActorID:      actorID,
			FromStatus:   from,
			ToStatus:     updated.Status,
			TechnicianID: updated.AssignedTechnicianID,
			OccurredAt:   updated.UpdatedAt,
		}
		if err := s.events.PublishWorkOrderTransitioned(ctx, event); err != nil {
			s.logger.Warn("publish work order transitioned event", zap.Error(err))
		}
	}

	return updated, nil
}
