package port

import (
	"context"
	"time"

	"github.com/fieldpoint/fieldservice/internal/core/domain"
)

// WorkOrderFilter narrows work order listings.
type WorkOrderFilter struct {
	Status       *domain.WorkOrderStatus
	TechnicianID *string
	CustomerID   *string
	Limit        int
	Offset       int
}

// WorkOrderRepository handles work order persistence. Reads are tenant
// scoped: a work order belonging to another tenant is indistinguishable
// from one that does not exist.
type WorkOrderRepository interface {
	Create(ctx context.Context, wo domain.WorkOrder) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.WorkOrder, error)
	// GetForUpdate reads the work order under a row-level lock for
	// transition mutations inside a unit of work.
	GetForUpdate(ctx context.Context, tenantID, id string) (*domain.WorkOrder, error)
	Update(ctx context.Context, wo domain.WorkOrder) error
	List(ctx context.Context, tenantID string, filter WorkOrderFilter) ([]domain.WorkOrder, error)
	// ListUnscheduled returns the pool of work orders awaiting dispatch:
	// no technician and status new or on-hold.
	ListUnscheduled(ctx context.Context, tenantID string) ([]domain.WorkOrder, error)
	// ListForTechnicianDay returns a technician's assignments whose
	// scheduled time falls on the given calendar day.
	ListForTechnicianDay(ctx context.Context, tenantID, technicianID string, day time.Time) ([]domain.WorkOrder, error)
}
