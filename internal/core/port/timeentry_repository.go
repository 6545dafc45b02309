package port

import (
	"context"
	"time"

	"github.com/fieldpoint/fieldservice/internal/core/domain"
)

// TimeEntryFilter narrows time entry listings.
type TimeEntryFilter struct {
	UserID      *string
	WorkOrderID *string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// TimeEntryRepository persists immutable time entries. There is
// deliberately no update operation.
type TimeEntryRepository interface {
	Create(ctx context.Context, entry domain.TimeEntry) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.TimeEntry, error)
	List(ctx context.Context, tenantID string, filter TimeEntryFilter) ([]domain.TimeEntry, error)
}
