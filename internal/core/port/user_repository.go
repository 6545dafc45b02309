package port

import (
	"context"

	"github.com/fieldpoint/fieldservice/internal/core/domain"
)

// UserRepository handles user persistence, including the embedded active
// timer columns.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetForUpdate reads the user row under a row-level lock. It is only
	// meaningful inside a unit of work and is how the at-most-one active
	// timer invariant survives concurrent clock-ins.
	GetForUpdate(ctx context.Context, id string) (*domain.User, error)
	// SetActiveTimer writes the embedded timer; nil clears it.
	SetActiveTimer(ctx context.Context, userID string, timer *domain.ActiveTimer) error
	ListTechnicians(ctx context.Context, tenantID string) ([]domain.User, error)
}
