package port

import (
	"context"

	"github.com/fieldpoint/fieldservice/internal/core/domain"
)

// RoleRepository handles role and assignment persistence.
type RoleRepository interface {
	Create(ctx context.Context, role domain.Role) error
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByName(ctx context.Context, tenantID *string, name string) (*domain.Role, error)
	List(ctx context.Context, tenantID *string) ([]domain.Role, error)
	Update(ctx context.Context, role domain.Role) error
	Delete(ctx context.Context, id string) error

	ListByUser(ctx context.Context, userID string) ([]domain.Role, error)
	CountAssignments(ctx context.Context, roleID string) (int, error)
	AssignToUser(ctx context.Context, assignment domain.UserRoleAssignment) error
	RevokeFromUser(ctx context.Context, userID, roleID string) error
	ListAssignments(ctx context.Context, roleID string) ([]domain.UserRoleAssignment, error)
}
