package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/fieldpoint/fieldservice/internal/core/domain"
	"github.com/fieldpoint/fieldservice/internal/core/port"
)

// Profile is the payload returned to a client building its own UI: the
// user, their roles, and the aggregated capability map.
type Profile struct {
	User        *domain.User
	Roles       []domain.Role
	Permissions domain.EffectivePermissions
}

// UserService exposes user profile reads.
type UserService struct {
	users port.UserRepository
	roles port.RoleRepository
}

// NewUserService constructs a UserService.
func NewUserService(users port.UserRepository, roles port.RoleRepository) *UserService {
	return &UserService{users: users, roles: roles}
}

// GetProfile returns the user together with freshly aggregated permissions.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	roles, err := s.roles.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list roles for user: %w", err)
	}

	return &Profile{
		User:        user,
		Roles:       roles,
		Permissions: domain.AggregatePermissions(roles),
	}, nil
}

// ListTechnicians returns the technicians of a tenant for the scheduling board.
func (s *UserService) ListTechnicians(ctx context.Context, tenantID string) ([]domain.User, error) {
	technicians, err := s.users.ListTechnicians(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list technicians: %w", err)
	}
	return technicians, nil
}
