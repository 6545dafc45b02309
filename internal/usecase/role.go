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
	"github.com/fieldpoint/fieldservice/internal/repository"
)

var (
	// ErrRoleExists indicates a role with the provided name already exists in the tenant.
	ErrRoleExists = errors.New("role already exists")
	// ErrRoleInUse indicates the role is still referenced by user assignments.
	ErrRoleInUse = errors.New("role has active assignments")
	// ErrInvalidRoleName indicates the role name is empty or malformed.
	ErrInvalidRoleName = errors.New("invalid role name")
)

// CreateRoleInput captures the payload for creating a role.
type CreateRoleInput struct {
	TenantID    *string
	Name        string
	Description *string
	Permissions map[string]domain.PermissionGrant
}

// UpdateRoleInput captures the payload for updating a role.
type UpdateRoleInput struct {
	ID          string
	Name        *string
	Description *string
	Permissions map[string]domain.PermissionGrant
}

// RoleService manages roles and user-role assignments.
type RoleService struct {
	roles  port.RoleRepository
	events port.EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

// NewRoleService constructs a RoleService.
func NewRoleService(roles port.RoleRepository, events port.EventPublisher) *RoleService {
	return &RoleService{
		roles:  roles,
		events: events,
		logger: zap.NewNop(),
		now:    time.Now,
	}
}

// WithLogger attaches a logger for audit trails.
func (s *RoleService) WithLogger(logger *zap.Logger) *RoleService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// CreateRole provisions a new role within the tenant (or at platform scope
// when TenantID is nil).
func (s *RoleService) CreateRole(ctx context.Context, input CreateRoleInput) (*domain.Role, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidRoleName
	}

	if existing, err := s.roles.GetByName(ctx, input.TenantID, name); err == nil && existing != nil {
		return nil, ErrRoleExists
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup role by name: %w", err)
	}

	now := s.now().UTC()
	role := domain.Role{
		ID:          uuid.NewString(),
		TenantID:    input.TenantID,
		Name:        name,
		Permissions: input.Permissions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if role.Permissions == nil {
		role.Permissions = make(map[string]domain.PermissionGrant)
	}

	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		if trimmed != "" {
			role.Description = &trimmed
		}
	}

	if err := s.roles.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}

	return &role, nil
}

// GetRole retrieves a role by ID.
func (s *RoleService) GetRole(ctx context.Context, roleID string) (*domain.Role, error) {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return nil, fmt.Errorf("role id is required")
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("get role: %w", err)
	}

	return role, nil
}

// ListRoles returns the roles visible to a tenant, platform templates
// included when tenantID is nil.
func (s *RoleService) ListRoles(ctx context.Context, tenantID *string) ([]domain.Role, error) {
	roles, err := s.roles.List(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// UpdateRole modifies an existing role. Live assignments pick up the new
// permission map on their next authorization check because effective
// permissions are recomputed per request.
func (s *RoleService) UpdateRole(ctx context.Context, input UpdateRoleInput) (*domain.Role, error) {
	roleID := strings.TrimSpace(input.ID)
	if roleID == "" {
		return nil, fmt.Errorf("role id is required")
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("get role: %w", err)
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, ErrInvalidRoleName
		}
		role.Name = trimmed
	}

	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		if trimmed == "" {
			role.Description = nil
		} else {
			role.Description = &trimmed
		}
	}

	if input.Permissions != nil {
		role.Permissions = input.Permissions
	}

	role.UpdatedAt = s.now().UTC()

	if err := s.roles.Update(ctx, *role); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	return role, nil
}

// DeleteRole removes a role. Deletion is refused with ErrRoleInUse while
// any user-role assignment still references it.
func (s *RoleService) DeleteRole(ctx context.Context, roleID string) error {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return fmt.Errorf("role id is required")
	}

	count, err := s.roles.CountAssignments(ctx, roleID)
	if err != nil {
		return fmt.Errorf("count role assignments: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %d assignments", ErrRoleInUse, count)
	}

	if err := s.roles.Delete(ctx, roleID); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}

	return nil
}

// AssignRole links a role to a user.
func (s *RoleService) AssignRole(ctx context.Context, actorID, userID, roleID string) error {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return fmt.Errorf("get role: %w", err)
	}

	assignment := domain.UserRoleAssignment{
		UserID:     userID,
		RoleID:     role.ID,
		TenantID:   role.TenantID,
		AssignedAt: s.now().UTC(),
	}

	if err := s.roles.AssignToUser(ctx, assignment); err != nil {
		return fmt.Errorf("assign role: %w", err)
	}

	if s.events != nil {
		event := domain.RolesAssignedEvent{
			UserID:     userID,
			TenantID:   role.TenantID,
			RoleIDs:    []string{role.ID},
			AssignedBy: actorID,
			AssignedAt: assignment.AssignedAt,
		}
		if err := s.events.PublishRolesAssigned(ctx, event); err != nil {
			s.logger.Warn("publish roles assigned event", zap.Error(err))
		}
	}

	return nil
}

// RevokeRole removes a role assignment from a user.
func (s *RoleService) RevokeRole(ctx context.Context, actorID, userID, roleID string) error {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return fmt.Errorf("get role: %w", err)
	}

	if err := s.roles.RevokeFromUser(ctx, userID, roleID); err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}

	if s.events != nil {
		event := domain.RolesRevokedEvent{
			UserID:    userID,
			TenantID:  role.TenantID,
			RoleIDs:   []string{roleID},
			RevokedBy: actorID,
			RevokedAt: s.now().UTC(),
		}
		if err := s.events.PublishRolesRevoked(ctx, event); err != nil {
			s.logger.Warn("publish roles revoked event", zap.Error(err))
		}
	}

	return nil
}
