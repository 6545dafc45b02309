package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fieldpoint/fieldservice/internal/core/domain"
	"github.com/fieldpoint/fieldservice/internal/core/port"
)

// PermissionWildcard requires only a verified identity: the module check is
// skipped but tenant isolation still applies.
const PermissionWildcard = "*"

var (
	// ErrUnauthenticated indicates a missing or invalid identity token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates the caller is authenticated but lacks the
	// required permission or targets another tenant's data.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidPermissionSpec indicates a malformed module:action string.
	ErrInvalidPermissionSpec = errors.New("invalid permission spec")
)

// AuthorizationResult carries the resolved identity and tenant context for
// an allowed operation.
type AuthorizationResult struct {
	UserID       string
	HomeTenantID *string
	// TenantID is the effective tenant for the operation: the caller's
	// home tenant, or the adopted target tenant for platform admins.
	// Nil only for platform admins acting at platform scope.
	TenantID    *string
	Permissions domain.EffectivePermissions
}

// PlatformAdmin reports whether the caller has no home tenant.
func (r *AuthorizationResult) PlatformAdmin() bool {
	return r.HomeTenantID == nil
}

// AuthorizationService is the single choke point every privileged operation
// passes through before touching persisted state.
type AuthorizationService struct {
	verifier port.TokenVerifier
	roles    port.RoleRepository
	logger   *zap.Logger
}

// NewAuthorizationService constructs an AuthorizationService.
func NewAuthorizationService(verifier port.TokenVerifier, roles port.RoleRepository, logger *zap.Logger) *AuthorizationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthorizationService{verifier: verifier, roles: roles, logger: logger}
}

// Authorize verifies the caller's identity token, enforces tenant isolation
// against targetTenantID, and checks the required module:action permission.
// It fails closed: any verification or lookup failure denies the request.
func (s *AuthorizationService) Authorize(ctx context.Context, token, required string, targetTenantID *string) (*AuthorizationResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	result := &AuthorizationResult{
		UserID:       claims.UserID,
		HomeTenantID: claims.TenantID,
		TenantID:     claims.TenantID,
	}

	// Tenant isolation applies to every permission spec, the wildcard
	// included. Only a platform admin may adopt a foreign tenant.
	if targetTenantID != nil {
		switch {
		case claims.TenantID == nil:
			result.TenantID = targetTenantID
		case *claims.TenantID != *targetTenantID:
			s.logger.Warn("cross-tenant access denied",
				zap.String("user_id", claims.UserID),
				zap.String("target_tenant", *targetTenantID))
			return nil, ErrForbidden
		}
	}

	if required == PermissionWildcard {
		return result, nil
	}

	module, action, ok := strings.Cut(required, ":")
	if !ok || module == "" || action == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPermissionSpec, required)
	}

	effective, err := s.EffectivePermissions(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("aggregate permissions: %w", err)
	}
	result.Permissions = effective

	if !effective.Allows(module, action) {
		return nil, ErrForbidden
	}

	return result, nil
}

// EffectivePermissions recomputes the caller's aggregated capability map
// from their currently assigned roles. It is recomputed on every check so
// a permission change is never served from a stale cache.
func (s *AuthorizationService) EffectivePermissions(ctx context.Context, userID string) (domain.EffectivePermissions, error) {
	roles, err := s.roles.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list roles for user: %w", err)
	}
	return domain.AggregatePermissions(roles), nil
}
