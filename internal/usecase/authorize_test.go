package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fieldpoint/fieldservice/internal/core/domain"
	"github.com/fieldpoint/fieldservice/internal/core/port"
)

func dispatcherRoleRepo(userID string) *roleRepoMock {
	now := time.Now().UTC()
	tenant := "tenant-1"
	return &roleRepoMock{
		roles: map[string]domain.Role{
			"role-dispatcher": {
				ID:       "role-dispatcher",
				TenantID: &tenant,
				Name:     "dispatcher",
				Permissions: map[string]domain.PermissionGrant{
					"work-orders": domain.StructuredGrant(domain.ModulePermission{CanAccess: true, View: true, Edit: true}),
					"dispatch":    domain.FullAccessGrant(),
				},
				CreatedAt: now,
				UpdatedAt: now,
			},
		},
		userRoles: map[string][]string{userID: {"role-dispatcher"}},
	}
}

func TestAuthorizationService_Authorize_Success(t *testing.T) {
	tenant := "tenant-1"
	verifier := &verifierMock{claims: &port.IdentityClaims{UserID: "user-1", TenantID: &tenant}}
	svc := NewAuthorizationService(verifier, dispatcherRoleRepo("user-1"), nil)

	result, err := svc.Authorize(context.Background(), "token", "work-orders:view", nil)
	if err != nil {
		t.Fatalf("Authorize returned error: %v", err)
	}
	if result.UserID != "user-1" {
		t.Fatalf("expected user-1, got %s", result.UserID)
	}
	if result.TenantID == nil || *result.TenantID != tenant {
		t.Fatalf("expected tenant context preserved")
	}
	if result.PlatformAdmin() {
		t.Fatalf("tenant-bound caller must not be a platform admin")
	}
}

func TestAuthorizationService_Authorize_MissingPermissionDenied(t *testing.T) {
	tenant := "tenant-1"
	verifier := &verifierMock{claims: &port.IdentityClaims{UserID: "user-1", TenantID: &tenant}}
	svc := NewAuthorizationService(verifier, dispatcherRoleRepo("user-1"), nil)

	_, err := svc.Authorize(context.Background(), "token", "work-orders:delete", nil)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuthorizationService_Authorize_EmptyTokenUnauthenticated(t *testing.T) {
	svc := NewAuthorizationService(&verifierMock{}, &roleRepoMock{}, nil)

	_, err := svc.Authorize(context.Background(), "  ", "work-orders:view", nil)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthorizationService_Authorize_VerifierFailureUnauthenticated(t *testing.T) {
	verifier := &verifierMock{err: errors.New("signature mismatch")}
	svc := NewAuthorizationService(verifier, &roleRepoMock{}, nil)

	_, err := svc.Authorize(context.Background(), "token", "work-orders:view", nil)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthorizationService_Authorize_CrossTenantDeniedBeforePermissionCheck(t *testing.T) {
	tenant := "tenant-1"
	verifier := &verifierMock{claims: &port.IdentityClaims{UserID: "user-1", TenantID: &tenant}}
	// ListByUser failing would surface if the permission check ran first.
	roles := &roleRepoMock{listErr: errors.New("unreachable")}
	svc := NewAuthorizationService(verifier, roles, nil)

	_, err := svc.Authorize(context.Background(), "token", "work-orders:view", strPtr("tenant-2"))
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuthorizationService_Authorize_CrossTenantDeniedForWildcard(t *testing.T) {
	tenant := "tenant-1"
	verifier := &verifierMock{claims: &port.IdentityClaims{UserID: "user-1", TenantID: &tenant}}
	svc := NewAuthorizationService(verifier, &roleRepoMock{}, nil)

	_, err := svc.Authorize(context.Background(), "token", PermissionWildcard, strPtr("tenant-2"))
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("tenant isolation must apply to the wildcard, got %v", err)
	}
}

func TestAuthorizationService_Authorize_PlatformAdminAdoptsTargetTenant(t *testing.T) {
	verifier := &verifierMock{claims: &port.IdentityClaims{UserID: "admin-1", TenantID: nil}}
	roles := &roleRepoMock{
		roles: map[string]domain.Role{
			"role-platform": {
				ID:   "role-platform",
				Name: "platform-admin",
				Permissions: map[string]domain.PermissionGrant{
					"work-orders": domain.FullAccessGrant(),
				},
			},
		},
		userRoles: map[string][]string{"admin-1": {"role-platform"}},
	}
	svc := NewAuthorizationService(verifier, roles, nil)

	result, err := svc.Authorize(context.Background(), "token", "work-orders:edit", strPtr("tenant-9"))
	if err != nil {
		t.Fatalf("Authorize returned error: %v", err)
	}
	if !result.PlatformAdmin() {
		t.Fatalf("expected platform admin")
	}
	if result.TenantID == nil || *result.TenantID != "tenant-9" {
		t.Fatalf("expected adopted tenant-9, got %v", result.TenantID)
	}
	if result.HomeTenantID != nil {
		t.Fatalf("home tenant must stay nil for platform admins")
	}
}

func TestAuthorizationService_Authorize_WildcardSkipsPermissionCheck(t *testing.T) {
	tenant := "tenant-1"
	verifier := &verifierMock{claims: &port.IdentityClaims{UserID: "user-1", TenantID: &tenant}}
	roles := &roleRepoMock{listErr: errors.New("unreachable")}
	svc := NewAuthorizationService(verifier, roles, nil)

	result, err := svc.Authorize(context.Background(), "token", PermissionWildcard, nil)
	if err != nil {
		t.Fatalf("Authorize returned error: %v", err)
	}
	if result.UserID != "user-1" {
		t.Fatalf("expected identity resolved")
	}
}

func TestAuthorizationService_Authorize_MalformedSpec(t *testing.T) {
	tenant := "tenant-1"
	verifier := &verifierMock{claims: &port.IdentityClaims{UserID: "user-1", TenantID: &tenant}}
	svc := NewAuthorizationService(verifier, dispatcherRoleRepo("user-1"), nil)

	for _, spec := range []string{"work-orders", "work-orders:", ":view", ""} {
		if _, err := svc.Authorize(context.Background(), "token", spec, nil); !errors.Is(err, ErrInvalidPermissionSpec) {
			t.Fatalf("spec %q: expected ErrInvalidPermissionSpec, got %v", spec, err)
		}
	}
}

func TestAuthorizationService_Authorize_RoleLookupFailureDenies(t *testing.T) {
	tenant := "tenant-1"
	verifier := &verifierMock{claims: &port.IdentityClaims{UserID: "user-1", TenantID: &tenant}}
	roles := &roleRepoMock{listErr: errors.New("connection reset")}
	svc := NewAuthorizationService(verifier, roles, nil)

	if _, err := svc.Authorize(context.Background(), "token", "work-orders:view", nil); err == nil {
		t.Fatalf("lookup failure must fail closed")
	}
}

func TestAuthorizationService_EffectivePermissions_FreshPerCall(t *testing.T) {
	tenant := "tenant-1"
	roles := dispatcherRoleRepo("user-1")
	verifier := &verifierMock{claims: &port.IdentityClaims{UserID: "user-1", TenantID: &tenant}}
	svc := NewAuthorizationService(verifier, roles, nil)

	if _, err := svc.Authorize(context.Background(), "token", "work-orders:view", nil); err != nil {
		t.Fatalf("initial check failed: %v", err)
	}

	// Revoking the role changes the outcome on the very next check.
	roles.userRoles["user-1"] = nil

	if _, err := svc.Authorize(context.Background(), "token", "work-orders:view", nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden after revocation, got %v", err)
	}
}
