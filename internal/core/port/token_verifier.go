package port

import "context"

// IdentityClaims are the verified claims carried by an identity token.
// A nil TenantID denotes a platform administrator.
type IdentityClaims struct {
	UserID   string
	TenantID *string
	RoleIDs  []string
}

// TokenVerifier validates an identity token issued by the external identity
// provider and extracts its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*IdentityClaims, error)
}
