package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fieldpoint/fieldservice/internal/core/port"
)

// ErrInvalidToken indicates the identity token failed verification.
var ErrInvalidToken = errors.New("jwt: invalid identity token")

// ErrExpiredToken indicates the identity token is past its expiry.
var ErrExpiredToken = errors.New("jwt: expired identity token")

// IdentityTokenClaims augments registered claims with tenant and role context.
// A token without a tenant_id claim belongs to a platform administrator.
type IdentityTokenClaims struct {
	TenantID *string  `json:"tenant_id,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// IdentityTokenVerifier verifies RS256 identity tokens issued by the external
// identity provider and implements port.TokenVerifier.
type IdentityTokenVerifier struct {
	keys     KeyProvider
	issuer   string
	audience string
	now      func() time.Time
}

var _ port.TokenVerifier = (*IdentityTokenVerifier)(nil)

// NewIdentityTokenVerifier constructs a verifier bound to a key provider.
func NewIdentityTokenVerifier(keys KeyProvider, issuer, audience string) *IdentityTokenVerifier {
	return &IdentityTokenVerifier{
		keys:     keys,
		issuer:   strings.TrimSpace(issuer),
		audience: strings.TrimSpace(audience),
		now:      time.Now,
	}
}

// WithTimeFunc overrides the clock used for expiry checks. Intended for tests.
func (v *IdentityTokenVerifier) WithTimeFunc(now func() time.Time) *IdentityTokenVerifier {
	if now != nil {
		v.now = now
	}
	return v
}

// Verify parses and validates token, returning its identity claims.
func (v *IdentityTokenVerifier) Verify(_ context.Context, token string) (*port.IdentityClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	if v.keys == nil {
		return nil, fmt.Errorf("jwt: key provider not configured")
	}

	claims := &IdentityTokenClaims{}

	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
	}
	if v.now != nil {
		parserOptions = append(parserOptions, jwt.WithTimeFunc(v.now))
	}
	if v.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		parserOptions = append(parserOptions, jwt.WithAudience(v.audience))
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		method, ok := t.Method.(*jwt.SigningMethodRSA)
		if !ok || method == nil {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		kid, _ := t.Header["kid"].(string)
		kid = strings.TrimSpace(kid)
		if kid == "" {
			return nil, fmt.Errorf("kid header not found")
		}

		return v.keys.GetVerificationKey(kid)
	}, parserOptions...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if parsed == nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID := strings.TrimSpace(claims.Subject)
	if userID == "" {
		return nil, ErrInvalidToken
	}

	var tenantID *string
	if claims.TenantID != nil {
		if trimmed := strings.TrimSpace(*claims.TenantID); trimmed != "" {
			tenantID = &trimmed
		}
	}

	return &port.IdentityClaims{
		UserID:   userID,
		TenantID: tenantID,
		RoleIDs:  normalizeRoles(claims.Roles),
	}, nil
}

func normalizeRoles(input []string) []string {
	if len(input) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, role := range input {
		role = strings.TrimSpace(role)
		if role == "" {
			continue
		}
		if _, exists := seen[role]; exists {
			continue
		}
		seen[role] = struct{}{}
		result = append(result, role)
	}

	if len(result) == 0 {
		return nil
	}

	return result
}
