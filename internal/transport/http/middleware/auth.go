package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fieldpoint/fieldservice/internal/usecase"
)

const (
	// TenantIDHeader carries the tenant a platform admin acts on behalf of.
	TenantIDHeader = "X-Tenant-ID"
	// AuthResultKey is the context key for the resolved authorization result.
	AuthResultKey = "auth_result"
)

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// bearerToken extracts the Bearer token from the Authorization header.
func bearerToken(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "missing authorization header"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", "invalid authorization format: expected 'Bearer <token>'"
	}

	if !strings.EqualFold(parts[0], "Bearer") {
		return "", "invalid authorization format: must start with 'Bearer'"
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", "missing identity token"
	}

	return token, ""
}

// targetTenantID resolves the tenant the request operates on. A platform
// admin names it through the X-Tenant-ID header; tenant users always act
// on their home tenant, which Authorize enforces.
func targetTenantID(c *gin.Context) *string {
	if header := strings.TrimSpace(c.GetHeader(TenantIDHeader)); header != "" {
		return &header
	}
	return nil
}

// RequirePermission authorizes the request against a module:action
// permission spec before the handler runs.
func RequirePermission(authz *usecase.AuthorizationService, permission string, metrics *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, problem := bearerToken(c)
		if problem != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, problem))
			return
		}

		result, err := authz.Authorize(c.Request.Context(), token, permission, targetTenantID(c))
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrUnauthenticated):
				metrics.RecordAuthzDecision(permission, "unauthenticated")
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "invalid identity token"))
			case errors.Is(err, usecase.ErrForbidden):
				metrics.RecordAuthzDecision(permission, "denied")
				c.AbortWithStatusJSON(http.StatusForbidden,
					newErrorResponse(c, "insufficient permissions"))
			default:
				metrics.RecordAuthzDecision(permission, "error")
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					newErrorResponse(c, "authorization failed"))
			}
			return
		}

		metrics.RecordAuthzDecision(permission, "allowed")

		c.Set(UserIDKey, result.UserID)
		c.Set(AuthResultKey, result)

		RequestMetaFrom(c).UserID = result.UserID

		c.Next()
	}
}

// GetAuthResult retrieves the authorization result placed by RequirePermission.
func GetAuthResult(c *gin.Context) (*usecase.AuthorizationResult, bool) {
	val, exists := c.Get(AuthResultKey)
	if !exists {
		return nil, false
	}

	result, ok := val.(*usecase.AuthorizationResult)
	return result, ok
}

// GetAuthenticatedUserID retrieves the user ID from context (helper for handlers)
func GetAuthenticatedUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}

	if id, ok := userID.(string); ok {
		return id, true
	}

	return "", false
}
