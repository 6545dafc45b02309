package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// TraceIDHeader is the HTTP header name for trace ID
	TraceIDHeader = "X-Trace-ID"
	// TraceIDKey is the context key for trace ID
	TraceIDKey = "trace_id"
	// UserIDKey is the context key for authenticated user ID
	UserIDKey = "user_id"

	requestMetaKey = "request_meta"
)

// RequestMeta carries the correlation identity of a request through the
// middleware chain and into access logs. UserID is filled in by
// RequirePermission once the caller is authenticated.
type RequestMeta struct {
	TraceID    string
	UserID     string
	TenantHint string
	ClientIP   string
	UserAgent  string
}

// Correlate assigns each request a trace ID, propagating an inbound
// X-Trace-ID when present, and records request metadata including the
// tenant a platform admin targets through X-Tenant-ID.
func Correlate() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := strings.TrimSpace(c.GetHeader(TraceIDHeader))
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		c.Set(requestMetaKey, &RequestMeta{
			TraceID:    traceID,
			TenantHint: strings.TrimSpace(c.GetHeader(TenantIDHeader)),
			ClientIP:   c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		})

		c.Next()
	}
}

// GetTraceID retrieves the trace ID from the context
func GetTraceID(c *gin.Context) string {
	return c.GetString(TraceIDKey)
}

// RequestMetaFrom returns the metadata recorded by Correlate.
func RequestMetaFrom(c *gin.Context) *RequestMeta {
	if val, exists := c.Get(requestMetaKey); exists {
		if meta, ok := val.(*RequestMeta); ok {
			return meta
		}
	}
	return &RequestMeta{}
}
