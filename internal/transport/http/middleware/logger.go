package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appLogger "github.com/fieldpoint/fieldservice/internal/infra/logger"
)

// Logger emits one access-log line per request, levelled by response class.
// Client IPs are masked before logging.
func Logger(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		meta := RequestMetaFrom(c)
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.String("trace_id", meta.TraceID),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", appLogger.MaskIP(meta.ClientIP)),
			zap.Int("bytes", c.Writer.Size()),
		}

		if meta.UserID != "" {
			fields = append(fields, zap.String("user_id", meta.UserID))
		}
		if meta.TenantHint != "" {
			fields = append(fields, zap.String("tenant_hint", meta.TenantHint))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request failed", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request rejected", fields...)
		default:
			log.Info("request completed", fields...)
		}
	}
}
