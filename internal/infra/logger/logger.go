package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDKey is used to store a request identifier on the context.
type RequestIDKey struct{}

// New builds the service logger. Production gets JSON output with ISO 8601
// timestamps; every other environment gets the colored console encoder.
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg.Build()
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg.Build()
}

// MaskIP hides all but the leading octet or hextet of an address before it
// reaches the logs.
func MaskIP(ip string) string {
	if ip == "" {
		return ""
	}

	sep := "."
	if strings.Contains(ip, ":") {
		sep = ":"
	}

	head, _, found := strings.Cut(ip, sep)
	if !found {
		return "***"
	}
	return head + sep + "***"
}
