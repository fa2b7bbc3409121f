package logger

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	lg   *zap.Logger
	once sync.Once
)

// New returns a singleton zap.Logger configured for structured logging.
func New(env string) (*zap.Logger, error) {
	var err error
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		if env != "production" {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}

		lg, err = cfg.Build()
	})

	return lg, err
}

// WithContext attaches request scoped fields to the logger.
func WithContext(ctx context.Context) *zap.Logger {
	if lg == nil {
		lz, _ := zap.NewDevelopment()
		return lz
	}

	if ctx == nil {
		return lg
	}

	return lg.With(zap.String("request_id", requestIDFromContext(ctx)))
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if val, ok := ctx.Value(RequestIDKey{}).(string); ok {
		return val
	}
	return ""
}

// RequestIDKey is used to store a request identifier on the context.
type RequestIDKey struct{}

var emailRegex = regexp.MustCompile(`^([^@]{1,3})[^@]*(@.+)$`)

// MaskEmail masks email addresses, showing the first 3 characters and domain.
// Example: john.doe@example.com -> joh***@example.com
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}

	matches := emailRegex.FindStringSubmatch(email)
	if len(matches) == 3 {
		return matches[1] + "***" + matches[2]
	}

	parts := strings.SplitN(email, "@", 2)
	if len(parts) == 2 {
		return "***@" + parts[1]
	}

	return "***"
}

// MaskIP performs partial IP masking, keeping the first two IPv4 octets or
// the first four IPv6 groups.
func MaskIP(ip string) string {
	if ip == "" {
		return ""
	}

	if strings.Contains(ip, ".") {
		parts := strings.Split(ip, ".")
		if len(parts) == 4 {
			return parts[0] + "." + parts[1] + ".*.*"
		}
	}

	if strings.Contains(ip, ":") {
		parts := strings.Split(ip, ":")
		if len(parts) >= 4 {
			return strings.Join(parts[:4], ":") + ":*:*:*:*"
		}
	}

	return "***"
}

// MaskString shows the first and last 2 characters of a sensitive string.
func MaskString(s string) string {
	if s == "" {
		return ""
	}

	length := len(s)
	if length <= 4 {
		return "***"
	}

	return s[:2] + "***" + s[length-2:]
}
