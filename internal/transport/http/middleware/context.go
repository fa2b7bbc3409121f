package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/filipal/graph-platform-iam/internal/core/domain"
)

const (
	// TraceIDHeader carries the trace identifier between services.
	TraceIDHeader = "X-Trace-ID"
	// TraceIDKey is the gin context key for the trace identifier.
	TraceIDKey = "trace_id"
	// IdentityKey is the gin context key for the verified caller identity.
	IdentityKey = "identity"
)

// EnrichContext assigns a trace identifier to every request.
func EnrichContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		c.Next()
	}
}

// GetTraceID retrieves the trace identifier from the context.
func GetTraceID(c *gin.Context) string {
	if traceID, exists := c.Get(TraceIDKey); exists {
		if id, ok := traceID.(string); ok {
			return id
		}
	}
	return ""
}

// GetIdentity retrieves the verified caller identity stored by RequireAuth.
func GetIdentity(c *gin.Context) (domain.Identity, bool) {
	val, exists := c.Get(IdentityKey)
	if !exists {
		return domain.Identity{}, false
	}

	identity, ok := val.(domain.Identity)
	return identity, ok
}
