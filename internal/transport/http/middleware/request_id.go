package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/filipal/graph-platform-iam/internal/infra/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID injects a correlation identifier into the context and headers.
// An inbound id is honored only when it is a UUID; anything else is replaced
// so arbitrary caller strings never reach the logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.NewString()
		}

		c.Writer.Header().Set(requestIDHeader, reqID)
		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey{}, reqID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
