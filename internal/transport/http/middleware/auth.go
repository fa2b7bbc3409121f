package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/filipal/graph-platform-iam/internal/core/domain"
	"github.com/filipal/graph-platform-iam/internal/infra/security"
	"github.com/filipal/graph-platform-iam/internal/usecase"
)

// ErrorResponse matches the handlers.ErrorResponse structure.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// RequireAuth validates the Authorization header and stores the verified
// identity in the request context.
func RequireAuth(authService *usecase.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid authorization format: expected 'Bearer <token>'"))
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing access token"))
			return
		}

		identity, err := authService.VerifyToken(token)
		if err != nil {
			// Expired and invalid tokens get the same response so callers
			// cannot tell them apart.
			if errors.Is(err, security.ErrTokenExpired) || errors.Is(err, security.ErrTokenInvalid) {
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "invalid or expired access token"))
			} else {
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					newErrorResponse(c, "authentication failed"))
			}
			return
		}

		c.Set(IdentityKey, identity)

		c.Next()
	}
}

// RequireRole checks that the authenticated caller holds one of the listed
// roles. The check uses the role embedded in the token, not current store
// state: a role change takes effect when a fresh token is issued.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden,
			newErrorResponse(c, "insufficient permissions"))
	}
}
