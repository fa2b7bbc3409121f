package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// The API only serves GET, POST, PUT and DELETE; credentials travel in the
// Authorization header, never in cookies, so Allow-Credentials is omitted.
const (
	corsAllowedMethods = "GET,POST,PUT,DELETE,OPTIONS"
	corsAllowedHeaders = "Origin,Content-Type,Accept,Authorization,X-Request-ID"
)

// CORS adds Cross-Origin Resource Sharing headers to responses.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	originsMap := make(map[string]bool)
	allowAll := false

	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
			break
		}
		originsMap[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if allowAll {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if originsMap[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", corsAllowedMethods)
			c.Header("Access-Control-Allow-Headers", corsAllowedHeaders)
			c.Header("Access-Control-Max-Age", "86400")

			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
