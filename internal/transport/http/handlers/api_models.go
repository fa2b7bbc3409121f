package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/filipal/graph-platform-iam/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// AccountSummary describes a minimal view of an account returned by the API.
type AccountSummary struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RegistrationRequest defines the account registration payload.
type RegistrationRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegistrationResponse contains the newly created account.
type RegistrationResponse struct {
	Account AccountSummary `json:"account"`
	Message string         `json:"message,omitempty"`
}

// LoginRequest defines the payload for the login endpoint. Identifier is
// either a username or an email, matched exactly.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int            `json:"expires_in"`
	Account     AccountSummary `json:"account"`
}

// RoleChangeRequest defines the payload for the role elevation endpoint.
type RoleChangeRequest struct {
	Role string `json:"role" binding:"required"`
}

// RoleResponse returns the role held by an account.
type RoleResponse struct {
	AccountID int64  `json:"account_id"`
	Role      string `json:"role"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func newAccountSummary(account domain.Account, role domain.Role) AccountSummary {
	return AccountSummary{
		ID:        account.ID,
		Username:  account.Username,
		Email:     account.Email,
		Role:      role.String(),
		CreatedAt: account.CreatedAt,
	}
}
