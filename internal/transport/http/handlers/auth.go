package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/filipal/graph-platform-iam/internal/transport/http/middleware"
	"github.com/filipal/graph-platform-iam/internal/usecase"
)

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	auth *usecase.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes binds authentication routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/login", h.Login)
	r.GET("/me", middleware.RequireAuth(h.auth), h.Me)
}

// Login godoc
// @Summary Authenticate with username or email and password
// @Description Verifies credentials and returns a bearer token embedding the account's current role.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.Identifier == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "identifier is required"))
		return
	}

	result, err := h.auth.Authenticate(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
			{Err: usecase.ErrRoleMissing, Status: http.StatusForbidden, Message: "account has no role assignment"},
		}, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   result.ExpiresIn,
		Account:     newAccountSummary(result.Account, result.Role),
	})
}

// Me godoc
// @Summary Return the authenticated account
// @Description Resolves the caller's account and current role from the store.
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AccountSummary
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	account, role, err := h.auth.Profile(c.Request.Context(), identity)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountUnknown, Status: http.StatusUnauthorized, Message: "account no longer exists"},
			{Err: usecase.ErrRoleMissing, Status: http.StatusForbidden, Message: "account has no role assignment"},
		}, http.StatusInternalServerError, "failed to resolve account")
		return
	}

	c.JSON(http.StatusOK, newAccountSummary(account, role))
}
