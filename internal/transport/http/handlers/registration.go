package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/filipal/graph-platform-iam/internal/core/domain"
	"github.com/filipal/graph-platform-iam/internal/usecase"
)

// RegistrationHandler exposes the account registration endpoint.
type RegistrationHandler struct {
	registration *usecase.RegistrationService
}

func NewRegistrationHandler(registration *usecase.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registration: registration}
}

// RegisterRoutes binds registration endpoints.
func (h *RegistrationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/register", h.Register)
}

// Register godoc
// @Summary Register a new account
// @Description Creates an account with the provided credentials. New accounts always start with the viewer role.
// @Tags Registration
// @Accept json
// @Produce json
// @Param request body RegistrationRequest true "Registration request"
// @Success 201 {object} RegistrationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if req.Username == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "username is required"))
		return
	}

	account, err := h.registration.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrDuplicateIdentity, Status: http.StatusConflict, Message: "username or email already registered"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
		}, http.StatusInternalServerError, "failed to register account")
		return
	}

	c.JSON(http.StatusCreated, RegistrationResponse{
		Account: newAccountSummary(account, domain.RoleViewer),
		Message: "account created",
	})
}
