package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/filipal/graph-platform-iam/internal/core/domain"
	"github.com/filipal/graph-platform-iam/internal/transport/http/middleware"
	"github.com/filipal/graph-platform-iam/internal/usecase"
)

// RoleHandler exposes administrative role management endpoints.
type RoleHandler struct {
	roles *usecase.RoleService
}

func NewRoleHandler(roles *usecase.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

// RegisterRoutes binds role endpoints. The group is expected to carry the
// auth and admin role middleware already.
func (h *RoleHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/:accountID", h.GetRole)
	r.PUT("/:accountID", h.ChangeRole)
}

// GetRole godoc
// @Summary Get the role held by an account
// @Tags Roles
// @Produce json
// @Security BearerAuth
// @Param accountID path int true "Account ID"
// @Success 200 {object} RoleResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/roles/{accountID} [get]
func (h *RoleHandler) GetRole(c *gin.Context) {
	accountID, ok := parseAccountID(c)
	if !ok {
		return
	}

	role, err := h.roles.GetRole(c.Request.Context(), accountID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountUnknown, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "failed to resolve role")
		return
	}

	c.JSON(http.StatusOK, RoleResponse{AccountID: accountID, Role: role.String()})
}

// ChangeRole godoc
// @Summary Replace the role held by an account
// @Description Changes the target account's role. Outstanding tokens keep their issued role until expiry.
// @Tags Roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param accountID path int true "Account ID"
// @Param request body RoleChangeRequest true "Role change request"
// @Success 200 {object} RoleResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/roles/{accountID} [put]
func (h *RoleHandler) ChangeRole(c *gin.Context) {
	accountID, ok := parseAccountID(c)
	if !ok {
		return
	}

	var req RoleChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid role payload"))
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown role"))
		return
	}

	actor, _ := middleware.GetIdentity(c)

	if err := h.roles.ChangeRole(c.Request.Context(), actor, accountID, role); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountUnknown, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "failed to change role")
		return
	}

	c.JSON(http.StatusOK, RoleResponse{AccountID: accountID, Role: role.String()})
}

func parseAccountID(c *gin.Context) (int64, bool) {
	raw := c.Param("accountID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid account id"))
		return 0, false
	}
	return id, true
}
