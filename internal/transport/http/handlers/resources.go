package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/filipal/graph-platform-iam/internal/transport/http/middleware"
)

// ResourceHandler exposes the role-gated content endpoints. The payloads are
// placeholders; the endpoints exist to exercise the access control chain.
type ResourceHandler struct{}

func NewResourceHandler() *ResourceHandler {
	return &ResourceHandler{}
}

// RegisterRoutes binds resource endpoints onto authenticated and admin groups.
func (h *ResourceHandler) RegisterRoutes(authed, admin *gin.RouterGroup) {
	authed.GET("/download", h.Download)
	admin.GET("/admin-area", h.AdminArea)
	admin.DELETE("/items/:itemID", h.DeleteItem)
	admin.PUT("/items/:itemID", h.EditItem)
}

// Download godoc
// @Summary Download content available to any authenticated account
// @Tags Resources
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/download [get]
func (h *ResourceHandler) Download(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	c.JSON(http.StatusOK, gin.H{
		"message":    "download ready",
		"account_id": identity.AccountID,
		"role":       identity.Role.String(),
	})
}

// AdminArea godoc
// @Summary Content restricted to administrators
// @Tags Resources
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/admin-area [get]
func (h *ResourceHandler) AdminArea(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	c.JSON(http.StatusOK, gin.H{
		"message":    "welcome to the admin area",
		"account_id": identity.AccountID,
	})
}

// DeleteItem godoc
// @Summary Delete an item (administrators only)
// @Tags Resources
// @Produce json
// @Security BearerAuth
// @Param itemID path int true "Item ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/items/{itemID} [delete]
func (h *ResourceHandler) DeleteItem(c *gin.Context) {
	itemID, ok := parseItemID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item deleted", "item_id": itemID})
}

// EditItem godoc
// @Summary Edit an item (administrators only)
// @Tags Resources
// @Produce json
// @Security BearerAuth
// @Param itemID path int true "Item ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/items/{itemID} [put]
func (h *ResourceHandler) EditItem(c *gin.Context) {
	itemID, ok := parseItemID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item updated", "item_id": itemID})
}

func parseItemID(c *gin.Context) (int64, bool) {
	raw := c.Param("itemID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid item id"))
		return 0, false
	}
	return id, true
}
