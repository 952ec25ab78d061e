package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saksham-ndma/training-service/internal/services"
	"github.com/saksham-ndma/training-service/internal/utils"
)

// UserHandler handles user profile HTTP requests
type UserHandler struct {
	*BaseHandler
	userService services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

// GetMe handles GET /api/v1/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.RespondWithError(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err, "get_profile")
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers handles GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	principal, err := GetUserFromContext(c)
	if err != nil {
		h.RespondWithError(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	page := h.parseIntQuery(c, "page", 1)
	if page < 1 {
		page = 1
	}
	size := h.parseIntQuery(c, "size", 20)
	if size < 1 || size > 100 {
		size = 20
	}

	users, err := h.userService.List(c.Request.Context(), size, (page-1)*size, principal)
	if err != nil {
		h.handleServiceError(c, err, "list_users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"page":  page,
		"size":  size,
	})
}
