package admin

import (
	"errors"
	"net/http"
	"strconv"

	"rentals/internal/middleware"
	"rentals/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects a group already limited to admins.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/users", h.GetUsers)
	admin.GET("/users/:id", h.GetUser)
	admin.DELETE("/users/:id", h.DeleteUser)
}

func (h *Handler) GetUsers(c *gin.Context) {
	var filter UserListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	out, err := h.service.ListUsers(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err, "Failed to load users")
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	u, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "Failed to load user")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		h.writeError(c, err, "Failed to delete user")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, ErrInvalidRole):
		response.Error(c, http.StatusBadRequest, "INVALID_ROLE", "Unknown role")
	case errors.Is(err, ErrCannotDeleteSelf):
		response.Error(c, http.StatusBadRequest, "CANNOT_DELETE_SELF", "You cannot delete your own account")
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("admin request failed")
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return 0, false
	}
	return id, true
}
