package stats

import (
	"net/http"

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

// RegisterAdminRoutes expects a group already limited to admins.
func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/stats", h.GetPlatformStats)
}

// RegisterLessorRoutes expects an authenticated group.
func (h *Handler) RegisterLessorRoutes(protected *gin.RouterGroup) {
	protected.GET("/lessor/stats", middleware.LessorOnly(), h.GetLessorStats)
}

func (h *Handler) GetPlatformStats(c *gin.Context) {
	stats, err := h.service.Platform(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("platform stats failed")
		response.Error(c, http.StatusInternalServerError, "STATS_FAILED", "Failed to get statistics")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

func (h *Handler) GetLessorStats(c *gin.Context) {
	userID := middleware.UserID(c)
	stats, err := h.service.Lessor(c.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("lessor stats failed")
		response.Error(c, http.StatusInternalServerError, "STATS_FAILED", "Failed to get statistics")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}
