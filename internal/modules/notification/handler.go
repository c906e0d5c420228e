package notification

import (
	"errors"
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

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.PUT("/users/me/device-token", h.UpdateDeviceToken)
	protected.DELETE("/users/me/device-token", h.DeleteDeviceToken)
	protected.POST("/notifications/test", h.SendTest)
}

func (h *Handler) UpdateDeviceToken(c *gin.Context) {
	var body deviceTokenBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "device_token is required")
		return
	}

	if err := h.service.RegisterDeviceToken(c.Request.Context(), middleware.UserID(c), body.DeviceToken); err != nil {
		h.writeError(c, err, "Failed to update device token")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Device token updated successfully"})
}

func (h *Handler) DeleteDeviceToken(c *gin.Context) {
	if err := h.service.RemoveDeviceToken(c.Request.Context(), middleware.UserID(c)); err != nil {
		h.writeError(c, err, "Failed to remove device token")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Device token removed"})
}

func (h *Handler) SendTest(c *gin.Context) {
	res, err := h.service.SendTest(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.writeError(c, err, "Failed to send test notification")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"message": "Test notification sent successfully",
		"result":  res,
	})
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
	case errors.Is(err, ErrNoDeviceToken):
		response.Error(c, http.StatusBadRequest, "NO_DEVICE_TOKEN", "No device token found")
	case errors.Is(err, ErrTokenRejected):
		response.Error(c, http.StatusUnprocessableEntity, "DEVICE_TOKEN_INVALID", "The device token was rejected and has been removed")
	case errors.Is(err, ErrDeliveryFailed):
		response.Error(c, http.StatusBadGateway, "PUSH_FAILED", "The push provider is unavailable, try again later")
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("notification request failed")
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}
