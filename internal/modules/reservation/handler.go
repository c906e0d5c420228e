package reservation

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"rentals/internal/domain"
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

// RegisterPublicRoutes mounts the read-only calendar endpoint.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/listings/:id/reserved-dates", h.ListReservedDates)
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/reservations", h.CreateReservation)
	rg.GET("/reservations", h.ListReservations)
	rg.GET("/reservations/:id", h.GetReservation)
	rg.PATCH("/reservations/:id/status", h.UpdateStatus)
}

// RegisterAdminRoutes mounts the overlap audit.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/listings/:id/conflicts", h.FindConflicts)
}

func (h *Handler) CreateReservation(c *gin.Context) {
	var body createReservationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	start, errStart := time.Parse(dateLayout, body.StartDate)
	end, errEnd := time.Parse(dateLayout, body.EndDate)
	if errStart != nil || errEnd != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Dates must use the YYYY-MM-DD format")
		return
	}

	res, err := h.service.CreateReservation(c.Request.Context(), CreateReservationRequest{
		ListingID: body.ListingID,
		UserID:    middleware.UserID(c),
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		h.writeError(c, err, "Failed to create reservation")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"reservation": res})
}

func (h *Handler) ListReservations(c *gin.Context) {
	list, err := h.service.ListReservationsForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.writeError(c, err, "Failed to load reservations")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservations": list})
}

func (h *Handler) GetReservation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	res, err := h.service.GetReservation(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		h.writeError(c, err, "Failed to load reservation")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservation": res})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var body updateStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.UpdateStatus(c.Request.Context(), id, middleware.UserID(c), domain.ReservationStatus(body.Status))
	if err != nil {
		h.writeError(c, err, "Failed to update reservation")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservation": res})
}

func (h *Handler) ListReservedDates(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	dates, err := h.service.ListReservedDates(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "Failed to load reserved dates")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reserved_dates": dates})
}

func (h *Handler) FindConflicts(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	pairs, err := h.service.FindConflicts(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "Failed to audit reservations")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"conflicts": pairs})
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Listing or reservation not found")
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "RESERVATION_CONFLICT", "The listing is already reserved for the selected dates.")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
	case errors.Is(err, ErrInvalidStatusTransition):
		response.Error(c, http.StatusUnprocessableEntity, "INVALID_STATUS_TRANSITION", "Status change not allowed")
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("reservation request failed")
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
