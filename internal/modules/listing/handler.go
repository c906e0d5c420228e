package listing

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

// RegisterPublicRoutes mounts the catalog browsing endpoints.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/categories", h.ListCategories)
	rg.GET("/listings", h.List)
	rg.GET("/listings/:id", h.Get)
}

// RegisterRoutes expects an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/listings", middleware.LessorOnly(), h.Create)
	rg.PATCH("/listings/:id", h.Update)
	rg.DELETE("/listings/:id", h.Delete)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/categories", h.CreateCategory)
}

func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	list, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		h.writeError(c, err, "Failed to load listings")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"listings": list, "count": len(list)})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var q struct {
		Lat *float64 `form:"lat"`
		Lng *float64 `form:"lng"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	v, err := h.service.Get(c.Request.Context(), id, q.Lat, q.Lng)
	if err != nil {
		h.writeError(c, err, "Failed to load listing")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"listing": v})
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	l, err := h.service.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		h.writeError(c, err, "Failed to create listing")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"listing": l})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	l, err := h.service.Update(c.Request.Context(), id, middleware.UserID(c), req)
	if err != nil {
		h.writeError(c, err, "Failed to update listing")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"listing": l})
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		h.writeError(c, err, "Failed to delete listing")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) ListCategories(c *gin.Context) {
	list, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "Failed to load categories")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"categories": list})
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	cat, err := h.service.CreateCategory(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err, "Failed to create category")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"category": cat})
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.Validation(c, verr.Fields)
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Listing not found")
	case errors.Is(err, ErrCategoryNotFound):
		response.Error(c, http.StatusBadRequest, "CATEGORY_NOT_FOUND", "Category does not exist")
	case errors.Is(err, ErrCategoryDuplicate):
		response.Error(c, http.StatusConflict, "CATEGORY_EXISTS", "Category already exists")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only the owner can change this listing")
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("listing request failed")
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
