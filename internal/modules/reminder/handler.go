package reminder

import (
	"net/http"

	"rentals/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler lets administrators trigger a run on demand.
type Handler struct {
	runner Runner
}

func NewHandler(runner Runner) *Handler {
	return &Handler{runner: runner}
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/reminders/run", h.Run)
}

func (h *Handler) Run(c *gin.Context) {
	report := h.runner.Run(c.Request.Context())
	response.Success(c, http.StatusOK, gin.H{"report": report})
}
