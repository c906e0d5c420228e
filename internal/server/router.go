package server

import (
	"context"
	"net/http"
	"time"

	"rentals/internal/config"
	"rentals/internal/middleware"
	"rentals/internal/modules/admin"
	"rentals/internal/modules/auth"
	"rentals/internal/modules/listing"
	"rentals/internal/modules/notification"
	"rentals/internal/modules/realtime"
	"rentals/internal/modules/reminder"
	"rentals/internal/modules/reservation"
	"rentals/internal/modules/review"
	"rentals/internal/modules/stats"
	jwtsvc "rentals/internal/pkg/jwt"
	"rentals/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handlers struct {
	Auth         *auth.Handler
	Listing      *listing.Handler
	Reservation  *reservation.Handler
	Notification *notification.Handler
	Realtime     *realtime.Handler
	Stats        *stats.Handler
	Reminder     *reminder.Handler
	Review       *review.Handler
	Admin        *admin.Handler
}

func NewRouter(cfg *config.Config, j *jwtsvc.Service, db *gorm.DB, h Handlers) *gin.Engine {
	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.GET("/health", healthHandler(db))

	v1 := r.Group("/api/v1")
	{
		h.Auth.RegisterPublicRoutes(v1)
		h.Listing.RegisterPublicRoutes(v1)
		h.Reservation.RegisterPublicRoutes(v1)
		h.Review.RegisterPublicRoutes(v1)
		h.Realtime.RegisterRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(j))
		{
			h.Auth.RegisterProtectedRoutes(protected)
			h.Listing.RegisterRoutes(protected)
			h.Reservation.RegisterRoutes(protected)
			h.Notification.RegisterRoutes(protected)
			h.Stats.RegisterLessorRoutes(protected)
			h.Review.RegisterRoutes(protected)

			adminGroup := protected.Group("/admin")
			adminGroup.Use(middleware.AdminOnly())
			{
				h.Listing.RegisterAdminRoutes(adminGroup)
				h.Reservation.RegisterAdminRoutes(adminGroup)
				h.Stats.RegisterAdminRoutes(adminGroup)
				h.Reminder.RegisterAdminRoutes(adminGroup)
				h.Admin.RegisterRoutes(adminGroup)
			}
		}
	}

	return r
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database is not reachable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
