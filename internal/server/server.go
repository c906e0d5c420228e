// Package server assembles repositories, services and HTTP handlers into one
// application.
package server

import (
	"rentals/internal/config"
	"rentals/internal/modules/admin"
	"rentals/internal/modules/auth"
	"rentals/internal/modules/listing"
	"rentals/internal/modules/notification"
	"rentals/internal/modules/realtime"
	"rentals/internal/modules/reminder"
	"rentals/internal/modules/reservation"
	"rentals/internal/modules/review"
	"rentals/internal/modules/stats"
	"rentals/internal/pkg/guard"
	jwtsvc "rentals/internal/pkg/jwt"
	"rentals/internal/pkg/push"
	"rentals/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the external resources the application runs on.
type Deps struct {
	DB         *gorm.DB
	Dispatcher push.Dispatcher
	// Guard coordinates reminder runs; nil disables coordination.
	Guard *guard.Guard
}

type App struct {
	Router  *gin.Engine
	Scanner *reminder.Scanner
	Hub     *realtime.Hub
	JWT     *jwtsvc.Service
}

func New(cfg *config.Config, deps Deps) *App {
	userRepo := repository.NewUserRepository(deps.DB)
	categoryRepo := repository.NewCategoryRepository(deps.DB)
	listingRepo := repository.NewListingRepository(deps.DB)
	reservationRepo := repository.NewReservationRepository(deps.DB)
	statsRepo := repository.NewStatsRepository(deps.DB)
	reviewRepo := repository.NewReviewRepository(deps.DB)

	j := jwtsvc.New(cfg.JWT.Secret, cfg.JWT.TTL)
	hub := realtime.NewHub()

	scanner := NewScanner(cfg, deps)

	handlers := Handlers{
		Auth:         auth.NewHandler(auth.NewService(userRepo, j)),
		Listing:      listing.NewHandler(listing.NewService(listingRepo, categoryRepo)),
		Reservation:  reservation.NewHandler(reservation.NewService(reservationRepo, hub, cfg.PlatformFee)),
		Notification: notification.NewHandler(notification.NewService(userRepo, deps.Dispatcher)),
		Realtime:     realtime.NewHandler(hub, j, cfg.CORSOrigins),
		Stats:        stats.NewHandler(stats.NewService(statsRepo)),
		Reminder:     reminder.NewHandler(scanner),
		Review:       review.NewHandler(review.NewService(reviewRepo, listingRepo, reservationRepo)),
		Admin:        admin.NewHandler(admin.NewService(userRepo)),
	}

	return &App{
		Router:  NewRouter(cfg, j, deps.DB, handlers),
		Scanner: scanner,
		Hub:     hub,
		JWT:     j,
	}
}

// NewScanner builds the reminder scanner from configuration. cmd/reminders
// uses it without the HTTP stack.
func NewScanner(cfg *config.Config, deps Deps) *reminder.Scanner {
	return reminder.NewScanner(
		repository.NewReservationRepository(deps.DB),
		repository.NewUserRepository(deps.DB),
		deps.Dispatcher,
		deps.Guard,
		reminder.Config{
			Lookahead:     cfg.Reminder.Lookahead,
			RenotifyAfter: cfg.Reminder.RenotifyAfter,
			MaxAttempts:   cfg.Reminder.MaxAttempts,
			Workers:       cfg.Reminder.Workers,
		},
	)
}
