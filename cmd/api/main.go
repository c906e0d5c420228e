package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rentals/internal/config"
	"rentals/internal/database"
	"rentals/internal/modules/reminder"
	"rentals/internal/pkg/logger"
	"rentals/internal/pkg/push"
	"rentals/internal/server"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Setup("info", false)
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Setup(cfg.LogLevel, cfg.IsProdLike())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	dispatcher, err := push.New(ctx, cfg.Push)
	if err != nil {
		log.Fatal().Err(err).Str("provider", cfg.Push.Provider).Msg("init push provider")
	}

	g, closeGuard, err := server.OpenGuard(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("init reminder guard")
	}
	defer closeGuard()

	app := server.New(cfg, server.Deps{DB: db, Dispatcher: dispatcher, Guard: g})

	var schedulerDone <-chan struct{}
	if cfg.Reminder.Enabled {
		schedulerDone = reminder.NewScheduler(app.Scanner, cfg.Reminder.Interval).Start(ctx)
		log.Info().Dur("interval", cfg.Reminder.Interval).Msg("reminder scheduler started")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("env", cfg.AppEnv).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	app.Hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if schedulerDone != nil {
		select {
		case <-schedulerDone:
		case <-shutdownCtx.Done():
			log.Warn().Msg("reminder run still in progress at shutdown")
		}
	}

	log.Info().Msg("server exited")
}
