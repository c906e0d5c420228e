// Command reminders runs one reminder scan and prints its report as JSON.
// It is meant for cron.
package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"rentals/internal/config"
	"rentals/internal/database"
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

	report := server.NewScanner(cfg, server.Deps{DB: db, Dispatcher: dispatcher, Guard: g}).Run(ctx)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Error().Err(err).Msg("write report")
	}
}
