package main

import (
	"time"

	"rentals/internal/config"
	"rentals/internal/database"
	"rentals/internal/domain"
	"rentals/internal/pkg/logger"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Setup("info", false)
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Setup(cfg.LogLevel, false)
	if cfg.IsProdLike() {
		log.Fatal().Str("env", cfg.AppEnv).Msg("refusing to seed a production database")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("DB connection failed")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	log.Info().Msg("Cleaning old data...")
	// children first so foreign keys hold on both drivers
	for _, table := range []string{"reviews", "reservations", "listings", "categories", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatal().Err(err).Str("table", table).Msg("cleanup failed")
		}
	}

	if err := db.Transaction(seed); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Msg("Seed completed")
}

func seed(tx *gorm.DB) error {
	log.Info().Msg("Creating users...")
	hash := func(pw string) string {
		h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal().Err(err).Msg("hash password")
		}
		return string(h)
	}

	admin := domain.User{Name: "Administrator", Email: "admin@rentals.local", PasswordHash: hash("admin123"), Role: domain.RoleAdmin}
	lessors := []domain.User{
		{Name: "Aigerim Bikes", Email: "aigerim@rentals.local", PasswordHash: hash("lessor123"), Role: domain.RoleLessor},
		{Name: "Timur Outdoor", Email: "timur@rentals.local", PasswordHash: hash("lessor123"), Role: domain.RoleLessor},
	}
	clients := []domain.User{
		{Name: "Dana", Email: "dana@rentals.local", PasswordHash: hash("client123"), Role: domain.RoleClient},
		{Name: "Arman", Email: "arman@rentals.local", PasswordHash: hash("client123"), Role: domain.RoleClient},
	}
	if err := tx.Create(&admin).Error; err != nil {
		return err
	}
	if err := tx.Create(&lessors).Error; err != nil {
		return err
	}
	if err := tx.Create(&clients).Error; err != nil {
		return err
	}

	log.Info().Msg("Creating categories...")
	categories := []domain.Category{{Title: "Bikes"}, {Title: "Camping"}, {Title: "Tools"}, {Title: "Water sports"}}
	if err := tx.Create(&categories).Error; err != nil {
		return err
	}

	log.Info().Msg("Creating listings...")
	coord := func(v float64) *float64 { return &v }
	listings := []domain.Listing{
		{UserID: lessors[0].ID, CategoryID: categories[0].ID, Name: "City bike", Description: "Seven gears, basket included.", Price: 15, Latitude: coord(43.2389), Longitude: coord(76.8897), Images: []string{"/static/listings/city-bike.jpg"}, Active: true},
		{UserID: lessors[0].ID, CategoryID: categories[0].ID, Name: "Mountain bike", Description: "Full suspension, size L.", Price: 25, Latitude: coord(43.2220), Longitude: coord(76.8512), Images: []string{}, Active: true},
		{UserID: lessors[1].ID, CategoryID: categories[1].ID, Name: "Four person tent", Price: 12, Latitude: coord(43.2567), Longitude: coord(76.9286), Images: []string{}, Active: true},
		{UserID: lessors[1].ID, CategoryID: categories[2].ID, Name: "Hammer drill", Price: 8, Images: []string{}, Active: true},
		{UserID: lessors[1].ID, CategoryID: categories[3].ID, Name: "Kayak", Price: 30, Latitude: coord(51.1605), Longitude: coord(71.4704), Images: []string{}, Active: false},
	}
	if err := tx.Create(&listings).Error; err != nil {
		return err
	}

	log.Info().Msg("Creating reservations...")
	today := time.Now().UTC().Truncate(24 * time.Hour)
	reservations := []domain.Reservation{
		// starts tomorrow, so the next reminder run picks it up
		{ListingID: listings[0].ID, UserID: clients[0].ID, StartDate: today.AddDate(0, 0, 1), EndDate: today.AddDate(0, 0, 3), Price: 30, Status: domain.ReservationPayed},
		{ListingID: listings[0].ID, UserID: clients[1].ID, StartDate: today.AddDate(0, 0, 7), EndDate: today.AddDate(0, 0, 8), Price: 15, Status: domain.ReservationPending},
		{ListingID: listings[2].ID, UserID: clients[1].ID, StartDate: today.AddDate(0, 0, 2), EndDate: today.AddDate(0, 0, 4), Price: 24, Status: domain.ReservationActive},
		{ListingID: listings[1].ID, UserID: clients[0].ID, StartDate: today.AddDate(0, 0, 1), EndDate: today.AddDate(0, 0, 1), Price: 0, Status: domain.ReservationCancelled},
	}
	if err := tx.Create(&reservations).Error; err != nil {
		return err
	}

	log.Info().Msg("Creating reviews...")
	reviews := []domain.Review{
		{ListingID: listings[2].ID, UserID: clients[1].ID, Comment: "Roomy tent, survived a windy night."},
	}
	if err := tx.Create(&reviews).Error; err != nil {
		return err
	}

	log.Info().
		Int("users", 1+len(lessors)+len(clients)).
		Int("categories", len(categories)).
		Int("listings", len(listings)).
		Int("reservations", len(reservations)).
		Int("reviews", len(reviews)).
		Msg("seed data created")
	return nil
}
