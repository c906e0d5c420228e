package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultJWTSecret = "change-me-jwt-secret"
	defaultDSN       = "file:rentals.db?_pragma=foreign_keys(1)"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv      string         `yaml:"app_env"`
	HTTPAddr    string         `yaml:"http_addr"`
	DatabaseURL string         `yaml:"database_url"`
	LogLevel    string         `yaml:"log_level"`
	RedisURL    string         `yaml:"redis_url"`
	PlatformFee float64        `yaml:"platform_fee"`
	CORSOrigins []string       `yaml:"cors_allowed_origins"`
	JWT         JWTConfig      `yaml:"jwt"`
	Push        PushConfig     `yaml:"push"`
	Reminder    ReminderConfig `yaml:"reminder"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

// PushConfig selects and configures the notification provider.
type PushConfig struct {
	Provider           string `yaml:"provider"`
	FCMCredentialsFile string `yaml:"fcm_credentials_file"`
	APNsKeyFile        string `yaml:"apns_key_file"`
	APNsKeyID          string `yaml:"apns_key_id"`
	APNsTeamID         string `yaml:"apns_team_id"`
	APNsTopic          string `yaml:"apns_topic"`
	APNsProduction     bool   `yaml:"apns_production"`
}

type ReminderConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Interval      time.Duration `yaml:"interval"`
	Lookahead     time.Duration `yaml:"lookahead"`
	RenotifyAfter time.Duration `yaml:"renotify_after"`
	MaxAttempts   int           `yaml:"max_attempts"`
	Workers       int           `yaml:"workers"`
}

func defaults() *Config {
	return &Config{
		AppEnv:      "dev",
		HTTPAddr:    ":8080",
		DatabaseURL: defaultDSN,
		LogLevel:    "info",
		JWT: JWTConfig{
			Secret: defaultJWTSecret,
			TTL:    24 * time.Hour,
		},
		Push: PushConfig{Provider: "log"},
		Reminder: ReminderConfig{
			Enabled:       true,
			Interval:      5 * time.Minute,
			Lookahead:     24 * time.Hour,
			RenotifyAfter: 12 * time.Hour,
			MaxAttempts:   3,
			Workers:       4,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE and the environment, in that order. A .env file is loaded first
// when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	appEnv := getEnv("APP_ENV", getEnv("ENV", cfg.AppEnv))
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(appEnv))
	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", cfg.HTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", cfg.DatabaseURL))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", cfg.LogLevel)))
	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", cfg.RedisURL))
	cfg.JWT.Secret = strings.TrimSpace(getEnv("JWT_SECRET", cfg.JWT.Secret))

	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		cfg.CORSOrigins = nil
		for _, o := range strings.Split(extra, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	p := &cfg.Push
	p.Provider = strings.ToLower(strings.TrimSpace(getEnv("PUSH_PROVIDER", p.Provider)))
	p.FCMCredentialsFile = getEnv("FCM_CREDENTIALS_FILE", p.FCMCredentialsFile)
	p.APNsKeyFile = getEnv("APNS_KEY_FILE", p.APNsKeyFile)
	p.APNsKeyID = getEnv("APNS_KEY_ID", p.APNsKeyID)
	p.APNsTeamID = getEnv("APNS_TEAM_ID", p.APNsTeamID)
	p.APNsTopic = getEnv("APNS_TOPIC", p.APNsTopic)
	p.APNsProduction = parseBoolEnv("APNS_PRODUCTION", strconv.FormatBool(p.APNsProduction))

	r := &cfg.Reminder
	r.Enabled = parseBoolEnv("REMINDER_ENABLED", strconv.FormatBool(r.Enabled))

	var err error
	if cfg.JWT.TTL, err = parseDurationEnv("JWT_TTL", cfg.JWT.TTL.String()); err != nil {
		return err
	}
	if r.Interval, err = parseDurationEnv("REMINDER_INTERVAL", r.Interval.String()); err != nil {
		return err
	}
	if r.Lookahead, err = parseDurationEnv("REMINDER_LOOKAHEAD", r.Lookahead.String()); err != nil {
		return err
	}
	if r.RenotifyAfter, err = parseDurationEnv("REMINDER_RENOTIFY_AFTER", r.RenotifyAfter.String()); err != nil {
		return err
	}
	if r.MaxAttempts, err = parseIntEnv("REMINDER_MAX_ATTEMPTS", r.MaxAttempts); err != nil {
		return err
	}
	if r.Workers, err = parseIntEnv("REMINDER_WORKERS", r.Workers); err != nil {
		return err
	}
	if cfg.PlatformFee, err = parseFloatEnv("PLATFORM_FEE", cfg.PlatformFee); err != nil {
		return err
	}
	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.PlatformFee < 0 {
		return fmt.Errorf("PLATFORM_FEE must be >= 0")
	}

	switch cfg.Push.Provider {
	case "log":
	case "fcm":
		if cfg.Push.FCMCredentialsFile == "" {
			return fmt.Errorf("FCM_CREDENTIALS_FILE is required when PUSH_PROVIDER=fcm")
		}
	case "apns":
		if cfg.Push.APNsKeyFile == "" || cfg.Push.APNsKeyID == "" || cfg.Push.APNsTeamID == "" || cfg.Push.APNsTopic == "" {
			return fmt.Errorf("APNS_KEY_FILE, APNS_KEY_ID, APNS_TEAM_ID and APNS_TOPIC are required when PUSH_PROVIDER=apns")
		}
	default:
		return fmt.Errorf("PUSH_PROVIDER must be one of: fcm, apns, log")
	}

	r := cfg.Reminder
	if r.Interval <= 0 {
		return fmt.Errorf("REMINDER_INTERVAL must be > 0")
	}
	if r.Lookahead <= 0 {
		return fmt.Errorf("REMINDER_LOOKAHEAD must be > 0")
	}
	if r.RenotifyAfter <= 0 {
		return fmt.Errorf("REMINDER_RENOTIFY_AFTER must be > 0")
	}
	if r.MaxAttempts < 1 {
		return fmt.Errorf("REMINDER_MAX_ATTEMPTS must be >= 1")
	}
	if r.Workers < 1 {
		return fmt.Errorf("REMINDER_WORKERS must be >= 1")
	}

	if cfg.IsProdLike() && isEmptyOrDefault(cfg.JWT.Secret, defaultJWTSecret) {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}
	return nil
}

func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseFloatEnv(name string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return f, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
