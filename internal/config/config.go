// Package config loads runtime settings from the environment (optionally seeded
// from a .env file) and holds the queue-wide constants.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration of the backend and the admin CLI.
type Config struct {
	HTTPAddr    string
	DatabaseDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	TokenTTL  time.Duration

	MatchInterval time.Duration
	HistoryLimit  int

	JoinRateLimit  int
	JoinRateWindow time.Duration

	ShutdownTimeout time.Duration
}

// ErrMissingSecret is returned when JWT_SECRET is not set.
var ErrMissingSecret = errors.New("JWT_SECRET is not set")

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	loadDotEnv()
	return FromEnv()
}

// LoadStores is Load without validation, for tools such as the admin CLI
// that only talk to the database and Redis.
func LoadStores() (*Config, error) {
	loadDotEnv()
	return parse()
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("WARN: .env file not loaded, using process environment")
	}
}

// FromEnv builds a validated Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg, err := parse()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse() (*Config, error) {
	cfg := &Config{
		HTTPAddr:      getString("HTTP_ADDR", DefaultHTTPAddr),
		DatabaseDSN:   getString("DATABASE_DSN", defaultDSN()),
		RedisAddr:     getString("REDIS_ADDR", "localhost:6380"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", DefaultTokenTTL); err != nil {
		return nil, err
	}
	if cfg.MatchInterval, err = getDuration("MATCH_INTERVAL", DefaultMatchInterval); err != nil {
		return nil, err
	}
	if cfg.HistoryLimit, err = getInt("HISTORY_LIMIT", DefaultHistoryLimit); err != nil {
		return nil, err
	}
	if cfg.JoinRateLimit, err = getInt("JOIN_RATE_LIMIT", DefaultJoinRateLimit); err != nil {
		return nil, err
	}
	if cfg.JoinRateWindow, err = getDuration("RATE_WINDOW", DefaultJoinRateWindow); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be defaulted sensibly.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingSecret
	}
	if c.MatchInterval <= 0 {
		return fmt.Errorf("MATCH_INTERVAL must be positive, got %s", c.MatchInterval)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be positive, got %d", c.HistoryLimit)
	}
	if c.JoinRateLimit <= 0 || c.JoinRateWindow <= 0 {
		return fmt.Errorf("join rate limit must be positive, got %d per %s", c.JoinRateLimit, c.JoinRateWindow)
	}
	return nil
}

// defaultDSN mirrors the docker-compose database settings.
func defaultDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		getString("DB_HOST", "localhost"),
		getString("DB_USER", "user"),
		getString("DB_PASSWORD", "password"),
		getString("DB_NAME", "anonpairdb"),
		getString("DB_PORT", "5432"),
	)
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
