// Package config reads the service settings from the environment, after
// loading an optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"library-lending-service/internal/firebase"
	"library-lending-service/internal/lending"
)

// Backend names a lending.Store implementation
type Backend string

const (
	BackendMemory    Backend = "memory"
	BackendBolt      Backend = "bolt"
	BackendFirestore Backend = "firestore"
	BackendPostgres  Backend = "postgres"
)

// Config holds everything cmd/server needs to start
type Config struct {
	Port             string
	Backend          Backend
	BoltPath         string
	PostgresDSN      string
	PostgresDriver   string
	Firebase         firebase.Config
	Policy           lending.Policy
	LogLevel         slog.Level
	LogFormat        string
	RequireStaffAuth bool
}

// NeedsFirebase reports whether the Firebase app must be initialized
func (c Config) NeedsFirebase() bool {
	return c.Backend == BackendFirestore || c.RequireStaffAuth
}

// Load reads .env (if present) and the process environment
func Load() (Config, error) {
	// A missing .env file is fine, the system environment is used
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only
func FromEnv() (Config, error) {
	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		Backend:        Backend(strings.ToLower(getEnv("STORE_BACKEND", string(BackendMemory)))),
		BoltPath:       getEnv("BOLT_PATH", "library.db"),
		PostgresDSN:    os.Getenv("POSTGRES_DSN"),
		PostgresDriver: strings.ToLower(getEnv("POSTGRES_DRIVER", "pgx")),
		Firebase: firebase.Config{
			CredentialsPath: os.Getenv("FIREBASE_CREDENTIALS_PATH"),
			CredentialsJSON: os.Getenv("FIREBASE_CREDENTIALS_JSON"),
			ProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		},
		Policy:    lending.DefaultPolicy(),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	loanDays, err := getInt("LOAN_PERIOD_DAYS", 14)
	if err != nil {
		return Config{}, err
	}
	if loanDays <= 0 {
		return Config{}, fmt.Errorf("LOAN_PERIOD_DAYS must be positive, got %d", loanDays)
	}
	cfg.Policy.LoanPeriod = time.Duration(loanDays) * 24 * time.Hour

	limit, err := getInt("BORROW_LIMIT", cfg.Policy.BorrowLimit)
	if err != nil {
		return Config{}, err
	}
	if limit <= 0 {
		return Config{}, fmt.Errorf("BORROW_LIMIT must be positive, got %d", limit)
	}
	cfg.Policy.BorrowLimit = limit

	if cfg.Policy.LegacyLimitCheck, err = getBool("LEGACY_BORROW_LIMIT", false); err != nil {
		return Config{}, err
	}
	if cfg.RequireStaffAuth, err = getBool("REQUIRE_STAFF_AUTH", false); err != nil {
		return Config{}, err
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return Config{}, errors.Wrap(err, "invalid LOG_LEVEL")
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Backend {
	case BackendMemory, BackendFirestore:
	case BackendBolt:
		if c.BoltPath == "" {
			return errors.New("BOLT_PATH is required for the bolt backend")
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required for the postgres backend")
		}
		if c.PostgresDriver != "pgx" && c.PostgresDriver != "sqlx" {
			return fmt.Errorf("POSTGRES_DRIVER must be pgx or sqlx, got %q", c.PostgresDriver)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Backend)
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, errors.Wrapf(err, "invalid %s", key)
	}
	return b, nil
}
