package api

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
)

const (
	localEnvironment  = "local"
	localTokenSecret  = "local-development-secret"
	defaultTokenTTL   = 60
	defaultSessionTTL = 24
	defaultHTTPPort   = "8080"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Environment       string
	Port              string
	PostgresDSN       string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	TokenSecret       string
	TokenTTL          time.Duration
	SessionTTL        time.Duration
}

// LoadConfig reads an optional .env file and the environment, applies
// defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := Config{
		Environment:       envDefault("ENVIRONMENT", localEnvironment),
		Port:              envDefault("PORT", defaultHTTPPort),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		TokenSecret:       strings.TrimSpace(os.Getenv("AUTH_TOKEN_SECRET")),
	}
	if cfg.TokenSecret == "" {
		if cfg.Environment != localEnvironment {
			return Config{}, errors.New("AUTH_TOKEN_SECRET is required outside the local environment")
		}
		cfg.TokenSecret = localTokenSecret
	}
	minutes, err := positiveInt("AUTH_TOKEN_TTL_MINUTES", defaultTokenTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.TokenTTL = time.Duration(minutes) * time.Minute
	hours, err := positiveInt("SESSION_TTL_HOURS", defaultSessionTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionTTL = time.Duration(hours) * time.Hour
	return cfg, nil
}

func positiveInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return value, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
