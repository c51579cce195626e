package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                string
	Environment         string
	DatabaseURL         string
	BackendBaseURL      string
	BackendTimeout      time.Duration
	SessionCookie       string
	SessionCookieSecure bool
	SessionSealKey      string
	SessionTTL          time.Duration
	SessionSweepEvery   time.Duration
	FrontendDir         string
	MaxBodyBytes        int64
}

func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:                getEnv("APP_ADDR", ":4300"),
		Environment:         getEnv("APP_ENV", "development"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		BackendBaseURL:      getEnv("BACKEND_BASE_URL", "http://localhost:8080/api"),
		BackendTimeout:      getEnvDuration("BACKEND_TIMEOUT", 15*time.Second),
		SessionCookie:       getEnv("SESSION_COOKIE", "portal_session"),
		SessionCookieSecure: getEnvBool("SESSION_COOKIE_SECURE", false),
		SessionSealKey:      getEnv("SESSION_SEAL_KEY", ""),
		SessionTTL:          getEnvDuration("SESSION_TTL", 12*time.Hour),
		SessionSweepEvery:   getEnvDuration("SESSION_SWEEP_EVERY", time.Hour),
		FrontendDir:         getEnv("FRONTEND_DIR", "frontend/dist"),
		MaxBodyBytes:        int64(getEnvInt("MAX_BODY_BYTES", 8*1024*1024)),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.BackendBaseURL) == "" {
		return fmt.Errorf("BACKEND_BASE_URL is required")
	}
	if !strings.HasPrefix(c.BackendBaseURL, "http://") && !strings.HasPrefix(c.BackendBaseURL, "https://") {
		return fmt.Errorf("BACKEND_BASE_URL must be an absolute http(s) URL")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.SessionSealKey) == "" {
			return fmt.Errorf("SESSION_SEAL_KEY must be set in production so cached tokens are sealed at rest")
		}
		if !c.SessionCookieSecure {
			return fmt.Errorf("SESSION_COOKIE_SECURE must be enabled in production")
		}
	}
	if c.SessionTTL < time.Minute {
		return fmt.Errorf("SESSION_TTL must be at least one minute")
	}
	if c.BackendTimeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	return nil
}
