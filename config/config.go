// Package config loads process configuration from the environment once at startup.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort       = "8080"
	defaultSessionTTL = 7 * 24 * time.Hour
	defaultCORSOrigin = "http://localhost:3000"
	defaultUploadDir  = "uploads/properties"
)

// Config carries every external collaborator the server needs. It is built once
// in main and passed down by value; nothing reads the environment after Load.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	SessionTTL  time.Duration
	CORSOrigin  string
	UploadDir   string
	Env         string
}

// Load reads a .env file when present and resolves all settings. It fails on
// missing required variables rather than limping along with empty secrets.
func Load() (Config, error) {
	// ok if missing in prod
	_ = godotenv.Load()

	cfg := Config{
		Port:        envOr("PORT", defaultPort),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		SessionTTL:  defaultSessionTTL,
		CORSOrigin:  envOr("CORS_ORIGIN", defaultCORSOrigin),
		UploadDir:   envOr("UPLOAD_DIR", defaultUploadDir),
		Env:         envOr("APP_ENV", "development"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("config: DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("config: JWT_SECRET is not set")
	}

	if raw := os.Getenv("JWT_EXPIRES_IN"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: parse JWT_EXPIRES_IN: %w", err)
		}
		cfg.SessionTTL = ttl
	}

	return cfg, nil
}

// Development reports whether error responses may include internal detail.
func (c Config) Development() bool {
	return c.Env == "development"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
