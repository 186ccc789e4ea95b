package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables, loading a
// local .env file first when one exists. Unset variables leave the current
// value untouched.
//
// Recognized variables: ADDRESS, DATABASE_URL, JWT_SECRET, CLIENT_URL,
// ENVIRONMENT, TOKEN_VALIDITY (Go duration string, e.g. "168h").
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("ADDRESS"); v != "" {
		config.EndpointAddr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("CLIENT_URL"); v != "" {
		config.ClientOrigin = v
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		config.Environment = v
	}
	if v := os.Getenv("TOKEN_VALIDITY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.TokenValidityDuration = d
		}
	}
}
