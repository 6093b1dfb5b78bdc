package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DatabaseURL   string
	JWTSecret     string
	SendGridKey   string
	EmailFrom     string
	EmailFromName string
	Environment   string
}

// Load reads configuration from the environment, honoring a local .env file
// when present.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Port:          os.Getenv("PORT"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		SendGridKey:   os.Getenv("SENDGRID_API_KEY"),
		EmailFrom:     os.Getenv("SENDGRID_FROM_EMAIL"),
		EmailFromName: os.Getenv("SENDGRID_FROM_NAME"),
		Environment:   os.Getenv("ENV"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.EmailFromName == "" {
		cfg.EmailFromName = "Slot Swapper"
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	return cfg, nil
}
