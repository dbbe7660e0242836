package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	// ProofAttemptTTL bounds how long an unfinished proof attempt (image
	// bytes included) is kept in memory before eviction
	ProofAttemptTTL time.Duration
	StoreBackend    StoreBackendConfig
}

// StoreBackendConfig is used to call the PHP store backend (OCR extraction,
// place-request, checkout, locations)
type StoreBackendConfig struct {
	BaseURL string
	// Timeout applies uniformly to every backend call, OCR and submission
	// included (15s, matching the one sibling flow that enforced one)
	Timeout time.Duration
	// ShipLeadDays is added to the order date to produce ship_date
	ShipLeadDays int
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORE_BACKEND_TIMEOUT_SECONDS", "15")
	viper.SetDefault("SHIP_LEAD_DAYS", "3")
	viper.SetDefault("PROOF_ATTEMPT_TTL_MINUTES", "30")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	timeoutSecs, err := strconv.Atoi(getEnvOrViper("STORE_BACKEND_TIMEOUT_SECONDS", "15"))
	if err != nil || timeoutSecs <= 0 {
		return nil, fmt.Errorf("STORE_BACKEND_TIMEOUT_SECONDS must be a positive integer")
	}
	leadDays, err := strconv.Atoi(getEnvOrViper("SHIP_LEAD_DAYS", "3"))
	if err != nil || leadDays < 0 {
		return nil, fmt.Errorf("SHIP_LEAD_DAYS must be a non-negative integer")
	}
	ttlMins, err := strconv.Atoi(getEnvOrViper("PROOF_ATTEMPT_TTL_MINUTES", "30"))
	if err != nil || ttlMins <= 0 {
		return nil, fmt.Errorf("PROOF_ATTEMPT_TTL_MINUTES must be a positive integer")
	}

	cfg := &Config{
		Port:            getEnvOrViper("PORT", "8080"),
		Environment:     getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:        getEnvOrViper("LOG_LEVEL", "info"),
		ProofAttemptTTL: time.Duration(ttlMins) * time.Minute,
		StoreBackend: StoreBackendConfig{
			BaseURL:      strings.TrimSpace(getEnvOrViper("STORE_BACKEND_URL", "")),
			Timeout:      time.Duration(timeoutSecs) * time.Second,
			ShipLeadDays: leadDays,
		},
	}

	// Validate required fields
	if cfg.StoreBackend.BaseURL == "" {
		return nil, fmt.Errorf("STORE_BACKEND_URL is required")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
