package config

import (
	"os"
	"strconv"
	"time"

	"github.com/ashendes/restaurant-admin/internal/patterns"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds the configuration for both services
type Config struct {
	API       APIConfig
	Dashboard ServerConfig
	OrderAPI  ServerConfig
	LogLevel  log.Level

	// TokenSecret signs the order API stub's tokens
	TokenSecret string
}

// APIConfig describes the remote restaurant API
type APIConfig struct {
	BaseURL      string
	Timeout      time.Duration
	BulkheadSize int
}

// ServerConfig holds the listen port of a service
type ServerConfig struct {
	Port string
}

// Load reads configuration from the environment. Values from a .env file in
// the working directory are used for keys the environment does not set.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Failed to read .env file")
	}

	return &Config{
		API: APIConfig{
			BaseURL:      getEnv("API_BASE_URL", "http://localhost:5000/api/v1"),
			Timeout:      getDuration("API_TIMEOUT", patterns.DefaultTimeout),
			BulkheadSize: getInt("BULKHEAD_SIZE", 10),
		},
		Dashboard: ServerConfig{Port: getEnv("DASHBOARD_PORT", "8080")},
		OrderAPI:  ServerConfig{Port: getEnv("ORDER_API_PORT", "5000")},
		LogLevel:  getLevel("LOG_LEVEL", log.InfoLevel),

		TokenSecret: getEnv("JWT_SECRET", "dev-secret"),
	}
}

// getEnv gets environment variable with fallback; empty counts as unset
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getLevel(key string, fallback log.Level) log.Level {
	lvl, err := log.ParseLevel(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return lvl
}
