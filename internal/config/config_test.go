package config

import (
	"testing"
	"time"

	"github.com/ashendes/restaurant-admin/internal/patterns"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"API_BASE_URL", "API_TIMEOUT", "BULKHEAD_SIZE", "DASHBOARD_PORT", "ORDER_API_PORT", "LOG_LEVEL", "JWT_SECRET"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "http://localhost:5000/api/v1", cfg.API.BaseURL)
	assert.Equal(t, "8080", cfg.Dashboard.Port)
	assert.Equal(t, "5000", cfg.OrderAPI.Port)
	assert.Equal(t, patterns.DefaultTimeout, cfg.API.Timeout)
	assert.Equal(t, 10, cfg.API.BulkheadSize)
	assert.Equal(t, log.InfoLevel, cfg.LogLevel)
	assert.Equal(t, "dev-secret", cfg.TokenSecret)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://api.test/v1")
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("BULKHEAD_SIZE", "4")
	t.Setenv("DASHBOARD_PORT", "9090")
	t.Setenv("ORDER_API_PORT", "6000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg := Load()

	assert.Equal(t, "http://api.test/v1", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 4, cfg.API.BulkheadSize)
	assert.Equal(t, "9090", cfg.Dashboard.Port)
	assert.Equal(t, "6000", cfg.OrderAPI.Port)
	assert.Equal(t, log.DebugLevel, cfg.LogLevel)
	assert.Equal(t, "s3cret", cfg.TokenSecret)
}

func TestInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("API_TIMEOUT", "soon")
	t.Setenv("BULKHEAD_SIZE", "-3")
	t.Setenv("LOG_LEVEL", "loud")

	cfg := Load()

	assert.Equal(t, patterns.DefaultTimeout, cfg.API.Timeout)
	assert.Equal(t, 10, cfg.API.BulkheadSize)
	assert.Equal(t, log.InfoLevel, cfg.LogLevel)
}
