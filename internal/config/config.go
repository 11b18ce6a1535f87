// Package config provides configuration for the MCP service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the MCP service configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Audit store
	DatabaseURL string

	// Webhook ingress
	WebhookAPIKey    string
	WebhookRateLimit float64
	WebhookRateBurst int

	// Dispatch
	AnalysisCapability string
	AgentTimeout       time.Duration

	// Async incident forwarding
	ForwardTimeout     time.Duration
	ForwardMaxAttempts int
	ForwardBackoff     time.Duration

	// Result callback
	CallbackURL         string
	CallbackAPIKey      string
	CallbackTimeout     time.Duration
	CallbackMaxAttempts int
	CallbackBackoff     time.Duration

	// Registry staleness. Zero disables the janitor.
	HeartbeatTTL time.Duration

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:            getEnvInt("HTTP_PORT", 8002),
		DatabaseURL:         getEnv("DATABASE_URL", "file:mcp.db?cache=shared&mode=rwc"),
		WebhookAPIKey:       getEnv("GMAO_WEBHOOK_API_KEY", ""),
		WebhookRateLimit:    getEnvFloat("WEBHOOK_RATE_LIMIT", 10),
		WebhookRateBurst:    getEnvInt("WEBHOOK_RATE_BURST", 20),
		AnalysisCapability:  getEnv("ANALYSIS_CAPABILITY", "incident_analysis"),
		AgentTimeout:        time.Duration(getEnvInt("AGENT_TIMEOUT_MS", 10000)) * time.Millisecond,
		ForwardTimeout:      time.Duration(getEnvInt("FORWARD_TIMEOUT_MS", 120000)) * time.Millisecond,
		ForwardMaxAttempts:  getEnvInt("FORWARD_MAX_ATTEMPTS", 3),
		ForwardBackoff:      time.Duration(getEnvInt("FORWARD_BACKOFF_MS", 2000)) * time.Millisecond,
		CallbackURL:         getEnv("CALLBACK_URL", ""),
		CallbackAPIKey:      getEnv("CALLBACK_API_KEY", ""),
		CallbackTimeout:     time.Duration(getEnvInt("CALLBACK_TIMEOUT_MS", 10000)) * time.Millisecond,
		CallbackMaxAttempts: getEnvInt("CALLBACK_MAX_ATTEMPTS", 3),
		CallbackBackoff:     time.Duration(getEnvInt("CALLBACK_BACKOFF_MS", 1000)) * time.Millisecond,
		HeartbeatTTL:        time.Duration(getEnvInt("HEARTBEAT_TTL_MS", 0)) * time.Millisecond,
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}
