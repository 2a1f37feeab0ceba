// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all configuration for the MCP server.
type Config struct {
	// Server configuration
	Mode     string // "stdio" or "http"
	Profile  string // Tool profile to expose: "all", "threat_reports", ...
	LogLevel string // "debug", "info", "warn", "error"

	// HTTP server configuration
	HTTPPort           int      // HTTP server port
	ServerURL          string   // Public server URL
	CORSAllowedOrigins []string // Allowed CORS origins

	// Google Threat Intelligence API
	APIKey         string        // API key (required)
	APIHost        string        // API endpoint override, empty for production
	RequestTimeout time.Duration // Per-request timeout on outbound calls
	RateLimitRPM   int           // Outbound requests per minute, 0 disables
}

// Load loads configuration from environment variables.
// Priority: environment variables > defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Mode:     getEnv("MCP_MODE", "stdio"),
		Profile:  getEnv("MCP_PROFILE", "all"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPPort:           getIntEnv("PORT", 8080),
		ServerURL:          getEnv("MCP_SERVER_URL", "http://localhost:8080"),
		CORSAllowedOrigins: getSliceEnv("CORS_ALLOWED_ORIGINS", []string{}),

		APIKey:         os.Getenv("GTI_APIKEY"),
		APIHost:        getEnv("GTI_HOST", ""),
		RequestTimeout: getDurationEnv("GTI_TIMEOUT", 80*time.Second),
		RateLimitRPM:   getIntEnv("GTI_RATE_LIMIT_RPM", 0),
	}

	if cfg.Mode != "stdio" && cfg.Mode != "http" {
		return nil, fmt.Errorf("invalid MCP_MODE: %s (must be 'stdio' or 'http')", cfg.Mode)
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GTI_APIKEY is required")
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validProfiles := map[string]bool{
		"threat_reports": true,
		"threat_hunting": true,
		"scanning":       true,
		"all":            true,
	}
	if !validProfiles[c.Profile] {
		return fmt.Errorf("invalid profile: %s", c.Profile)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid port: %d", c.HTTPPort)
	}

	return nil
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getIntEnv gets an integer environment variable.
func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	_, err := fmt.Sscanf(value, "%d", &intValue)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// getDurationEnv gets a duration environment variable.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

// getSliceEnv gets a comma-separated list environment variable.
func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
