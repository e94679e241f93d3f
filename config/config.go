// ABOUTME: This file handles configuration management for description-publisher
// ABOUTME: Loads environment variables and validates settings for the structured-data API

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the description-publisher service
type Config struct {
	// Service configuration
	ServiceName string
	LogLevel    string

	// HTTP server configuration
	HTTP HTTPConfig

	// Structured-data API configuration
	API APIConfig

	// Redis persistence configuration
	Redis RedisConfig

	// Notification polling configuration
	Notifier NotifierConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig
}

// HTTPConfig holds inbound HTTP server settings
type HTTPConfig struct {
	Port string
}

// APIConfig holds remote structured-data API settings
type APIConfig struct {
	BaseURL      string
	EndpointPath string
	UserAgent    string
	Timeout      time.Duration
}

// RedisConfig holds key-value persistence settings. An empty address selects
// the in-memory store.
type RedisConfig struct {
	Addr string
}

// NotifierConfig holds notification polling settings
type NotifierConfig struct {
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// RateLimitConfig holds publish-endpoint rate limiting settings
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServiceName: getEnvOrDefault("SERVICE_NAME", "description-publisher"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),

		HTTP: HTTPConfig{
			Port: getEnvOrDefault("HTTP_PORT", "8080"),
		},

		API: APIConfig{
			BaseURL:      getEnvOrDefault("STRUCTURED_DATA_BASE_URL", "https://www.wikidata.org"),
			EndpointPath: getEnvOrDefault("STRUCTURED_DATA_ENDPOINT_PATH", "/w/api.php"),
			UserAgent:    getEnvOrDefault("STRUCTURED_DATA_USER_AGENT", "description-publisher/1.0"),
		},

		Redis: RedisConfig{
			Addr: os.Getenv("REDIS_ADDR"), // Optional; empty selects in-memory store
		},
	}

	cfg.API.Timeout = getDurationOrDefault("STRUCTURED_DATA_TIMEOUT", 60*time.Second)
	cfg.Notifier.PollInterval = getDurationOrDefault("NOTIFIER_POLL_INTERVAL", 15*time.Minute)
	cfg.Notifier.PollTimeout = getDurationOrDefault("NOTIFIER_POLL_TIMEOUT", time.Minute)

	if rps := os.Getenv("PUBLISH_RATE_LIMIT_RPS"); rps != "" {
		if val, err := strconv.ParseFloat(rps, 64); err == nil {
			cfg.RateLimit.RequestsPerSecond = val
		} else {
			cfg.RateLimit.RequestsPerSecond = 5
		}
	} else {
		cfg.RateLimit.RequestsPerSecond = 5
	}

	if burst := os.Getenv("PUBLISH_RATE_LIMIT_BURST"); burst != "" {
		if val, err := strconv.Atoi(burst); err == nil {
			cfg.RateLimit.Burst = val
		} else {
			cfg.RateLimit.Burst = 10
		}
	} else {
		cfg.RateLimit.Burst = 10
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("STRUCTURED_DATA_BASE_URL is required")
	}

	if c.API.EndpointPath == "" {
		return fmt.Errorf("STRUCTURED_DATA_ENDPOINT_PATH is required")
	}

	if c.API.UserAgent == "" {
		return fmt.Errorf("STRUCTURED_DATA_USER_AGENT is required")
	}

	if c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("PUBLISH_RATE_LIMIT_RPS must be positive")
	}

	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationOrDefault parses a duration environment variable, falling back
// on the default when unset or malformed
func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
