package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the limit applied to one route pattern.
// Path segments written as "*" match any single segment ("/sessions/*/extract").
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int           // Requests per window
	Window time.Duration
	Burst  int // Bucket capacity; Limit when 0
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleBucketTTL   time.Duration // Buckets unused for this long are dropped
	Allowlist       map[string]bool
	Blocklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// LoadConfig reads rate limiting configuration from RATE_LIMIT_* environment variables.
func LoadConfig() *Config {
	if !envBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    envInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   envDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: envDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleBucketTTL:   time.Hour,
		Allowlist:       parseIPList(os.Getenv("RATE_LIMIT_ALLOWLIST")),
		Blocklist:       parseIPList(os.Getenv("RATE_LIMIT_BLOCKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs limits the routes that call the language model or fetch pages.
func DefaultEndpointConfigs() []EndpointConfig {
	llmLimit := func(path string) EndpointConfig {
		return EndpointConfig{Path: path, Method: "POST", Limit: 30, Window: time.Hour, Burst: 5}
	}
	return []EndpointConfig{
		llmLimit("/sessions"),
		llmLimit("/sessions/*/extract"),
		llmLimit("/sessions/*/optimise"),
		llmLimit("/sessions/*/optimise/stream"),
		llmLimit("/interview/questions"),

		// Answers and record replacement can trigger a rewrite of one field
		{Path: "/sessions/*/answer", Method: "POST", Limit: 120, Window: time.Hour, Burst: 20},
		{Path: "/sessions/*/record", Method: "PUT", Limit: 60, Window: time.Hour, Burst: 10},
		{Path: "/sessions/*/publish", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
	}
}

func envInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func envBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func envDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
