// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonathan/advert-optimiser/internal/llm"
)

// DefaultPort is the HTTP port used when none is configured
const DefaultPort = 8080

// Config represents the application configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or come from the environment or CLI flags.
type Config struct {
	// LLM
	Provider      string            `json:"llm_provider,omitempty"`    // "gemini" (default) or "openai"
	Models        map[string]string `json:"models,omitempty"`          // Tier ("lite", "standard", "advanced") -> model override
	GeminiAPIKey  string            `json:"gemini_api_key,omitempty"`  // Google AI Studio key
	OpenAIAPIKey  string            `json:"openai_api_key,omitempty"`  // OpenAI key
	OpenAIBaseURL string            `json:"openai_base_url,omitempty"` // OpenAI-compatible endpoint override

	// Storage
	DatabaseURL    string `json:"database_url,omitempty"`     // PostgreSQL connection URL; enables publishing and the page cache
	PageCacheHours int    `json:"page_cache_hours,omitempty"` // How long fetched advert pages are reused

	// Server
	Port               int `json:"port,omitempty"`
	SessionIdleMinutes int `json:"session_idle_minutes,omitempty"` // Idle sessions are discarded after this long

	// Behavior
	UseBrowser bool `json:"use_browser,omitempty"` // Render short pages in a headless browser
	Verbose    bool `json:"verbose,omitempty"`     // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads configuration from environment variables
func FromEnv() Config {
	cfg := Config{
		Provider:      os.Getenv("LLM_PROVIDER"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
	}
	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
		cfg.Port = port
	}
	if useBrowser, err := strconv.ParseBool(os.Getenv("USE_BROWSER")); err == nil {
		cfg.UseBrowser = useBrowser
	}
	return cfg
}

// Load reads the optional config file at path and fills its gaps from the environment.
// Environment values win over the file; CLI flags are applied by the caller afterwards.
func Load(path string) (Config, error) {
	var file Config
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		file = *loaded
	}

	env := FromEnv()
	cfg := env.MergeWithDefaults(file)
	cfg.UseBrowser = env.UseBrowser || file.UseBrowser
	cfg.Verbose = file.Verbose
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration has valid values.
// Required values such as API keys are checked when the client is built.
func (c *Config) Validate() error {
	if _, err := llm.ConfigFor(c.Provider); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	for tier := range c.Models {
		switch llm.ModelTier(tier) {
		case llm.TierLite, llm.TierStandard, llm.TierAdvanced:
		default:
			return fmt.Errorf("config error: unknown model tier %q", tier)
		}
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.PageCacheHours < 0 {
		return fmt.Errorf("config error: 'page_cache_hours' must be non-negative")
	}
	if c.SessionIdleMinutes < 0 {
		return fmt.Errorf("config error: 'session_idle_minutes' must be non-negative")
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.OpenAIAPIKey == "" {
		result.OpenAIAPIKey = defaults.OpenAIAPIKey
	}
	if result.OpenAIBaseURL == "" {
		result.OpenAIBaseURL = defaults.OpenAIBaseURL
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.PageCacheHours == 0 {
		result.PageCacheHours = defaults.PageCacheHours
	}
	if result.SessionIdleMinutes == 0 {
		result.SessionIdleMinutes = defaults.SessionIdleMinutes
	}

	if len(defaults.Models) > 0 {
		models := make(map[string]string, len(defaults.Models)+len(result.Models))
		for k, v := range defaults.Models {
			models[k] = v
		}
		for k, v := range result.Models {
			models[k] = v
		}
		result.Models = models
	}

	// Bools cannot distinguish unset from false, so they are not merged here

	return result
}

// ListenPort returns the configured port or DefaultPort
func (c *Config) ListenPort() int {
	if c.Port == 0 {
		return DefaultPort
	}
	return c.Port
}

// APIKey returns the key for the configured provider
func (c *Config) APIKey() string {
	if llm.Provider(strings.ToLower(c.Provider)) == llm.ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// LLMConfig builds the LLM client configuration with model overrides applied
func (c *Config) LLMConfig() (*llm.Config, error) {
	cfg, err := llm.ConfigFor(c.Provider)
	if err != nil {
		return nil, err
	}
	for tier, model := range c.Models {
		if model != "" {
			cfg = cfg.WithModel(llm.ModelTier(tier), model)
		}
	}
	if cfg.Provider == llm.ProviderOpenAI {
		cfg.BaseURL = c.OpenAIBaseURL
	}
	return cfg, nil
}
