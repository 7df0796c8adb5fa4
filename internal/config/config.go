// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultSecretKey is used when SECRET_KEY is unset. Only acceptable for local development.
const DefaultSecretKey = "dev_secret_key"

// Config holds all application configuration.
type Config struct {
	Port                 string
	GRPCPort             string // optional gRPC health listener, disabled when empty
	FrontendURL          string
	DBPath               string
	HistoryDir           string
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	SecretKey            string
	Model                ModelConfig
	Search               SearchConfig
	OAuth                OAuthConfig
}

// ModelConfig selects and tunes the LLM provider.
type ModelConfig struct {
	Provider         string // "gemini", "openrouter", "openai" or "demo"
	Name             string
	GoogleAPIKey     string
	OpenRouterAPIKey string
	OpenAIAPIKey     string
	MaxOutputTokens  int
	Temperature      float32
	Timeout          time.Duration
}

// SearchConfig configures the live web search adapter.
type SearchConfig struct {
	APIKey     string
	Endpoint   string
	Timeout    time.Duration
	MaxResults int
}

// OAuthConfig holds Google sign-in credentials.
type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	RedirectURL        string
}

// Enabled returns true if Google sign-in is configured.
func (o OAuthConfig) Enabled() bool {
	return o.GoogleClientID != "" && o.GoogleClientSecret != ""
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		Port:                 port,
		GRPCPort:             getEnv("GRPC_PORT", ""),
		FrontendURL:          getEnv("FRONTEND_URL", ""),
		DBPath:               getEnv("DB_PATH", "./data/codexr.db"),
		HistoryDir:           getEnv("HISTORY_DIR", "./data/history"),
		SessionTTL:           getEnvDuration("SESSION_TTL", 30*24*time.Hour),
		SessionSweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
		SecretKey:            getEnv("SECRET_KEY", DefaultSecretKey),
		Model: ModelConfig{
			Provider:         strings.ToLower(getEnv("MODEL_PROVIDER", "gemini")),
			Name:             getEnv("MODEL_NAME", ""),
			GoogleAPIKey:     getEnv("GEMINI_API_KEY", ""),
			OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
			OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
			MaxOutputTokens:  getEnvInt("MAX_OUTPUT_TOKENS", 2000),
			Temperature:      getEnvFloat32("MODEL_TEMPERATURE", 0.2),
			Timeout:          getEnvDuration("MODEL_TIMEOUT", 60*time.Second),
		},
		Search: SearchConfig{
			APIKey:     getEnv("SERPER_API_KEY", ""),
			Endpoint:   getEnv("SERPER_ENDPOINT", "https://google.serper.dev/search"),
			Timeout:    getEnvDuration("SEARCH_TIMEOUT", 10*time.Second),
			MaxResults: getEnvInt("SEARCH_MAX_RESULTS", 5),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:        getEnv("GOOGLE_REDIRECT_URL", "http://localhost:"+port+"/auth/google/callback"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.HistoryDir == "" {
		return fmt.Errorf("HISTORY_DIR cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.SessionSweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be > 0")
	}
	switch c.Model.Provider {
	case "gemini", "openrouter", "openai", "demo":
	default:
		return fmt.Errorf("MODEL_PROVIDER %q is not supported", c.Model.Provider)
	}
	if c.Model.MaxOutputTokens <= 0 {
		return fmt.Errorf("MAX_OUTPUT_TOKENS must be > 0")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("MODEL_TEMPERATURE must be between 0 and 2")
	}
	if c.Model.Timeout <= 0 {
		return fmt.Errorf("MODEL_TIMEOUT must be > 0")
	}
	if c.Search.Timeout <= 0 {
		return fmt.Errorf("SEARCH_TIMEOUT must be > 0")
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("SEARCH_MAX_RESULTS must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

// Warnings lists misconfigurations that do not prevent start-up.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.SecretKey == DefaultSecretKey {
		warnings = append(warnings, "SECRET_KEY not set, using development default")
	}
	switch c.Model.Provider {
	case "gemini":
		if c.Model.GoogleAPIKey == "" {
			warnings = append(warnings, "GEMINI_API_KEY not set, answers will report a provider error")
		}
	case "openrouter":
		if c.Model.OpenRouterAPIKey == "" {
			warnings = append(warnings, "OPENROUTER_API_KEY not set, answers will report a provider error")
		}
	case "openai":
		if c.Model.OpenAIAPIKey == "" {
			warnings = append(warnings, "OPENAI_API_KEY not set, answers will report a provider error")
		}
	}
	if c.Search.APIKey == "" {
		warnings = append(warnings, "SERPER_API_KEY not set, live mode will not add web results")
	}
	return warnings
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat32(key string, fallback float32) float32 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 32)
	if err != nil {
		return fallback
	}
	return float32(f)
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
