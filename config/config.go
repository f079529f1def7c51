// Package config loads engine configuration from environment variables,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Supported completion providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds engine configuration.
type Config struct {
	Provider             string
	OpenAIModel          string
	AnthropicModel       string
	Temperature          float64
	MaxTokens            int64
	StageTimeout         time.Duration
	MaxErrorsBeforeAbort int
	MarketDataBaseURL    string
	LogLevel             string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Provider:             getEnv("STOCKSAGE_PROVIDER", ProviderOpenAI),
		OpenAIModel:          getEnv("STOCKSAGE_OPENAI_MODEL", ""),
		AnthropicModel:       getEnv("STOCKSAGE_ANTHROPIC_MODEL", ""),
		Temperature:          getEnvAsFloat("STOCKSAGE_TEMPERATURE", 0.7),
		MaxTokens:            int64(getEnvAsInt("STOCKSAGE_MAX_TOKENS", 4096)),
		StageTimeout:         getEnvAsDuration("STOCKSAGE_STAGE_TIMEOUT", 0),
		MaxErrorsBeforeAbort: getEnvAsInt("STOCKSAGE_MAX_ERRORS_BEFORE_ABORT", 0),
		MarketDataBaseURL:    getEnv("STOCKSAGE_MARKET_DATA_URL", ""),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unsupported provider %q", c.Provider)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be in [0,2], got %v", c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	return nil
}

// SlogLevel maps the configured log level onto slog. Unknown values fall
// back to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
