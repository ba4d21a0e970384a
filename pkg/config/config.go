package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Extraction ExtractionConfig
	Cache      CacheConfig
	Metrics    MetricsConfig
	Logging    LoggingConfig
}

type ExtractionConfig struct {
	// CurrencyCode is the ISO 4217 code amounts are formatted in.
	CurrencyCode string
	// MinContentLength is the least extracted text a document must yield
	// to count as a recognized payslip.
	MinContentLength int
}

type CacheConfig struct {
	TTL time.Duration
	// Capacity is the maximum number of memoized results.
	Capacity int
	// MinConfidence gates caching: results scoring at or below it are
	// returned but never stored.
	MinConfidence float64
}

type MetricsConfig struct {
	Enabled bool
	Port    int
}

type LoggingConfig struct {
	// Level is a slog level name: debug, info, warn, error.
	Level string
	// JSON switches the handler from text to JSON output.
	JSON bool
}

// Load reads configuration from the environment, after loading a .env file
// when one is present. Missing variables fall back to defaults; Load only
// fails on values that parse but make no sense.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Extraction: ExtractionConfig{
			CurrencyCode:     getEnv("EXTRACT_CURRENCY", "INR"),
			MinContentLength: getEnvAsInt("EXTRACT_MIN_CONTENT_LENGTH", 40),
		},
		Cache: CacheConfig{
			TTL:           getEnvAsDuration("CACHE_TTL", time.Hour),
			Capacity:      getEnvAsInt("CACHE_CAPACITY", 50),
			MinConfidence: getEnvAsFloat("CACHE_MIN_CONFIDENCE", 0.5),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvAsBool("METRICS_ENABLED", false),
			Port:    getEnvAsInt("METRICS_PORT", 9090),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			JSON:  getEnvAsBool("LOG_JSON", false),
		},
	}

	if cfg.Cache.Capacity <= 0 {
		return nil, fmt.Errorf("CACHE_CAPACITY must be positive, got %d", cfg.Cache.Capacity)
	}
	if cfg.Cache.MinConfidence < 0 || cfg.Cache.MinConfidence > 1 {
		return nil, fmt.Errorf("CACHE_MIN_CONFIDENCE must be in [0,1], got %v", cfg.Cache.MinConfidence)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
