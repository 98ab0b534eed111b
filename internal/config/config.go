// Package config loads the ranker-server configuration.
//
// Sources, lowest precedence first:
//   - built-in defaults
//   - an optional YAML file (path argument or RANKER_CONFIG)
//   - environment variables, including those loaded from a .env file
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/traslados/commute-ranker/pkg/matrix"
)

// ErrMissingAPIKey is returned when no Distance Matrix API key is configured.
var ErrMissingAPIKey = errors.New("GOOGLE_MAPS_API_KEY is required")

// Config holds all configuration for the service.
type Config struct {
	// Distance Matrix
	APIKey               string        `yaml:"api_key"`
	BaseURL              string        `yaml:"base_url"`
	Language             string        `yaml:"language"`
	DefaultMode          string        `yaml:"default_mode"`
	DefaultAddressSuffix string        `yaml:"default_address_suffix"`
	BatchSize            int           `yaml:"batch_size"`
	UserAgent            string        `yaml:"user_agent"`
	HTTPTimeout          time.Duration `yaml:"http_timeout"`

	// Retry (1 disables retries)
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`

	// Pacing (0 disables)
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Redis (empty disables cache and quota tracking)
	RedisURL      string        `yaml:"redis_url"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	QuotaCooldown time.Duration `yaml:"quota_cooldown"`

	// Server
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogPretty bool   `yaml:"log_pretty"`
}

// Default returns the built-in configuration. APIKey is left empty.
func Default() *Config {
	return &Config{
		BaseURL:              matrix.DefaultBaseURL,
		Language:             matrix.DefaultLanguage,
		DefaultMode:          string(matrix.ModeDriving),
		DefaultAddressSuffix: ", España",
		BatchSize:            matrix.MaxDestinations,
		UserAgent:            "commute-ranker/0.1.0",
		HTTPTimeout:          30 * time.Second,
		MaxAttempts:          1,
		InitialBackoff:       1 * time.Second,
		RequestsPerSecond:    0,
		CacheTTL:             24 * time.Hour,
		QuotaCooldown:        60 * time.Second,
		Port:                 8080,
		RequestTimeout:       2 * time.Minute,
		LogLevel:             "info",
	}
}

// Load builds the configuration. path names an optional YAML file; when
// empty, RANKER_CONFIG is consulted. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("RANKER_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.APIKey = getEnv("GOOGLE_MAPS_API_KEY", c.APIKey)
	c.BaseURL = getEnv("MATRIX_BASE_URL", c.BaseURL)
	c.Language = getEnv("MATRIX_LANGUAGE", c.Language)
	c.DefaultMode = getEnv("DEFAULT_MODE", c.DefaultMode)
	c.DefaultAddressSuffix = getEnv("DEFAULT_ADDRESS_SUFFIX", c.DefaultAddressSuffix)
	c.BatchSize = getEnvAsInt("BATCH_SIZE", c.BatchSize)
	c.UserAgent = getEnv("USER_AGENT", c.UserAgent)
	c.HTTPTimeout = getEnvAsDuration("HTTP_TIMEOUT", c.HTTPTimeout)
	c.MaxAttempts = getEnvAsInt("MAX_ATTEMPTS", c.MaxAttempts)
	c.InitialBackoff = getEnvAsDuration("INITIAL_BACKOFF", c.InitialBackoff)
	c.RequestsPerSecond = getEnvAsFloat("REQUESTS_PER_SECOND", c.RequestsPerSecond)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.CacheTTL = getEnvAsDuration("CACHE_TTL", c.CacheTTL)
	c.QuotaCooldown = getEnvAsDuration("QUOTA_COOLDOWN", c.QuotaCooldown)
	c.Port = getEnvAsInt("PORT", c.Port)
	c.RequestTimeout = getEnvAsDuration("REQUEST_TIMEOUT", c.RequestTimeout)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogPretty = getEnvAsBool("LOG_PRETTY", c.LogPretty)
}

// Validate checks required fields and ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.BatchSize < 1 || c.BatchSize > matrix.MaxDestinations {
		return fmt.Errorf("batch_size must be between 1 and %d (got %d)", matrix.MaxDestinations, c.BatchSize)
	}
	if _, err := matrix.ParseMode(c.DefaultMode); err != nil {
		return fmt.Errorf("default_mode: %w", err)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is required")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be > 0 (got %v)", c.HTTPTimeout)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be >= 1 (got %d)", c.MaxAttempts)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must be >= 0 (got %v)", c.RequestsPerSecond)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535 (got %d)", c.Port)
	}
	return nil
}

// Mode returns the parsed default travel mode.
func (c *Config) Mode() matrix.Mode {
	m, err := matrix.ParseMode(c.DefaultMode)
	if err != nil {
		return matrix.ModeDriving
	}
	return m
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
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
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
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
