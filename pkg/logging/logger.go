// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Component names attached to every log line of a package.
const (
	ComponentMatrixClient  = "matrix-client"
	ComponentRanker        = "ranker"
	ComponentResponseCache = "response-cache"
	ComponentQuota         = "quota"
	ComponentAPI           = "api"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer

	// Service, when set, is added to every line as "service".
	Service string
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	level := ParseLevel(string(cfg.Level))
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	ctx := zerolog.New(output).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	logger := ctx.Logger()

	log.Logger = logger

	return logger
}

// ParseLevel converts a level name to zerolog.Level. Unknown names map to
// info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
// It derives from the global logger at call time, so call Setup first.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Per-batch flow (batch index, size, redacted URL)
//   - Cache hits and writes
//   - Pacer waits
//
// Info: Normal operation events
//   - Ranking run completion (ranked, dropped, batches, duration)
//   - Server startup/shutdown
//   - Access log lines
//
// Warn: Warning conditions that don't prevent operation
//   - Dropped destinations (non-OK element status)
//   - Quota cooldown blocks
//   - Retry attempts
//   - Cache errors (fallback to direct request)
//
// Error: Error conditions requiring attention
//   - Failed ranking runs (top-level status, misalignment, transport)
//   - Quota exceeded
//   - Configuration errors
//
// Context Fields:
//   - run_id: Ranking run identifier
//   - request_id: HTTP request identifier (X-Request-ID)
//   - batch: Zero-based batch index
//   - status: Distance Matrix status
//   - error_class: Error classification (client, server, rate_limit, network)
//   - url: Request URL with the key redacted
//
// The API key is never logged; use matrix.Request.Redacted for URLs.
