package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EnvFormat selects "json" or "pretty" output regardless of flags.
const EnvFormat = "LURL_LOG_FORMAT"

// Config holds logger configuration
type Config struct {
	Level      string
	Format     string // "pretty" or "json"
	WithCaller bool
	Output     io.Writer
	TimeFormat string
}

// DefaultConfig returns sensible defaults for logging. Output goes to stderr so
// it never mixes with function response bodies on stdout.
func DefaultConfig() *Config {
	format := "pretty"
	if env := strings.ToLower(os.Getenv(EnvFormat)); env == "json" || env == "pretty" {
		format = env
	}
	return &Config{
		Level:      "info",
		Format:     format,
		WithCaller: false,
		Output:     os.Stderr,
		TimeFormat: time.RFC3339,
	}
}

// InitLogger creates and configures a new zerolog logger
func InitLogger(config *Config) zerolog.Logger {
	if config == nil {
		config = DefaultConfig()
	}

	level := parseLevel(config.Level)
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = config.TimeFormat

	var output io.Writer = config.Output
	if config.Format == "pretty" {
		output = &zerolog.ConsoleWriter{
			Out:        config.Output,
			TimeFormat: "15:04:05",
			NoColor:    false,
		}
	}

	logger := zerolog.New(output).With().
		Timestamp().
		Str("app", "lurl").
		Logger()

	if config.WithCaller {
		logger = logger.With().Caller().Logger()
	}

	return logger
}

// parseLevel converts string level to zerolog.Level
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetupFromFlags configures logger based on command flags
func SetupFromFlags(verbose bool, debug bool) zerolog.Logger {
	config := DefaultConfig()

	if debug {
		config.Level = "debug"
		config.WithCaller = true
	} else if verbose {
		config.Level = "info"
	} else {
		config.Level = "warn"
	}

	return InitLogger(config)
}

// ForComponent creates a logger with component context
func ForComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// ForBackend tags a logger with the invocation backend and AWS region every
// call from it will use.
func ForBackend(logger zerolog.Logger, backend, region string) zerolog.Logger {
	return logger.With().
		Str("backend", backend).
		Str("region", region).
		Logger()
}

// ForRequest creates a logger with request context
func ForRequest(logger zerolog.Logger, method, target string) zerolog.Logger {
	return logger.With().
		Str("method", method).
		Str("target", target).
		Logger()
}

// ForMCP creates a logger with MCP context
func ForMCP(logger zerolog.Logger, tool string) zerolog.Logger {
	return logger.With().
		Str("mcp_tool", tool).
		Str("component", "mcp").
		Logger()
}
