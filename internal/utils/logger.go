package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/puremark/puremark-go/internal/config"
)

// InitLogger initializes the application logger with the given configuration
func InitLogger(cfg *config.AppConfig) {
	// Set global log level
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Logging.Level))
	if err != nil {
		// Default to info level if invalid
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure logger output format
	var output io.Writer = os.Stdout
	if strings.ToLower(cfg.Logging.Format) == "console" && !cfg.App.IsProduction() {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
			NoColor:    false, // Enable colors for development
		}
	}

	// Set global logger
	log.Logger = zerolog.New(output).
		With().
		Timestamp().
		Str("app", cfg.App.Name).
		Str("version", cfg.App.Version).
		Str("env", cfg.App.Environment).
		Logger()

	log.Info().Msg("Logger initialized")
}

// LogError logs an error with context information
func LogError(err error, context map[string]interface{}) {
	event := log.Error().Err(err)

	// Add context information
	for key, value := range context {
		switch v := value.(type) {
		case string:
			event = event.Str(key, v)
		case int:
			event = event.Int(key, v)
		case int64:
			event = event.Int64(key, v)
		case float64:
			event = event.Float64(key, v)
		case bool:
			event = event.Bool(key, v)
		default:
			event = event.Interface(key, v)
		}
	}

	event.Msg("Error occurred")
}

// LogHTTPCall logs an outbound HTTP call with its outcome. Bearer credentials
// never reach the log; only their presence is recorded.
func LogHTTPCall(method, url string, authorized bool, statusCode int, latency time.Duration, err error) {
	event := log.Debug()
	if err != nil {
		event = log.Warn().Err(err)
	} else if statusCode >= 400 {
		event = log.Warn()
	}

	event.
		Str("method", method).
		Str("url", url).
		Bool("authorized", authorized).
		Int("status", statusCode).
		Dur("latency", latency).
		Msg("HTTP call")
}

// LogDBQuery logs a database query for debugging
func LogDBQuery(query string, args []interface{}, duration time.Duration, err error) {
	// Mask sensitive data in the arguments (e.g. tokens)
	safeArgs := make([]interface{}, len(args))
	for i, arg := range args {
		if s, ok := arg.(string); ok {
			if strings.Contains(strings.ToLower(query), "token") ||
				strings.Contains(strings.ToLower(query), "secret") {
				safeArgs[i] = "[REDACTED]"
			} else {
				safeArgs[i] = s
			}
		} else {
			safeArgs[i] = arg
		}
	}

	event := log.Debug()
	if err != nil {
		event = log.Error().Err(err)
	}

	event.
		Str("query", query).
		Interface("args", safeArgs).
		Dur("duration", duration).
		Msg("Database query executed")
}

// GetLogLevel returns the current global log level as a string
func GetLogLevel() string {
	return zerolog.GlobalLevel().String()
}

// SetLogLevel updates the global log level
func SetLogLevel(level string) error {
	parsedLevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level: %s", level)
	}

	zerolog.SetGlobalLevel(parsedLevel)
	log.Info().Str("level", parsedLevel.String()).Msg("Log level changed")

	return nil
}
