package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/puremark/puremark-go/internal/constants"
)

// AppConfig represents the entire application configuration
type AppConfig struct {
	App     AppSettings     `yaml:"app"`
	Backend BackendSettings `yaml:"backend"`
	Storage StorageSettings `yaml:"storage"`
	Mirror  MirrorSettings  `yaml:"mirror"`
	Logging LoggingSettings `yaml:"logging"`
}

// AppSettings contains general application settings
type AppSettings struct {
	Environment string `yaml:"environment" env:"APP_ENV"`
	Name        string `yaml:"name" env:"APP_NAME"`
	Version     string `yaml:"version" env:"APP_VERSION"`
}

// BackendSettings selects which remote scanning endpoint the client targets.
// Mode picks one of the three logical backends; OverrideURL, when set, takes
// precedence over the configured URL for the selected backend. The selection
// is resolved once at startup and never changes mid-session.
type BackendSettings struct {
	Mode            string `yaml:"mode" env:"PUREMARK_BACKEND"`
	PrimaryURL      string `yaml:"primary_url" env:"PUREMARK_PRIMARY_URL"`
	EdgeFunctionURL string `yaml:"edge_function_url" env:"PUREMARK_EDGE_FUNCTION_URL"`
	LocalDevURL     string `yaml:"local_dev_url" env:"PUREMARK_LOCAL_DEV_URL"`
	OverrideURL     string `yaml:"override_url" env:"PUREMARK_OVERRIDE_URL"`
	AnonKey         string `yaml:"anon_key" env:"PUREMARK_ANON_KEY"`
}

// StorageSettings contains on-device persistence settings
type StorageSettings struct {
	Path string `yaml:"path" env:"PUREMARK_STORE_PATH"`
}

// MirrorSettings contains remote-mirror settings. The mirror is optional;
// it only activates for signed-in, non-guest sessions.
type MirrorSettings struct {
	Enabled bool   `yaml:"enabled" env:"PUREMARK_MIRROR_ENABLED"`
	DSN     string `yaml:"dsn" env:"PUREMARK_MIRROR_DSN"`
}

// LoggingSettings contains logging configuration
type LoggingSettings struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// IsDevelopment checks if the application is running in development mode
func (as *AppSettings) IsDevelopment() bool {
	return strings.ToLower(as.Environment) == constants.EnvDevelopment
}

// IsProduction checks if the application is running in production mode
func (as *AppSettings) IsProduction() bool {
	return strings.ToLower(as.Environment) == constants.EnvProduction
}

// IsTesting checks if the application is running in testing mode
func (as *AppSettings) IsTesting() bool {
	return strings.ToLower(as.Environment) == constants.EnvTesting
}

// URLFor returns the statically configured URL for the given logical backend.
func (bs *BackendSettings) URLFor(mode string) string {
	switch mode {
	case constants.BackendPrimary:
		return bs.PrimaryURL
	case constants.BackendEdgeFunction:
		return bs.EdgeFunctionURL
	case constants.BackendLocalDev:
		return bs.LocalDevURL
	}
	return ""
}

// Load loads the configuration from a config file and environment variables
func Load(configPath string) (*AppConfig, error) {
	config := &AppConfig{}

	// Load configuration from file if it exists
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		err = yaml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// Override with environment variables
	if err := LoadEnv(config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	// Set defaults for missing values
	setDefaults(config)

	// Validate the configuration
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Log the configuration (but hide sensitive values)
	logConfig(config)

	return config, nil
}

// setDefaults sets default values for any missing configuration
func setDefaults(config *AppConfig) {
	if config.App.Environment == "" {
		config.App.Environment = constants.EnvDevelopment
	}
	if config.App.Name == "" {
		config.App.Name = "puremark"
	}
	if config.App.Version == "" {
		config.App.Version = "1.0.0"
	}

	if config.Backend.Mode == "" {
		config.Backend.Mode = constants.DefaultBackend
	}
	if config.Backend.LocalDevURL == "" {
		config.Backend.LocalDevURL = "http://localhost:8000"
	}

	if config.Storage.Path == "" {
		config.Storage.Path = constants.DefaultStorePath
	}

	if config.Logging.Level == "" {
		config.Logging.Level = constants.DefaultLogLevel
	}
	if config.Logging.Format == "" {
		config.Logging.Format = constants.DefaultLogFormat
	}
}

// validateConfig validates that the configuration has all required values
func validateConfig(config *AppConfig) error {
	// Validate environment
	env := strings.ToLower(config.App.Environment)
	if env != constants.EnvDevelopment && env != constants.EnvTesting && env != constants.EnvProduction {
		return fmt.Errorf("invalid environment: %s", config.App.Environment)
	}

	// Validate the backend selection
	mode := config.Backend.Mode
	if mode != constants.BackendPrimary && mode != constants.BackendEdgeFunction && mode != constants.BackendLocalDev {
		return fmt.Errorf("invalid backend mode: %s", mode)
	}

	// The selected backend must resolve to a URL one way or another
	if config.Backend.OverrideURL == "" && config.Backend.URLFor(mode) == "" {
		return fmt.Errorf("no URL configured for backend %s", mode)
	}

	// The mirror needs a DSN when enabled
	if config.Mirror.Enabled && config.Mirror.DSN == "" {
		return fmt.Errorf("mirror enabled but no DSN configured")
	}

	// Validate log level
	logLevel := strings.ToLower(config.Logging.Level)
	validLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	validLevel := false
	for _, level := range validLevels {
		if logLevel == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// logConfig logs the current configuration, masking sensitive values
func logConfig(config *AppConfig) {
	anonKey := config.Backend.AnonKey
	if anonKey != "" {
		anonKey = constants.LogRedactedValue
	}
	dsn := config.Mirror.DSN
	if dsn != "" {
		dsn = constants.LogRedactedValue
	}

	log.Info().
		Str("environment", config.App.Environment).
		Str("version", config.App.Version).
		Str("backend", config.Backend.Mode).
		Str("override_url", config.Backend.OverrideURL).
		Str("store_path", config.Storage.Path).
		Bool("mirror_enabled", config.Mirror.Enabled).
		Str("mirror_dsn", dsn).
		Str("anon_key", anonKey).
		Str("log_level", config.Logging.Level).
		Msg("Configuration loaded")
}
