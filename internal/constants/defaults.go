// Package constants provides shared constant values used throughout the application.
//
// The defaults.go file defines default values and limits used throughout the client.
// These constants provide sensible defaults for configuration settings and establish
// boundaries for payload sizes and history retention. Changes to these values may
// affect compatibility with the remote scanning service and the on-device data shape.
package constants

// Default Configuration Values define fallback settings when not specified in configuration.
const (
	// DefaultLogLevel is the default logging verbosity level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default logging output format.
	DefaultLogFormat = "json"

	// DefaultStorePath is the default location of the on-device key-value store.
	DefaultStorePath = "puremark.db"

	// DefaultBackend is the logical backend used when none is configured.
	DefaultBackend = BackendPrimary
)

// Environment Types define the recognized application running environments.
const (
	// EnvDevelopment identifies a development environment with debugging features enabled.
	EnvDevelopment = "development"

	// EnvTesting identifies a testing environment for automated tests.
	EnvTesting = "testing"

	// EnvProduction identifies a production environment with optimized settings.
	EnvProduction = "production"
)

// Scan Payload Limits bound the image payloads accepted before dispatch.
// They mirror the limits enforced by the remote scanning service, so a payload
// rejected here would have been rejected remotely anyway.
const (
	// MaxImageBytes is the maximum estimated decoded size of a scan image.
	MaxImageBytes = 10 * 1024 * 1024

	// MaxImageMiB is MaxImageBytes expressed in MiB, used in user-facing messages.
	MaxImageMiB = 10
)

// History Retention bounds the on-device scan history.
const (
	// MaxHistoryItems is the maximum number of scan records retained on device.
	// Recording beyond this cap evicts the oldest record.
	MaxHistoryItems = 50
)

// Logging Values define shared logging-related constants.
const (
	// LogRedactedValue replaces sensitive values in log output.
	LogRedactedValue = "[REDACTED]"
)
