// Package constants provides shared constant values used throughout the application.
//
// The api_const.go file defines the paths and header values of the remote
// scanning API. These constants are part of the wire contract shared with the
// deployed service endpoints and must stay in sync with them.
package constants

// API Paths define the endpoints exposed by every scanning backend.
const (
	// ScanPath accepts a base64 image and returns the ingredient analysis.
	ScanPath = "/scan"

	// HealthPath reports backend reachability.
	HealthPath = "/health"

	// FeedbackPath accepts user feedback submissions.
	FeedbackPath = "/submit_feedback"
)

// Logical Backends name the remote endpoints the client can target.
const (
	// BackendPrimary is the main hosted scanning service.
	BackendPrimary = "primary"

	// BackendEdgeFunction is the serverless function deployment.
	BackendEdgeFunction = "edge-function"

	// BackendLocalDev is a developer-run endpoint for offline work.
	BackendLocalDev = "local-dev"
)

// HTTP Headers used on outbound requests.
const (
	// HeaderAuthorization carries the bearer credential.
	HeaderAuthorization = "Authorization"

	// HeaderContentType declares the request body encoding.
	HeaderContentType = "Content-Type"

	// ContentTypeJSON is the only body encoding the scanning API accepts.
	ContentTypeJSON = "application/json"

	// BearerPrefix prefixes bearer tokens in the Authorization header.
	BearerPrefix = "Bearer "
)

// Health Response Values recognized as a healthy backend.
const (
	// HealthStatusOK is returned by the edge function and dev stub.
	HealthStatusOK = "ok"

	// HealthStatusHealthy is returned by the primary hosted service.
	HealthStatusHealthy = "healthy"
)
