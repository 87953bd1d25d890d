// Package constants provides shared constant values used throughout the application.
//
// The verdicts.go file defines the verdict vocabulary spoken by the remote
// scanning service and the compliance statuses derived from it on device.
// These string values are part of the wire contract and the persisted data
// shape; changing them breaks compatibility with existing history records.
package constants

// Diets define the dietary profiles a scan can be evaluated against.
const (
	// DietHalal evaluates ingredients against halal rules.
	DietHalal = "halal"

	// DietKosher evaluates ingredients against kosher rules.
	DietKosher = "kosher"

	// DietNone disables diet evaluation; scans still detect allergens.
	DietNone = "none"
)

// Halal Statuses are the per-ingredient and product-level halal verdicts
// returned by the remote service.
const (
	// HalalStatusConfirmed marks an ingredient or product as halal.
	HalalStatusConfirmed = "HALAL"

	// HalalStatusHaram marks an ingredient or product as haram.
	HalalStatusHaram = "HARAM"

	// HalalStatusMushbooh marks an ingredient whose status is doubtful.
	HalalStatusMushbooh = "MUSHBOOH"

	// HalalStatusUnverified marks an ingredient that could not be verified.
	HalalStatusUnverified = "NOT_HALAL_UNVERIFIED"
)

// Kosher Statuses are the per-ingredient and product-level kosher verdicts
// returned by the remote service.
const (
	// KosherStatusConfirmed marks an ingredient or product as kosher.
	KosherStatusConfirmed = "KOSHER_CONFIRMED"

	// KosherStatusNotKosher marks an ingredient or product as not kosher.
	KosherStatusNotKosher = "NOT_KOSHER"

	// KosherStatusRequiresCert marks an ingredient that needs certification evidence.
	KosherStatusRequiresCert = "REQUIRES_KOSHER_CERTIFICATION"
)

// Confidence Levels qualify how certain the remote service is about a verdict.
const (
	// ConfidenceHigh marks a verdict backed by strong evidence.
	ConfidenceHigh = "HIGH"

	// ConfidenceMedium marks a verdict backed by partial evidence.
	ConfidenceMedium = "MEDIUM"

	// ConfidenceLow marks a verdict backed by weak or heuristic evidence.
	ConfidenceLow = "LOW"
)

// Compliance Statuses are the device-side reduction of a diet verdict,
// used for history records and per-ingredient display.
const (
	// ComplianceCompliant means the active diet's rules are satisfied.
	ComplianceCompliant = "compliant"

	// ComplianceConditional means the verdict is doubtful, unverified or absent.
	ComplianceConditional = "conditionally"

	// ComplianceNotCompliant means the active diet's rules are violated.
	ComplianceNotCompliant = "not_compliant"
)
