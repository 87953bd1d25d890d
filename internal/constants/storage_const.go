// Package constants provides shared constant values used throughout the application.
//
// The storage_const.go file defines the keys of the on-device key-value store.
// Each key holds a whole JSON blob; the key names are part of the persisted
// data shape and must not change without a schema version bump.
package constants

// Storage Keys name the blobs held by the device key-value store.
const (
	// StorageKeyProfile holds the serialized user profile object.
	StorageKeyProfile = "user_profile"

	// StorageKeyHistory holds the serialized scan-history array, newest first.
	StorageKeyHistory = "scan_history"

	// StorageKeySession holds the persisted auth session, when signed in.
	StorageKeySession = "auth_session"

	// StorageKeyGuest holds the persisted guest flag.
	StorageKeyGuest = "guest_mode"

	// StorageKeyOnboarded holds the onboarding completed flag.
	StorageKeyOnboarded = "onboarding_complete"

	// StorageKeySchemaVersion holds the store's schema version number.
	StorageKeySchemaVersion = "schema_version"
)

// Schema Versioning guards against reading blobs written by a newer client.
const (
	// StorageSchemaVersion is the version written by this client. Blobs under
	// a higher version are treated as unreadable and degrade to defaults.
	StorageSchemaVersion = 1
)
