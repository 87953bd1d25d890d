// Package models provides the data structures shared by the scan client,
// the history store and the remote mirror. The JSON field names are part of
// the wire contract with the remote scanning service and of the persisted
// on-device data shape; both must stay stable across releases.
package models

import (
	"github.com/puremark/puremark-go/internal/constants"
)

// UserProfile describes the dietary rules a scan is evaluated against.
// It is created with defaults on first app use, mutated only by explicit
// user edits, and persisted as a single record on device. When the user is
// signed in it may additionally be mirrored to a per-user remote record.
type UserProfile struct {
	// Diet selects the active rule set: halal, kosher or none.
	Diet string `json:"diet" validate:"required,diet"`

	// Allergies is the ordered list of free-text allergen names the user
	// wants flagged on every scan.
	Allergies []string `json:"allergies"`
}

// NewUserProfile creates a profile with the first-use defaults.
func NewUserProfile() *UserProfile {
	return &UserProfile{
		Diet:      constants.DietHalal,
		Allergies: []string{},
	}
}

// Normalize repairs a profile read from storage: an unknown diet falls back
// to the default and a nil allergy list becomes empty. Stored blobs written
// by older clients may miss fields entirely.
func (p *UserProfile) Normalize() {
	switch p.Diet {
	case constants.DietHalal, constants.DietKosher, constants.DietNone:
	default:
		p.Diet = constants.DietHalal
	}
	if p.Allergies == nil {
		p.Allergies = []string{}
	}
}
