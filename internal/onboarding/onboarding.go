// Package onboarding exposes the single boolean "completed" flag that the
// first-run experience reads and writes.
package onboarding

import (
	"context"
	"strconv"

	"github.com/puremark/puremark-go/internal/constants"
	"github.com/puremark/puremark-go/internal/storage"
)

// Flag provides get/set/clear over the onboarding completed flag.
type Flag struct {
	store storage.Store
}

// NewFlag creates a Flag backed by the given device store.
func NewFlag(store storage.Store) *Flag {
	return &Flag{store: store}
}

// Completed reports whether onboarding has been completed. Read failures
// degrade to false so the flow re-runs rather than blocking the app.
func (f *Flag) Completed(ctx context.Context) bool {
	raw, found, err := f.store.Get(ctx, constants.StorageKeyOnboarded)
	if err != nil || !found {
		return false
	}
	completed, _ := strconv.ParseBool(raw)
	return completed
}

// SetCompleted persists the completed flag.
func (f *Flag) SetCompleted(ctx context.Context, completed bool) error {
	return f.store.Set(ctx, constants.StorageKeyOnboarded, strconv.FormatBool(completed))
}

// Clear removes the flag entirely, forcing the first-run experience.
func (f *Flag) Clear(ctx context.Context) error {
	return f.store.Delete(ctx, constants.StorageKeyOnboarded)
}
