// Package history owns the on-device scan-history and user-profile records.
// It derives history records from raw scan results, persists them as a whole
// JSON blob in the device store, and supports retrieval, rename, delete and
// bulk clear. Reads degrade to empty or default values on any failure; writes
// surface their errors, since silent data loss on save is worse than an
// explicit failure.
package history

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/puremark/puremark-go/internal/constants"
	"github.com/puremark/puremark-go/internal/models"
	"github.com/puremark/puremark-go/internal/storage"
	"github.com/puremark/puremark-go/internal/utils"
)

// Identity reports who is signed in, if anyone, and whether the user chose
// guest mode. *auth.Manager satisfies it.
type Identity interface {
	Identity() (string, bool)
	IsGuest() bool
}

// Mirror receives best-effort copies of records for signed-in users.
// *mirror.Mirror satisfies it.
type Mirror interface {
	SaveScan(ctx context.Context, userID string, item *models.ScanHistoryItem) error
	SaveProfile(ctx context.Context, userID string, profile *models.UserProfile) error
	DeleteScan(ctx context.Context, userID, itemID string) error
	ClearScans(ctx context.Context, userID string) error
}

// Store implements the history and profile operations over the device
// key-value store. Mutations are serialized with a mutex: the persisted
// collection is a whole blob, and an unserialized read-modify-write would
// lose updates under concurrent callers.
type Store struct {
	kv       storage.Store
	identity Identity
	mirror   Mirror

	mu  sync.Mutex
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithMirror attaches a remote mirror. Mirroring only happens for signed-in,
// non-guest users and never affects the outcome of a local operation.
func WithMirror(identity Identity, mirror Mirror) Option {
	return func(s *Store) {
		s.identity = identity
		s.mirror = mirror
	}
}

// WithClock overrides the record timestamp source; tests use it to keep
// records reproducible.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a history store over the given device store.
func NewStore(kv storage.Store, opts ...Option) *Store {
	s := &Store{
		kv:  kv,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordScan derives a history record from a raw scan result, prepends it to
// the stored list and evicts the oldest record beyond the retention cap.
// The new record is returned; a storage write failure is returned as-is.
func (s *Store) RecordScan(ctx context.Context, result *models.ScanResult, diet string) (*models.ScanHistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := models.NewScanHistoryItem(result, diet, s.now())

	items := s.loadHistory(ctx)
	items = append([]models.ScanHistoryItem{*item}, items...)
	if len(items) > constants.MaxHistoryItems {
		items = items[:constants.MaxHistoryItems]
	}

	if err := s.saveHistory(ctx, items); err != nil {
		return nil, err
	}

	s.mirrorScan(ctx, item)

	log.Info().
		Str("id", item.ID).
		Str("status", item.Status).
		Str("product", item.ProductName).
		Int("stored", len(items)).
		Msg("Scan recorded")

	return item, nil
}

// ListScans returns the stored history, newest first. An empty slice is
// returned when nothing is stored or the blob is unreadable.
func (s *Store) ListScans(ctx context.Context) []models.ScanHistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadHistory(ctx)
}

// GetScan returns the stored record with the given id, or a NotFoundError.
func (s *Store) GetScan(ctx context.Context, id string) (*models.ScanHistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.loadHistory(ctx) {
		if item.ID == id {
			found := item
			return &found, nil
		}
	}
	return nil, utils.NewNotFoundError("Scan", id)
}

// RenameScan sets the display product name of the record with the given id.
// The name is trimmed. A missing id is a no-op; nothing is rewritten.
func (s *Store) RenameScan(ctx context.Context, id, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.loadHistory(ctx)
	for i := range items {
		if items[i].ID == id {
			items[i].ProductName = strings.TrimSpace(newName)
			return s.saveHistory(ctx, items)
		}
	}
	return nil
}

// DeleteScan removes the record with the given id. A missing id is a no-op.
func (s *Store) DeleteScan(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.loadHistory(ctx)
	for i := range items {
		if items[i].ID == id {
			items = append(items[:i], items[i+1:]...)
			if err := s.saveHistory(ctx, items); err != nil {
				return err
			}
			s.mirrorDelete(ctx, id)
			return nil
		}
	}
	return nil
}

// ClearAll empties the stored history.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveHistory(ctx, []models.ScanHistoryItem{}); err != nil {
		return err
	}
	s.mirrorClear(ctx)
	return nil
}

// GetProfile returns the stored user profile, or the first-use defaults when
// none is stored or the blob is unreadable.
func (s *Store) GetProfile(ctx context.Context) *models.UserProfile {
	raw, found, err := s.kv.Get(ctx, constants.StorageKeyProfile)
	if err != nil {
		log.Warn().Err(err).Msg("Could not read profile; using defaults")
		return models.NewUserProfile()
	}
	if !found {
		return models.NewUserProfile()
	}

	profile := &models.UserProfile{}
	if err := json.Unmarshal([]byte(raw), profile); err != nil {
		log.Warn().Err(err).Msg("Stored profile is malformed; using defaults")
		return models.NewUserProfile()
	}

	profile.Normalize()
	return profile
}

// SaveProfile validates and persists the user profile.
func (s *Store) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	if err := utils.ValidateStruct(profile); err != nil {
		return err
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return utils.NewStorageError("write", err)
	}

	if err := s.kv.Set(ctx, constants.StorageKeyProfile, string(data)); err != nil {
		return err
	}

	s.mirrorProfile(ctx, profile)
	return nil
}

// loadHistory reads and decodes the stored history blob. Every failure
// degrades to an empty list; read failures are never surfaced.
func (s *Store) loadHistory(ctx context.Context) []models.ScanHistoryItem {
	raw, found, err := s.kv.Get(ctx, constants.StorageKeyHistory)
	if err != nil {
		log.Warn().Err(err).Msg("Could not read scan history")
		return []models.ScanHistoryItem{}
	}
	if !found {
		return []models.ScanHistoryItem{}
	}

	var items []models.ScanHistoryItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Warn().Err(err).Msg("Stored scan history is malformed")
		return []models.ScanHistoryItem{}
	}
	return items
}

// saveHistory encodes and writes the whole history blob.
func (s *Store) saveHistory(ctx context.Context, items []models.ScanHistoryItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return utils.NewStorageError("write", err)
	}
	return s.kv.Set(ctx, constants.StorageKeyHistory, string(data))
}

// mirrorUser returns the identity to mirror under, or false when mirroring
// is disabled, the user is a guest, or nobody is signed in.
func (s *Store) mirrorUser() (string, bool) {
	if s.mirror == nil || s.identity == nil {
		return "", false
	}
	if s.identity.IsGuest() {
		return "", false
	}
	return s.identity.Identity()
}

func (s *Store) mirrorScan(ctx context.Context, item *models.ScanHistoryItem) {
	userID, ok := s.mirrorUser()
	if !ok {
		return
	}
	if err := s.mirror.SaveScan(ctx, userID, item); err != nil {
		log.Warn().Err(err).Str("id", item.ID).Msg("Scan mirror failed")
	}
}

func (s *Store) mirrorProfile(ctx context.Context, profile *models.UserProfile) {
	userID, ok := s.mirrorUser()
	if !ok {
		return
	}
	if err := s.mirror.SaveProfile(ctx, userID, profile); err != nil {
		log.Warn().Err(err).Msg("Profile mirror failed")
	}
}

func (s *Store) mirrorDelete(ctx context.Context, itemID string) {
	userID, ok := s.mirrorUser()
	if !ok {
		return
	}
	if err := s.mirror.DeleteScan(ctx, userID, itemID); err != nil {
		log.Warn().Err(err).Str("id", itemID).Msg("Scan mirror delete failed")
	}
}

func (s *Store) mirrorClear(ctx context.Context) {
	userID, ok := s.mirrorUser()
	if !ok {
		return
	}
	if err := s.mirror.ClearScans(ctx, userID); err != nil {
		log.Warn().Err(err).Msg("Scan mirror clear failed")
	}
}
