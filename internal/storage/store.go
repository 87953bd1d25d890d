// Package storage implements the on-device key-value store. Each key holds a
// whole JSON blob, mirroring the persistence model of the mobile app where a
// sqlite-backed device store keeps one string value per key. A schema-version
// row guards against reading blobs written by a newer client.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/puremark/puremark-go/internal/constants"
	"github.com/puremark/puremark-go/internal/utils"
)

// Store defines the device key-value operations the rest of the client
// depends on. Implementations hold one string value per key.
type Store interface {
	// Get returns the value for key. The boolean reports whether the key
	// was present; an absent key is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value string) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying resources.
	Close() error
}

// SQLiteStore is a sqlite-backed Store implementation.
type SQLiteStore struct {
	db *sql.DB

	// readable is false when the store was written by a newer client than
	// this one. Reads then degrade to "absent" so callers fall back to
	// defaults instead of misinterpreting a future format.
	readable bool
}

// Open opens (or creates) the key-value store at path and verifies its
// schema version.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening store: %w", err)
	}

	// WAL keeps concurrent readers cheap on device storage
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("error enabling WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing schema: %w", err)
	}

	s := &SQLiteStore{db: db, readable: true}

	if err := s.checkSchemaVersion(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// checkSchemaVersion stamps a fresh store with the current schema version
// and flags stores written by a newer client as unreadable.
func (s *SQLiteStore) checkSchemaVersion() error {
	ctx := context.Background()

	raw, found, err := s.Get(ctx, constants.StorageKeySchemaVersion)
	if err != nil {
		return err
	}

	if !found {
		return s.Set(ctx, constants.StorageKeySchemaVersion,
			strconv.Itoa(constants.StorageSchemaVersion))
	}

	version, err := strconv.Atoi(raw)
	if err != nil || version > constants.StorageSchemaVersion {
		log.Warn().
			Str("stored_version", raw).
			Int("supported_version", constants.StorageSchemaVersion).
			Msg("Store schema is newer than this client; reads degrade to defaults")
		s.readable = false
	}

	return nil
}

// Get returns the value stored under key.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	if !s.readable && key != constants.StorageKeySchemaVersion {
		return "", false, nil
	}

	startTime := time.Now()

	query := `SELECT value FROM kv WHERE key = ?`

	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)

	utils.LogDBQuery(query, []interface{}{key}, time.Since(startTime), err)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, utils.NewStorageError("read", err)
	}

	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *SQLiteStore) Set(ctx context.Context, key string, value string) error {
	startTime := time.Now()

	query := `
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC())

	utils.LogDBQuery(query, []interface{}{key, value}, time.Since(startTime), err)

	if err != nil {
		return utils.NewStorageError("write", err)
	}

	return nil
}

// Delete removes key from the store.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	startTime := time.Now()

	query := `DELETE FROM kv WHERE key = ?`

	_, err := s.db.ExecContext(ctx, query, key)

	utils.LogDBQuery(query, []interface{}{key}, time.Since(startTime), err)

	if err != nil {
		return utils.NewStorageError("delete", err)
	}

	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
