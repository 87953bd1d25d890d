// Package mirror copies profile and scan-history records to the remote
// per-user store over the Postgres wire protocol. The local device store
// stays authoritative: mirroring is best effort, happens only for signed-in
// non-guest users, and its failures are logged by the caller, never surfaced.
package mirror

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/puremark/puremark-go/internal/models"
	"github.com/puremark/puremark-go/internal/utils"
)

// Mirror writes per-user records to the remote database.
type Mirror struct {
	db *sql.DB
}

// New creates a Mirror over an open database handle.
func New(db *sql.DB) *Mirror {
	return &Mirror{db: db}
}

// Connect opens the remote database from a DSN and verifies connectivity.
func Connect(ctx context.Context, dsn string) (*Mirror, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach mirror database: %w", err)
	}

	log.Info().Msg("Connected to mirror database")
	return &Mirror{db: db}, nil
}

// SaveScan upserts one history record under the given user id. The record is
// stored as its JSON payload plus the columns needed for server-side listing.
func (m *Mirror) SaveScan(ctx context.Context, userID string, item *models.ScanHistoryItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return utils.NewStorageError("mirror write", err)
	}

	startTime := time.Now()

	query := `
		INSERT INTO scan_history (user_id, item_id, status, recorded_at, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, item_id) DO UPDATE SET payload = EXCLUDED.payload
	`

	_, err = m.db.ExecContext(
		ctx,
		query,
		userID,
		item.ID,
		item.Status,
		item.Timestamp,
		string(payload),
	)

	utils.LogDBQuery(
		query,
		[]interface{}{userID, item.ID, item.Status, item.Timestamp},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("failed to mirror scan (%s): %w", pqErr.Code, err)
		}
		return fmt.Errorf("failed to mirror scan: %w", err)
	}

	return nil
}

// SaveProfile upserts the user profile record for the given user id.
func (m *Mirror) SaveProfile(ctx context.Context, userID string, profile *models.UserProfile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return utils.NewStorageError("mirror write", err)
	}

	startTime := time.Now()

	query := `
		INSERT INTO user_profiles (user_id, diet, payload, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET diet = EXCLUDED.diet, payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`

	_, err = m.db.ExecContext(
		ctx,
		query,
		userID,
		profile.Diet,
		string(payload),
		time.Now().UTC(),
	)

	utils.LogDBQuery(
		query,
		[]interface{}{userID, profile.Diet},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return fmt.Errorf("failed to mirror profile: %w", err)
	}

	return nil
}

// DeleteScan removes one mirrored history record. A missing record is not an
// error; the local delete already succeeded.
func (m *Mirror) DeleteScan(ctx context.Context, userID, itemID string) error {
	startTime := time.Now()

	query := `DELETE FROM scan_history WHERE user_id = $1 AND item_id = $2`

	_, err := m.db.ExecContext(ctx, query, userID, itemID)

	utils.LogDBQuery(query, []interface{}{userID, itemID}, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to delete mirrored scan: %w", err)
	}

	return nil
}

// ClearScans removes all mirrored history records for the given user id.
func (m *Mirror) ClearScans(ctx context.Context, userID string) error {
	startTime := time.Now()

	query := `DELETE FROM scan_history WHERE user_id = $1`

	result, err := m.db.ExecContext(ctx, query, userID)

	utils.LogDBQuery(query, []interface{}{userID}, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to clear mirrored scans: %w", err)
	}

	if rows, rowsErr := result.RowsAffected(); rowsErr == nil {
		log.Debug().Int64("rows", rows).Msg("Mirrored scans cleared")
	}

	return nil
}

// Close releases the underlying database handle.
func (m *Mirror) Close() error {
	return m.db.Close()
}
