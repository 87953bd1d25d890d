package mirror_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puremark/puremark-go/internal/mirror"
	"github.com/puremark/puremark-go/internal/models"
)

// setupMirror creates a Mirror over a mock database.
func setupMirror(t *testing.T) (*mirror.Mirror, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "Creating the mock database should succeed")
	t.Cleanup(func() { db.Close() })

	return mirror.New(db), mock
}

func sampleItem() *models.ScanHistoryItem {
	return &models.ScanHistoryItem{
		ID:          "item-1",
		ProductName: "Sugar Product",
		Status:      "compliant",
		Timestamp:   time.Date(2025, time.March, 14, 15, 9, 0, 0, time.UTC).UnixMilli(),
		Diet:        "halal",
	}
}

func TestSaveScan(t *testing.T) {
	m, mock := setupMirror(t)
	item := sampleItem()

	mock.ExpectExec("INSERT INTO scan_history").
		WithArgs("user-1", item.ID, item.Status, item.Timestamp, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := m.SaveScan(context.Background(), "user-1", item)

	assert.NoError(t, err, "The upsert should succeed")
	assert.NoError(t, mock.ExpectationsWereMet(), "All expected queries should have run")
}

func TestSaveScan_DatabaseError(t *testing.T) {
	m, mock := setupMirror(t)
	item := sampleItem()

	mock.ExpectExec("INSERT INTO scan_history").
		WithArgs("user-1", item.ID, item.Status, item.Timestamp, sqlmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	err := m.SaveScan(context.Background(), "user-1", item)

	require.Error(t, err, "A database failure must be reported to the caller")
	assert.Contains(t, err.Error(), "failed to mirror scan")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveProfile(t *testing.T) {
	m, mock := setupMirror(t)
	profile := &models.UserProfile{Diet: "kosher", Allergies: []string{"peanuts"}}

	mock.ExpectExec("INSERT INTO user_profiles").
		WithArgs("user-1", "kosher", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := m.SaveProfile(context.Background(), "user-1", profile)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveProfile_DatabaseError(t *testing.T) {
	m, mock := setupMirror(t)

	mock.ExpectExec("INSERT INTO user_profiles").
		WithArgs("user-1", "halal", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("permission denied"))

	err := m.SaveProfile(context.Background(), "user-1", models.NewUserProfile())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to mirror profile")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteScan(t *testing.T) {
	m, mock := setupMirror(t)

	mock.ExpectExec("DELETE FROM scan_history").
		WithArgs("user-1", "item-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := m.DeleteScan(context.Background(), "user-1", "item-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteScan_MissingRecordIsNotAnError(t *testing.T) {
	m, mock := setupMirror(t)

	mock.ExpectExec("DELETE FROM scan_history").
		WithArgs("user-1", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := m.DeleteScan(context.Background(), "user-1", "ghost")

	assert.NoError(t, err, "Deleting a record the mirror never saw should succeed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearScans(t *testing.T) {
	m, mock := setupMirror(t)

	mock.ExpectExec("DELETE FROM scan_history").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 7))

	err := m.ClearScans(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearScans_DatabaseError(t *testing.T) {
	m, mock := setupMirror(t)

	mock.ExpectExec("DELETE FROM scan_history").
		WithArgs("user-1").
		WillReturnError(errors.New("relation does not exist"))

	err := m.ClearScans(context.Background(), "user-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clear mirrored scans")
	assert.NoError(t, mock.ExpectationsWereMet())
}
