package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-context-engine/internal/common/logger"
	"trip-context-engine/internal/models"
)

func sampleRecords() []models.ConflictRecord {
	ts := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	return []models.ConflictRecord{
		{
			ID: "11111111-1111-1111-1111-111111111111", Field: "destination_city",
			OldValue: "London", NewValue: "Paris",
			Strategy: models.StrategyMostRecent, Timestamp: ts,
		},
		{
			ID: "22222222-2222-2222-2222-222222222222", Field: "start_date",
			OldValue: "2026-06-10", NewValue: "2026-07-01",
			Strategy: models.StrategyMostRecent, Timestamp: ts.Add(time.Minute),
		},
	}
}

func TestAuditStore_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewAuditStore(db, logger.NewTestLogger(t))
	records := sampleRecords()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO conflict_audit")
	for _, r := range records {
		prep.ExpectExec().
			WithArgs(r.ID, "s-1", r.Field, r.OldValue, r.NewValue, string(r.Strategy), r.Timestamp).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, store.Record(context.Background(), "s-1", records))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditStore_RecordEmptyIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewAuditStore(db, logger.NewTestLogger(t))
	require.NoError(t, store.Record(context.Background(), "s-1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditStore_RecordRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewAuditStore(db, logger.NewTestLogger(t))
	records := sampleRecords()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO conflict_audit")
	prep.ExpectExec().
		WithArgs(records[0].ID, "s-1", records[0].Field, records[0].OldValue, records[0].NewValue, string(records[0].Strategy), records[0].Timestamp).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err = store.Record(context.Background(), "s-1", records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUDIT_WRITE_FAILED")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditStore_ListBySession(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewAuditStore(db, logger.NewTestLogger(t))
	records := sampleRecords()

	rows := sqlmock.NewRows([]string{"id", "field", "old_value", "new_value", "strategy", "resolved_at"})
	for _, r := range records {
		rows.AddRow(r.ID, r.Field, r.OldValue, r.NewValue, string(r.Strategy), r.Timestamp)
	}
	mock.ExpectQuery("SELECT id, field, old_value, new_value, strategy, resolved_at").
		WithArgs("s-1").
		WillReturnRows(rows)

	got, err := store.ListBySession(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, records, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditStore_ListEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewAuditStore(db, logger.NewTestLogger(t))

	mock.ExpectQuery("SELECT id, field, old_value, new_value, strategy, resolved_at").
		WithArgs("empty").
		WillReturnRows(sqlmock.NewRows([]string{"id", "field", "old_value", "new_value", "strategy", "resolved_at"}))

	got, err := store.ListBySession(context.Background(), "empty")
	require.NoError(t, err)
	assert.Empty(t, got)
}
