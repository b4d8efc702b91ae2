// Package storage is the durable audit trail for conflict resolutions.
// Redis holds the live session snapshot; this Postgres table is what
// survives session expiry for later analysis.
package storage

import (
	"context"
	"database/sql"

	"trip-context-engine/internal/common/errors"
	"trip-context-engine/internal/common/logger"
	"trip-context-engine/internal/models"
)

// Schema is the DDL for the audit table. Migrations run it at deploy
// time; tests run it against their fixture database.
const Schema = `
CREATE TABLE IF NOT EXISTS conflict_audit (
    id           UUID PRIMARY KEY,
    session_id   TEXT NOT NULL,
    field        TEXT NOT NULL,
    old_value    TEXT NOT NULL,
    new_value    TEXT NOT NULL,
    strategy     TEXT NOT NULL,
    resolved_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS conflict_audit_session_idx ON conflict_audit (session_id, resolved_at);
`

// AuditStore writes conflict resolution records to Postgres.
type AuditStore struct {
	db  *sql.DB
	log logger.Logger
}

// NewAuditStore builds an AuditStore over an existing connection pool.
func NewAuditStore(db *sql.DB, log logger.Logger) *AuditStore {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &AuditStore{db: db, log: log}
}

// Record inserts the resolution records produced by one merge. The insert
// runs in a single transaction so a turn's records land atomically.
func (s *AuditStore) Record(ctx context.Context, sessionID string, records []models.ConflictRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewAuditWriteFailedError(err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO conflict_audit (id, session_id, field, old_value, new_value, strategy, resolved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`)
	if err != nil {
		return errors.NewAuditWriteFailedError(err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ID, sessionID, r.Field, r.OldValue, r.NewValue, string(r.Strategy), r.Timestamp); err != nil {
			return errors.NewAuditWriteFailedError(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.NewAuditWriteFailedError(err)
	}

	s.log.Debug("conflict records written", map[string]interface{}{
		"sessionId": sessionID,
		"count":     len(records),
	})
	return nil
}

// ListBySession returns a session's resolution history, oldest first.
func (s *AuditStore) ListBySession(ctx context.Context, sessionID string) ([]models.ConflictRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, field, old_value, new_value, strategy, resolved_at
		 FROM conflict_audit WHERE session_id = $1 ORDER BY resolved_at`, sessionID)
	if err != nil {
		return nil, errors.NewAuditWriteFailedError(err)
	}
	defer rows.Close()

	var out []models.ConflictRecord
	for rows.Next() {
		var r models.ConflictRecord
		var strategy string
		if err := rows.Scan(&r.ID, &r.Field, &r.OldValue, &r.NewValue, &strategy, &r.Timestamp); err != nil {
			return nil, errors.NewAuditWriteFailedError(err)
		}
		r.Strategy = models.ResolutionStrategy(strategy)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewAuditWriteFailedError(err)
	}
	return out, nil
}
