package telephony

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxCallLogStore implements CallLogStore over a Postgres call_log table:
//
//	CREATE TABLE call_log (
//	    id               UUID PRIMARY KEY,
//	    call_sid         TEXT UNIQUE NOT NULL,
//	    contact_id       TEXT,
//	    to_number        TEXT NOT NULL,
//	    from_number      TEXT NOT NULL,
//	    status           TEXT NOT NULL,
//	    preset_id        TEXT,
//	    note             TEXT,
//	    duration_seconds INT NOT NULL DEFAULT 0,
//	    created_at       TIMESTAMPTZ NOT NULL,
//	    updated_at       TIMESTAMPTZ NOT NULL,
//	    closed_at        TIMESTAMPTZ
//	);
type PgxCallLogStore struct {
	db *pgxpool.Pool
}

// NewPgxCallLogStore creates a call log backed by the given pool.
func NewPgxCallLogStore(db *pgxpool.Pool) *PgxCallLogStore {
	return &PgxCallLogStore{db: db}
}

func (s *PgxCallLogStore) Create(ctx context.Context, entry *CallLogEntry) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO call_log
		    (id, call_sid, contact_id, to_number, from_number, status,
		     preset_id, note, duration_seconds, created_at, updated_at, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, entry.ID, entry.CallSID, entry.ContactID, entry.ToNumber, entry.FromNumber,
		entry.Status, entry.PresetID, entry.Note, entry.DurationSeconds,
		entry.CreatedAt, entry.UpdatedAt, entry.ClosedAt)
	if err != nil {
		return fmt.Errorf("call log create %s: %w", entry.CallSID, err)
	}
	return nil
}

func (s *PgxCallLogStore) GetByCallSID(ctx context.Context, callSID string) (*CallLogEntry, error) {
	var entry CallLogEntry
	err := s.db.QueryRow(ctx, `
		SELECT id, call_sid, contact_id, to_number, from_number, status,
		       preset_id, note, duration_seconds, created_at, updated_at, closed_at
		FROM call_log WHERE call_sid = $1
	`, callSID).Scan(
		&entry.ID, &entry.CallSID, &entry.ContactID, &entry.ToNumber,
		&entry.FromNumber, &entry.Status, &entry.PresetID, &entry.Note,
		&entry.DurationSeconds, &entry.CreatedAt, &entry.UpdatedAt, &entry.ClosedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCallNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("call log get %s: %w", callSID, err)
	}
	return &entry, nil
}

func (s *PgxCallLogStore) Update(ctx context.Context, entry *CallLogEntry) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE call_log
		SET status = $2, note = $3, duration_seconds = $4, updated_at = $5, closed_at = $6
		WHERE call_sid = $1
	`, entry.CallSID, entry.Status, entry.Note, entry.DurationSeconds,
		entry.UpdatedAt, entry.ClosedAt)
	if err != nil {
		return fmt.Errorf("call log update %s: %w", entry.CallSID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCallNotFound
	}
	return nil
}

func (s *PgxCallLogStore) List(ctx context.Context, limit int) ([]*CallLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, call_sid, contact_id, to_number, from_number, status,
		       preset_id, note, duration_seconds, created_at, updated_at, closed_at
		FROM call_log ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("call log list: %w", err)
	}
	defer rows.Close()

	var out []*CallLogEntry
	for rows.Next() {
		var entry CallLogEntry
		if err := rows.Scan(
			&entry.ID, &entry.CallSID, &entry.ContactID, &entry.ToNumber,
			&entry.FromNumber, &entry.Status, &entry.PresetID, &entry.Note,
			&entry.DurationSeconds, &entry.CreatedAt, &entry.UpdatedAt, &entry.ClosedAt,
		); err != nil {
			return nil, fmt.Errorf("call log list: %w", err)
		}
		out = append(out, &entry)
	}
	return out, rows.Err()
}
