package agentconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxStore implements SettingsStore over a Postgres voice_settings table:
//
//	CREATE TABLE voice_settings (
//	    key        TEXT PRIMARY KEY,
//	    value      JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PgxStore struct {
	db *pgxpool.Pool
}

// NewPgxStore creates a settings store backed by the given pool.
func NewPgxStore(db *pgxpool.Pool) *PgxStore {
	return &PgxStore{db: db}
}

func (s *PgxStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(ctx,
		`SELECT value FROM voice_settings WHERE key = $1`, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("settings get %q: %w", key, err)
	}
	return value, nil
}

func (s *PgxStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO voice_settings (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = now()
	`, key, value)
	if err != nil {
		return fmt.Errorf("settings put %q: %w", key, err)
	}
	return nil
}

func (s *PgxStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM voice_settings WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("settings delete %q: %w", key, err)
	}
	return nil
}

func (s *PgxStore) ListPrefix(ctx context.Context, prefix string) (map[string][]byte, error) {
	rows, err := s.db.Query(ctx,
		`SELECT key, value FROM voice_settings WHERE key LIKE $1 || '%'`, prefix)
	if err != nil {
		return nil, fmt.Errorf("settings list %q: %w", prefix, err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("settings list %q: %w", prefix, err)
		}
		out[key] = value
	}
	return out, rows.Err()
}
