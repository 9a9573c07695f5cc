package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/toplist/internal/session"
	"github.com/desertthunder/toplist/internal/shared"
)

// SessionRepository implements [session.Store] on the sessions table.
type SessionRepository struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ session.Store   = (*SessionRepository)(nil)
	_ session.Sweeper = (*SessionRepository)(nil)
)

// NewSessionRepository creates a new [SessionRepository] with the given database connection.
// The schema must already be migrated with [shared.RunMigrations].
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db, now: time.Now}
}

// Load returns the values of an unexpired session.
func (r *SessionRepository) Load(ctx context.Context, id string) (session.Values, error) {
	query := `
		SELECT data, expires_at
		FROM sessions
		WHERE id = ?
	`

	var (
		data      string
		expiresAt time.Time
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	if !r.now().Before(expiresAt) {
		if err := r.Delete(ctx, id); err != nil {
			return nil, err
		}
		return nil, shared.ErrSessionNotFound
	}

	values := session.Values{}
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return values, nil
}

// Save upserts the session row.
func (r *SessionRepository) Save(ctx context.Context, id string, values session.Values, expiresAt time.Time) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	query := `
		INSERT INTO sessions (id, data, expires_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at, updated_at = excluded.updated_at
	`

	now := r.now().UTC()
	if _, err := r.db.ExecContext(ctx, query, id, string(data), expiresAt.UTC(), now, now); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes the session row if present.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes every session that expired at or before now.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return int(rows), nil
}

// Count returns the number of stored sessions, expired ones included.
func (r *SessionRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}
