package session

import (
	"context"
	"time"
)

// Store persists session values by session ID.
type Store interface {
	// Load returns the values for id, or [shared.ErrSessionNotFound] if the session
	// does not exist or has expired.
	Load(ctx context.Context, id string) (Values, error)
	// Save creates or replaces the values for id.
	Save(ctx context.Context, id string, values Values, expiresAt time.Time) error
	// Delete removes id. Deleting an unknown session is not an error.
	Delete(ctx context.Context, id string) error
}

// Sweeper is implemented by stores that can purge expired sessions in bulk.
type Sweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
