package sessions

import (
	"context"
	"time"
)

// Store persists sessions by id.
// Get returns errors.ErrSessionNotFound for unknown or expired ids.
type Store interface {
	Save(ctx context.Context, session *Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
