package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/jrsteele09/signature-studio/internal/errors"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps sessions in process memory with ttlcache doing the expiry.
type MemoryStore struct {
	cache *ttlcache.Cache[string, Session]
}

// NewMemoryStore creates a store and starts its expiry loop. Call Close to stop it.
func NewMemoryStore() *MemoryStore {
	cache := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, Session](),
	)
	go cache.Start()

	return &MemoryStore{cache: cache}
}

func (s *MemoryStore) Save(_ context.Context, session *Session, ttl time.Duration) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if ttl <= 0 {
		return errors.ErrSessionExpired
	}
	// Stored by value so callers cannot mutate the stored record.
	s.cache.Set(session.ID, *session, ttl)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	item := s.cache.Get(id)
	if item == nil || item.IsExpired() {
		return nil, errors.ErrSessionNotFound
	}
	session := item.Value()
	return &session, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

func (s *MemoryStore) Len() int {
	return s.cache.Len()
}

func (s *MemoryStore) Close() error {
	s.cache.Stop()
	return nil
}
