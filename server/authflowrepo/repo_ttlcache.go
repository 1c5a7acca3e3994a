package authflowrepo

import (
	"errors"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

var ErrStateNotFound = errors.New("state not found")

var _ Repo = (*CacheRepo)(nil)

// CacheRepo holds pending sign-ins in memory. Entries that are not redeemed
// within the flow timeout are dropped.
type CacheRepo struct {
	cache *ttlcache.Cache[string, AuthFlowState]
}

// NewCacheRepo creates a repo whose entries live for timeout.
func NewCacheRepo(timeout time.Duration) *CacheRepo {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, AuthFlowState](timeout),
		ttlcache.WithDisableTouchOnHit[string, AuthFlowState](),
	)
	go cache.Start()
	return &CacheRepo{cache: cache}
}

func (r *CacheRepo) Upsert(state string, authState *AuthFlowState) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if authState == nil {
		return errors.New("authState cannot be nil")
	}
	r.cache.Set(state, *authState, ttlcache.DefaultTTL)
	return nil
}

func (r *CacheRepo) Take(state string) (*AuthFlowState, error) {
	if state == "" {
		return nil, ErrStateNotFound
	}
	item, found := r.cache.GetAndDelete(state)
	if !found || item == nil || item.IsExpired() {
		return nil, ErrStateNotFound
	}
	authState := item.Value()
	return &authState, nil
}

func (r *CacheRepo) Delete(state string) error {
	r.cache.Delete(state)
	return nil
}

func (r *CacheRepo) Len() int {
	return r.cache.Len()
}

func (r *CacheRepo) Close() {
	r.cache.Stop()
}
