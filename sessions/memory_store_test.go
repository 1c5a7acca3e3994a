package sessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/signature-studio/internal/errors"
	"github.com/jrsteele09/signature-studio/sessions"
	"github.com/stretchr/testify/require"
)

func newTestSession(id string) *sessions.Session {
	now := time.Now()
	return &sessions.Session{
		ID:          id,
		Identity:    sessions.Identity{ID: "oid-1", Name: "Jeanne Martin", Email: "jeanne.martin@example.com"},
		BearerToken: "bearer-" + id,
		TokenExpiry: now.Add(time.Hour),
		IssuedAt:    now,
		ExpiresAt:   now.Add(8 * time.Hour),
	}
}

func TestMemoryStore_SaveGetDelete(t *testing.T) {
	store := sessions.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newTestSession("s1"), time.Hour))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "bearer-s1", got.BearerToken)
	require.Equal(t, "jeanne.martin@example.com", got.Identity.Email)

	// Returned sessions are copies.
	got.BearerToken = "changed"
	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "bearer-s1", again.BearerToken)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	require.ErrorIs(t, err, errors.ErrSessionNotFound)

	// Deleting twice is fine.
	require.NoError(t, store.Delete(ctx, "s1"))
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := sessions.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newTestSession("short"), 20*time.Millisecond))
	time.Sleep(50 * time.Millisecond)

	_, err := store.Get(ctx, "short")
	require.ErrorIs(t, err, errors.ErrSessionNotFound)
}

func TestMemoryStore_RejectsInvalid(t *testing.T) {
	store := sessions.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	require.Error(t, store.Save(ctx, &sessions.Session{}, time.Hour))
	require.ErrorIs(t, store.Save(ctx, newTestSession("s"), 0), errors.ErrSessionExpired)
}
