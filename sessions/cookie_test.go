package sessions_test

import (
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/signature-studio/internal/errors"
	"github.com/jrsteele09/signature-studio/sessions"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestCookieCodec_RoundTrip(t *testing.T) {
	codec, err := sessions.NewCookieCodec(testSecret)
	require.NoError(t, err)

	value, err := codec.Encode("session-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	id, err := codec.Decode(value)
	require.NoError(t, err)
	require.Equal(t, "session-1", id)
}

func TestCookieCodec_Rejects(t *testing.T) {
	codec, err := sessions.NewCookieCodec(testSecret)
	require.NoError(t, err)
	other, err := sessions.NewCookieCodec(strings.Repeat("x", 32))
	require.NoError(t, err)

	t.Run("other secret", func(t *testing.T) {
		value, err := other.Encode("session-1", time.Now().Add(time.Hour))
		require.NoError(t, err)
		_, err = codec.Decode(value)
		require.ErrorIs(t, err, errors.ErrInvalidCookie)
	})

	t.Run("expired", func(t *testing.T) {
		value, err := codec.Encode("session-1", time.Now().Add(-time.Minute))
		require.NoError(t, err)
		_, err = codec.Decode(value)
		require.ErrorIs(t, err, errors.ErrSessionExpired)
	})

	t.Run("tampered", func(t *testing.T) {
		value, err := codec.Encode("session-1", time.Now().Add(time.Hour))
		require.NoError(t, err)
		_, err = codec.Decode(value[:len(value)-2] + "xx")
		require.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := codec.Decode("not-a-cookie")
		require.ErrorIs(t, err, errors.ErrInvalidCookie)
	})
}

func TestNewCookieCodec_RequiresSecret(t *testing.T) {
	_, err := sessions.NewCookieCodec("")
	require.Error(t, err)
}
