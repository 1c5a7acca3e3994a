package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSONOutsideDev(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.DebugLevel) })

	var buf bytes.Buffer
	setup(&buf, "PROD", "debug")
	log.Debug().Str("component", "test").Msg("hello")

	require.Contains(t, buf.String(), `"component":"test"`)
	require.Contains(t, buf.String(), `"message":"hello"`)
	require.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestSetup_InvalidLevelFallsBackToInfo(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.DebugLevel) })

	var buf bytes.Buffer
	setup(&buf, "PROD", "chatty")

	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	require.Contains(t, buf.String(), "Invalid LOG_LEVEL")
}
