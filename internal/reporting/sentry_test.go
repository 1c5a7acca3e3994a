package reporting_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/jrsteele09/signature-studio/internal/reporting"
	"github.com/stretchr/testify/require"
)

type capturedEvents struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (c *capturedEvents) beforeSend(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil // nothing leaves the test
}

func hubContext(t *testing.T) (context.Context, *capturedEvents) {
	t.Helper()
	captured := &capturedEvents{}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:        "https://public@sentry.example.com/1",
		BeforeSend: captured.beforeSend,
	})
	require.NoError(t, err)
	hub := sentry.NewHub(client, sentry.NewScope())
	return sentry.SetHubOnContext(context.Background(), hub), captured
}

func TestInit_WithoutDSN(t *testing.T) {
	flush, err := reporting.Init("", "TEST", "dev")
	require.NoError(t, err)
	require.NotNil(t, flush)
	flush(context.Background())
}

func TestInit_InvalidDSN(t *testing.T) {
	flush, err := reporting.Init("not a dsn", "TEST", "dev")
	require.Error(t, err)
	require.NotNil(t, flush)
}

func TestReportError(t *testing.T) {
	ctx, captured := hubContext(t)

	reporting.ReportError(ctx, nil)
	require.Empty(t, captured.events)

	reporting.ReportError(ctx, errors.New("blob storage unreachable"))
	require.Len(t, captured.events, 1)
	require.NotEmpty(t, captured.events[0].Exception)
	require.Equal(t, "blob storage unreachable", captured.events[0].Exception[0].Value)
}

func TestRecover(t *testing.T) {
	ctx, captured := hubContext(t)

	reporting.Recover(ctx, "relay exploded")
	require.Len(t, captured.events, 1)
	require.Equal(t, "relay exploded", captured.events[0].Message)
}
