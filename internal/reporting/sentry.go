// Package reporting forwards unexpected failures to Sentry when a DSN is configured.
package reporting

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
)

// Init initializes Sentry if a DSN is configured.
// Returns a cleanup function to flush events, or a no-op if Sentry is not enabled.
func Init(dsn, environment, release string) (func(context.Context), error) {
	if dsn == "" {
		return func(context.Context) {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	})
	if err != nil {
		return func(context.Context) {}, err
	}
	return func(ctx context.Context) {
		sentry.Flush(2 * time.Second)
	}, nil
}

// ReportError sends an error to Sentry if initialized.
func ReportError(ctx context.Context, err error) {
	if err == nil {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.CaptureException(err)
}

// Recover reports a recovered panic value.
func Recover(ctx context.Context, r any) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.Recover(r)
}
