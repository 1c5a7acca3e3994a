package sessions

import "context"

type contextKey struct{}

// WithSession returns a copy of ctx carrying the request's session.
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, session)
}

// FromContext returns the session attached by the route guard, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(contextKey{}).(*Session)
	return session, ok && session != nil
}
