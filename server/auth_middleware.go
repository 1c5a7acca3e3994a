package server

import (
	"net/http"

	"github.com/jrsteele09/signature-studio/internal/errors"
	"github.com/jrsteele09/signature-studio/sessions"
	"github.com/rs/zerolog/log"
)

// RouteGuardMiddleware applies Decide to every request it wraps. A session
// that survives the guard is available to handlers via sessions.FromContext.
func (s *Server) RouteGuardMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.currentSession(w, r)

		decision := Decide(r.URL.Path, r.URL.RawQuery, session != nil)
		switch decision.Action {
		case ActionRedirect:
			redirectSuccess(w, r, decision.Location)
		case ActionUnauthorized:
			s.writeError(w, r, &errors.AuthenticationError{Reason: "no session"})
		default:
			if session != nil {
				r = r.WithContext(sessions.WithSession(r.Context(), session))
			}
			next(w, r)
		}
	}
}

// currentSession returns the request's usable session or nil. An expired
// bearer token is refreshed first; a session whose token cannot be renewed
// is torn down.
func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) *sessions.Session {
	ctx := r.Context()
	session, err := s.sessions.Current(ctx, r)
	if err != nil {
		if !errors.Is(err, errors.ErrSessionNotFound) {
			log.Debug().Err(err).Msg("ignoring unusable session cookie")
		}
		return nil
	}
	if !session.TokenExpired(s.now()) {
		return session
	}

	if session.RefreshToken == "" {
		log.Debug().Str("session", session.ID).Msg("bearer token expired without a refresh token")
		s.teardown(w, r)
		return nil
	}

	token, err := s.identity.Refresh(ctx, session.RefreshToken)
	if err == nil {
		err = s.sessions.Refresh(ctx, session, token)
	}
	if err != nil {
		log.Warn().Err(err).Str("session", session.ID).Msg("token refresh failed, signing out")
		s.teardown(w, r)
		return nil
	}
	return session
}

func (s *Server) teardown(w http.ResponseWriter, r *http.Request) {
	if _, err := s.sessions.Teardown(r.Context(), w, r); err != nil {
		log.Err(err).Msg("failed to tear down session")
	}
}

// sessionFrom returns the guarded request's session. Handlers behind
// RouteGuardMiddleware on a protected path always have one.
func sessionFrom(r *http.Request) (*sessions.Session, error) {
	session, ok := sessions.FromContext(r.Context())
	if !ok {
		return nil, &errors.AuthenticationError{Reason: "no session in request context"}
	}
	return session, nil
}
