package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/signature-studio/internal/errors"
	"github.com/jrsteele09/signature-studio/redirect"
	"github.com/jrsteele09/signature-studio/server/authflowrepo"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

type signInPage struct {
	StartURL string
}

// SignInPageHandler renders the sign-in page. The callbackUrl it was given
// is passed on untouched; it is only resolved once sign-in completes.
func (s *Server) SignInPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		start := RouteSignInStart
		if callback := q.Get(callbackParam); callback != "" {
			start += "?" + callbackParam + "=" + url.QueryEscape(callback)
		}
		s.renderPage(w, r, "signin.html", pageData{
			Error: q.Get("error"),
			Page:  signInPage{StartURL: start},
		})
	}
}

// SignInStartHandler begins the authorization code flow with PKCE.
func (s *Server) SignInStartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := generateRandomString(32)
		nonce := generateRandomString(32)
		verifier := oauth2.GenerateVerifier()

		err := s.authFlows.Upsert(state, &authflowrepo.AuthFlowState{
			CodeVerifier: verifier,
			Nonce:        nonce,
			CallbackURL:  r.URL.Query().Get(callbackParam),
			CreatedAt:    s.now(),
		})
		if err != nil {
			log.Err(err).Msg("failed to store sign-in state")
			http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, s.identity.AuthCodeURL(state, nonce, verifier), http.StatusSeeOther)
	}
}

// CallbackHandler completes sign-in: it checks the state, exchanges the code,
// establishes the session and sends the browser to the resolved target.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "400 - Bad Request", http.StatusBadRequest)
			return
		}

		state := r.Form.Get("state")
		if providerErr := r.Form.Get("error"); providerErr != "" {
			log.Warn().
				Str("error", providerErr).
				Str("description", r.Form.Get("error_description")).
				Msg("identity provider returned an error")
			s.metrics.SignIn("denied")
			callback := ""
			if flow, err := s.authFlows.Take(state); err == nil {
				callback = flow.CallbackURL
			}
			redirectWithError(w, r, callback, "Sign-in was cancelled or denied")
			return
		}

		code := r.Form.Get("code")
		if code == "" || state == "" {
			s.metrics.SignIn("invalid")
			http.Error(w, "400 - Missing code or state", http.StatusBadRequest)
			return
		}

		flow, err := s.authFlows.Take(state)
		if err != nil {
			log.Warn().Err(err).Msg("sign-in callback with unknown state")
			s.metrics.SignIn("invalid")
			redirectWithError(w, r, "", "Your sign-in attempt expired, please try again")
			return
		}

		result, err := s.identity.Exchange(r.Context(), code, flow.CodeVerifier, flow.Nonce)
		if err != nil {
			log.Err(err).Msg("code exchange failed")
			s.metrics.SignIn("failed")
			var upstreamErr *errors.UpstreamError
			if errors.As(err, &upstreamErr) {
				s.metrics.UpstreamError(string(upstreamErr.Provider), string(upstreamErr.Kind))
			}
			redirectWithError(w, r, flow.CallbackURL, errors.PublicMessage(err))
			return
		}

		if _, err := s.sessions.Establish(r.Context(), w, result.Identity, result.Token); err != nil {
			log.Err(err).Msg("failed to establish session")
			s.metrics.SignIn("failed")
			redirectWithError(w, r, flow.CallbackURL, "Could not start your session, please try again")
			return
		}

		s.metrics.SignIn("success")
		target := redirect.Resolve(flow.CallbackURL, s.origin(r))
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// SignOutHandler ends the local session and then the identity provider's.
func (s *Server) SignOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.sessions.Teardown(r.Context(), w, r)
		if err != nil {
			log.Err(err).Msg("failed to delete session on sign-out")
		}
		if session != nil {
			log.Info().Str("session_id", session.ID).Str("user", session.Identity.Email).Msg("Signed out")
		}
		http.Redirect(w, r, s.identity.LogoutURL(s.origin(r)+RouteIndex), http.StatusSeeOther)
	}
}
