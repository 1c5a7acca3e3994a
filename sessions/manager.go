package sessions

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/signature-studio/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const DefaultCookieName = "signature_session"

type ManagerOptions struct {
	CookieName   string
	MaxAge       time.Duration
	SecureCookie bool
}

// Manager is the request-scoped accessor to sessions: every call works from
// the request's signed cookie, there is no process-wide current session.
type Manager struct {
	store  Store
	codec  *CookieCodec
	name   string
	maxAge time.Duration
	secure bool
}

func NewManager(store Store, codec *CookieCodec, opts ManagerOptions) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 8 * time.Hour
	}
	return &Manager{
		store:  store,
		codec:  codec,
		name:   opts.CookieName,
		maxAge: opts.MaxAge,
		secure: opts.SecureCookie,
	}
}

// Establish records a freshly signed-in identity and sets the session cookie.
func (m *Manager) Establish(ctx context.Context, w http.ResponseWriter, identity Identity, token *oauth2.Token) (*Session, error) {
	if token == nil || token.AccessToken == "" {
		return nil, &errors.AuthenticationError{Reason: "identity provider returned no access token"}
	}

	now := NowTimeFunc()
	session := &Session{
		ID:           uuid.New().String(),
		Identity:     identity,
		BearerToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  token.Expiry,
		IssuedAt:     now,
		ExpiresAt:    now.Add(m.maxAge),
	}
	if idToken, ok := token.Extra("id_token").(string); ok {
		session.IDToken = idToken
	}

	if err := m.store.Save(ctx, session, m.maxAge); err != nil {
		return nil, errors.Wrapf(err, "save session")
	}

	value, err := m.codec.Encode(session.ID, session.ExpiresAt)
	if err != nil {
		return nil, err
	}
	m.setCookie(w, value, int(m.maxAge.Seconds()))

	log.Info().Str("session_id", session.ID).Str("user", identity.Email).Msg("Session established")
	return session, nil
}

// Current returns the session named by the request cookie.
// It returns ErrSessionNotFound when there is none and ErrSessionExpired when it has lapsed.
func (m *Manager) Current(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.name)
	if err != nil || cookie.Value == "" {
		return nil, errors.ErrSessionNotFound
	}

	id, err := m.codec.Decode(cookie.Value)
	if err != nil {
		return nil, err
	}

	session, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Expired(NowTimeFunc()) {
		_ = m.store.Delete(ctx, id)
		return nil, errors.ErrSessionExpired
	}
	return session, nil
}

// Refresh stores a token obtained from the identity provider's refresh grant.
// It is the only way a session changes after Establish.
func (m *Manager) Refresh(ctx context.Context, session *Session, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return &errors.AuthenticationError{Reason: "refresh returned no access token"}
	}
	session.BearerToken = token.AccessToken
	session.TokenExpiry = token.Expiry
	if token.RefreshToken != "" {
		session.RefreshToken = token.RefreshToken
	}
	if idToken, ok := token.Extra("id_token").(string); ok && idToken != "" {
		session.IDToken = idToken
	}

	ttl := session.ExpiresAt.Sub(NowTimeFunc())
	if err := m.store.Save(ctx, session, ttl); err != nil {
		return errors.Wrapf(err, "save refreshed session")
	}
	return nil
}

// Teardown deletes the request's session and clears the cookie. It is idempotent:
// without a valid session it only clears the cookie. The removed session is
// returned when there was one.
func (m *Manager) Teardown(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Session, error) {
	m.setCookie(w, "", -1)

	cookie, err := r.Cookie(m.name)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}
	id, err := m.codec.Decode(cookie.Value)
	if err != nil {
		return nil, nil
	}

	session, err := m.store.Get(ctx, id)
	if err != nil {
		session = nil
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return session, errors.Wrapf(err, "delete session")
	}
	return session, nil
}

func (m *Manager) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}
