// Package identity talks to the OpenID Connect identity provider: it builds the
// authorization redirect, redeems codes, verifies ID tokens and refreshes
// access tokens.
package identity

import (
	"context"

	"github.com/jrsteele09/signature-studio/sessions"
	"golang.org/x/oauth2"
)

// CallbackPath is where the identity provider sends the browser back to.
const CallbackPath = "/auth/callback"

// DefaultScopes are requested when none are configured.
var DefaultScopes = []string{
	"openid",
	"profile",
	"email",
	"offline_access",
	"User.Read",
	"Mail.Send",
	"Files.ReadWrite",
	"MailboxSettings.Read",
}

// Result is a verified sign-in.
type Result struct {
	Identity sessions.Identity
	Token    *oauth2.Token
}

type Provider interface {
	// AuthCodeURL returns the provider URL the browser is redirected to.
	// verifier is the PKCE code verifier; only its S256 challenge is sent.
	AuthCodeURL(state, nonce, verifier string) string
	Exchange(ctx context.Context, code, verifier, nonce string) (*Result, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	// LogoutURL returns the provider's end-session URL, or postLogout when the
	// provider does not advertise one.
	LogoutURL(postLogout string) string
}
