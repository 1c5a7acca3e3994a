package sessions

import "time"

// Identity holds the signed-in employee's claims from the identity provider.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is the server side record behind a signed session cookie.
// The bearer token never leaves the server: the cookie only names the session.
type Session struct {
	ID       string   `json:"id"`
	Identity Identity `json:"identity"`

	// Tokens for the downstream graph API
	BearerToken  string    `json:"bearer_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	IDToken      string    `json:"id_token,omitempty"`
	TokenExpiry  time.Time `json:"token_expiry"`

	// Session management
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session itself has reached its end of life.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// TokenExpired reports whether the bearer token needs a refresh before use.
// A zero expiry means the provider did not say, and the token is used as is.
func (s *Session) TokenExpired(now time.Time) bool {
	if s.TokenExpiry.IsZero() {
		return false
	}
	return !s.TokenExpiry.After(now.Add(30 * time.Second))
}
