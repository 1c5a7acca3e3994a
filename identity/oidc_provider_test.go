package identity_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/signature-studio/identity"
	"github.com/jrsteele09/signature-studio/internal/errors"
	"github.com/stretchr/testify/require"
)

const testClientID = "client-123"

// fakeIssuer is a minimal OpenID provider: discovery, JWKS and token endpoint.
type fakeIssuer struct {
	server *httptest.Server
	key    *rsa.PrivateKey
	// idNonce is put into the next id token.
	idNonce  string
	noIDTok  bool
	tokenErr int
	lastForm url.Values
}

func newFakeIssuer(t *testing.T) *fakeIssuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	f := &fakeIssuer{key: key}
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"issuer":                                f.server.URL,
			"authorization_endpoint":                f.server.URL + "/authorize",
			"token_endpoint":                        f.server.URL + "/token",
			"jwks_uri":                              f.server.URL + "/keys",
			"end_session_endpoint":                  f.server.URL + "/logout",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	mux.HandleFunc("/keys", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"keys": []map[string]string{{
				"kty": "RSA",
				"kid": "test-key",
				"use": "sig",
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
			}},
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.lastForm = r.PostForm
		if f.tokenErr != 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.tokenErr)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"bad code"}`))
			return
		}
		body := map[string]any{
			"access_token":  "access-" + r.PostForm.Get("grant_type"),
			"token_type":    "Bearer",
			"expires_in":    3600,
			"refresh_token": "refresh-next",
		}
		if !f.noIDTok {
			body["id_token"] = f.idToken(t)
		}
		writeJSON(w, body)
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeIssuer) idToken(t *testing.T) string {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":                f.server.URL,
		"aud":                testClientID,
		"sub":                "subject-1",
		"oid":                "object-1",
		"name":               "Jeanne Martin",
		"preferred_username": "jeanne.martin@example.com",
		"nonce":              f.idNonce,
		"iat":                time.Now().Unix(),
		"exp":                time.Now().Add(time.Hour).Unix(),
	})
	token.Header["kid"] = "test-key"
	signed, err := token.SignedString(f.key)
	require.NoError(t, err)
	return signed
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newProvider(t *testing.T, f *fakeIssuer) *identity.OIDCProvider {
	t.Helper()
	p, err := identity.NewOIDCProvider(context.Background(), identity.Options{
		Issuer:       f.server.URL,
		ClientID:     testClientID,
		ClientSecret: "secret",
		RedirectURL:  "https://signatures.example.com/auth/callback",
	})
	require.NoError(t, err)
	return p
}

func TestOIDCProvider_AuthCodeURL(t *testing.T) {
	f := newFakeIssuer(t)
	p := newProvider(t, f)

	raw := p.AuthCodeURL("state-1", "nonce-1", "verifier-abcdefghijklmnopqrstuvwxyz0123456789")
	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()

	require.Equal(t, "/authorize", u.Path)
	require.Equal(t, "state-1", q.Get("state"))
	require.Equal(t, "nonce-1", q.Get("nonce"))
	require.Equal(t, "S256", q.Get("code_challenge_method"))
	require.NotEmpty(t, q.Get("code_challenge"))
	require.NotContains(t, raw, "verifier-abcdefghijklmnopqrstuvwxyz0123456789")
	require.Contains(t, q.Get("scope"), "offline_access")
	require.Contains(t, q.Get("scope"), "Mail.Send")
}

func TestOIDCProvider_Exchange(t *testing.T) {
	f := newFakeIssuer(t)
	p := newProvider(t, f)

	t.Run("success", func(t *testing.T) {
		f.idNonce = "nonce-ok"
		result, err := p.Exchange(context.Background(), "code-1", "verifier-1", "nonce-ok")
		require.NoError(t, err)
		require.Equal(t, "object-1", result.Identity.ID)
		require.Equal(t, "Jeanne Martin", result.Identity.Name)
		require.Equal(t, "jeanne.martin@example.com", result.Identity.Email)
		require.Equal(t, "access-authorization_code", result.Token.AccessToken)
		require.Equal(t, "verifier-1", f.lastForm.Get("code_verifier"))
	})

	t.Run("nonce mismatch", func(t *testing.T) {
		f.idNonce = "someone-else"
		_, err := p.Exchange(context.Background(), "code-1", "verifier-1", "nonce-ok")
		require.ErrorIs(t, err, errors.ErrInvalidNonce)
		var authErr *errors.AuthenticationError
		require.True(t, errors.As(err, &authErr))
	})

	t.Run("no id token", func(t *testing.T) {
		f.noIDTok = true
		t.Cleanup(func() { f.noIDTok = false })
		_, err := p.Exchange(context.Background(), "code-1", "verifier-1", "nonce-ok")
		require.ErrorIs(t, err, errors.ErrNoIDToken)
	})

	t.Run("rejected code", func(t *testing.T) {
		f.tokenErr = http.StatusBadRequest
		t.Cleanup(func() { f.tokenErr = 0 })
		_, err := p.Exchange(context.Background(), "bad", "verifier-1", "nonce-ok")
		var authErr *errors.AuthenticationError
		require.True(t, errors.As(err, &authErr))
	})

	t.Run("provider down", func(t *testing.T) {
		f.tokenErr = http.StatusServiceUnavailable
		t.Cleanup(func() { f.tokenErr = 0 })
		_, err := p.Exchange(context.Background(), "code-1", "verifier-1", "nonce-ok")
		var upstreamErr *errors.UpstreamError
		require.True(t, errors.As(err, &upstreamErr))
		require.Equal(t, errors.ProviderIdentity, upstreamErr.Provider)
		require.Equal(t, errors.KindServiceUnavailable, upstreamErr.Kind)
	})
}

func TestOIDCProvider_Refresh(t *testing.T) {
	f := newFakeIssuer(t)
	p := newProvider(t, f)

	token, err := p.Refresh(context.Background(), "refresh-1")
	require.NoError(t, err)
	require.Equal(t, "access-refresh_token", token.AccessToken)
	require.Equal(t, "refresh-1", f.lastForm.Get("refresh_token"))

	_, err = p.Refresh(context.Background(), "")
	require.Error(t, err)
}

func TestOIDCProvider_LogoutURL(t *testing.T) {
	f := newFakeIssuer(t)
	p := newProvider(t, f)

	u, err := url.Parse(p.LogoutURL("https://signatures.example.com/"))
	require.NoError(t, err)
	require.Equal(t, "/logout", u.Path)
	require.Equal(t, "https://signatures.example.com/", u.Query().Get("post_logout_redirect_uri"))
}

func TestNewOIDCProvider_DiscoveryFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)

	_, err := identity.NewOIDCProvider(context.Background(), identity.Options{Issuer: server.URL, ClientID: testClientID})
	var upstreamErr *errors.UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	require.Equal(t, errors.KindConnection, upstreamErr.Kind)
}
