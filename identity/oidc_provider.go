package identity

import (
	"context"
	"net/http"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/signature-studio/internal/errors"
	"github.com/jrsteele09/signature-studio/sessions"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

var _ Provider = (*OIDCProvider)(nil)

type Options struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	// HTTPClient is used for discovery, key fetches and token calls when set.
	HTTPClient *http.Client
}

type OIDCProvider struct {
	oauth2     oauth2.Config
	verifier   *oidc.IDTokenVerifier
	endSession string
	httpClient *http.Client
}

type idTokenClaims struct {
	Subject           string `json:"sub"`
	ObjectID          string `json:"oid"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	PreferredUsername string `json:"preferred_username"`
	Nonce             string `json:"nonce"`
}

// NewOIDCProvider runs discovery against opts.Issuer.
func NewOIDCProvider(ctx context.Context, opts Options) (*OIDCProvider, error) {
	if opts.HTTPClient != nil {
		ctx = oidc.ClientContext(ctx, opts.HTTPClient)
	}
	provider, err := oidc.NewProvider(ctx, opts.Issuer)
	if err != nil {
		return nil, &errors.UpstreamError{
			Provider: errors.ProviderIdentity,
			Kind:     errors.KindConnection,
			Message:  "discovery failed",
			Err:      err,
		}
	}

	var metadata struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}
	if err := provider.Claims(&metadata); err != nil {
		log.Warn().Err(err).Msg("Failed to read provider metadata")
	}

	scopes := opts.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	return &OIDCProvider{
		oauth2: oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  opts.RedirectURL,
			Scopes:       scopes,
		},
		verifier:   provider.Verifier(&oidc.Config{ClientID: opts.ClientID}),
		endSession: metadata.EndSessionEndpoint,
		httpClient: opts.HTTPClient,
	}, nil
}

func (p *OIDCProvider) AuthCodeURL(state, nonce, verifier string) string {
	return p.oauth2.AuthCodeURL(state,
		oidc.Nonce(nonce),
		oauth2.S256ChallengeOption(verifier),
	)
}

func (p *OIDCProvider) Exchange(ctx context.Context, code, verifier, nonce string) (*Result, error) {
	token, err := p.oauth2.Exchange(p.clientContext(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, tokenError("code exchange failed", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, &errors.AuthenticationError{Reason: "sign-in failed", Err: errors.ErrNoIDToken}
	}

	idToken, err := p.verifier.Verify(p.clientContext(ctx), rawIDToken)
	if err != nil {
		return nil, &errors.AuthenticationError{Reason: "id token verification failed", Err: err}
	}

	var claims idTokenClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, &errors.AuthenticationError{Reason: "unreadable id token claims", Err: err}
	}
	if claims.Nonce != nonce {
		return nil, &errors.AuthenticationError{Reason: "sign-in failed", Err: errors.ErrInvalidNonce}
	}

	return &Result{Identity: claims.identity(), Token: token}, nil
}

func (p *OIDCProvider) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, &errors.AuthenticationError{Reason: "no refresh token"}
	}
	token, err := p.oauth2.TokenSource(p.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, tokenError("token refresh failed", err)
	}
	return token, nil
}

func (p *OIDCProvider) LogoutURL(postLogout string) string {
	if p.endSession == "" {
		return postLogout
	}
	u, err := url.Parse(p.endSession)
	if err != nil {
		return postLogout
	}
	q := u.Query()
	q.Set("post_logout_redirect_uri", postLogout)
	q.Set("client_id", p.oauth2.ClientID)
	u.RawQuery = q.Encode()
	return u.String()
}

func (p *OIDCProvider) clientContext(ctx context.Context) context.Context {
	if p.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

func (c idTokenClaims) identity() sessions.Identity {
	id := c.ObjectID
	if id == "" {
		id = c.Subject
	}
	email := c.Email
	if email == "" {
		email = c.PreferredUsername
	}
	return sessions.Identity{ID: id, Name: c.Name, Email: email}
}

// tokenError sorts token endpoint failures: a rejection by the provider
// is an authentication problem, anything else is a transport failure.
func tokenError(msg string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		if status == http.StatusBadRequest || status == http.StatusUnauthorized {
			return &errors.AuthenticationError{Reason: msg, Err: err}
		}
		return &errors.UpstreamError{
			Provider:   errors.ProviderIdentity,
			Kind:       errors.KindFromStatus(status),
			StatusCode: status,
			Code:       retrieveErr.ErrorCode,
			Message:    msg,
			Err:        err,
		}
	}
	return &errors.UpstreamError{
		Provider: errors.ProviderIdentity,
		Kind:     errors.KindConnection,
		Message:  msg,
		Err:      err,
	}
}
