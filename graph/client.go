// Package graph calls the Microsoft Graph API on behalf of the signed-in user.
// Every request carries the user's bearer token from the request context.
package graph

import (
	"context"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/jrsteele09/signature-studio/internal/errors"
)

const (
	DefaultBaseURL = "https://graph.microsoft.com/v1.0"
	moduleName     = "graph"
	moduleVersion  = "v1.0.0"
)

type tokenKey struct{}

// WithToken returns a context whose Graph requests are sent with token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the token set by WithToken.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}

type Options struct {
	BaseURL   string
	Transport policy.Transporter
}

type Client struct {
	pipeline runtime.Pipeline
	baseURL  string
}

func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	pipeline := runtime.NewPipeline(moduleName, moduleVersion,
		runtime.PipelineOptions{
			PerCall: []policy.Policy{bearerPolicy{}},
		},
		&policy.ClientOptions{
			Retry:     policy.RetryOptions{MaxRetries: -1},
			Transport: opts.Transport,
		},
	)
	return &Client{pipeline: pipeline, baseURL: baseURL}
}

// bearerPolicy is the single place the user's token is attached. The token
// is per request, so azcore's caching bearer policy does not fit.
type bearerPolicy struct{}

func (bearerPolicy) Do(req *policy.Request) (*http.Response, error) {
	token, ok := TokenFromContext(req.Raw().Context())
	if !ok {
		return nil, &errors.AuthenticationError{Reason: "no bearer token for graph request"}
	}
	req.Raw().Header.Set("Authorization", "Bearer "+token)
	req.Raw().Header.Set("Accept", "application/json")
	return req.Next()
}

func (c *Client) newRequest(ctx context.Context, method, path string) (*policy.Request, error) {
	req, err := runtime.NewRequest(ctx, method, c.baseURL+path)
	if err != nil {
		return nil, errors.Wrapf(err, "build graph request")
	}
	return req, nil
}

// do sends req and decodes a 2xx JSON body into v.
func (c *Client) do(req *policy.Request, v any, okStatus ...int) error {
	resp, err := c.pipeline.Do(req)
	if err != nil {
		var authErr *errors.AuthenticationError
		if errors.As(err, &authErr) {
			return err
		}
		return &errors.UpstreamError{Provider: errors.ProviderGraph, Kind: errors.KindConnection, Message: "graph request failed", Err: err}
	}
	if !runtime.HasStatusCode(resp, okStatus...) {
		return newResponseError(resp)
	}
	if v == nil {
		_ = resp.Body.Close()
		return nil
	}
	if err := runtime.UnmarshalAsJSON(resp, v); err != nil {
		return &errors.UpstreamError{Provider: errors.ProviderGraph, Kind: errors.KindUnknown, StatusCode: resp.StatusCode, Message: "unreadable graph response", Err: err}
	}
	return nil
}
