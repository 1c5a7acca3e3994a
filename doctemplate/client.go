// Package doctemplate fetches Word signature templates from blob storage and
// fills their {placeholder} markers.
package doctemplate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/jrsteele09/signature-studio/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	moduleName    = "doctemplate"
	moduleVersion = "v1.0.0"
	// storageAPIVersion is sent as x-ms-version on every blob request.
	storageAPIVersion = "2021-08-06"
	storageScope      = "https://storage.azure.com/.default"
	docxExtension     = ".docx"
)

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 _.\-]*$`)

// Template is a fetched Word document.
type Template struct {
	Name string
	Data []byte
	// Fallback is set when Data is the locally built placeholder document.
	Fallback bool
}

type Options struct {
	// Endpoint is the blob service URL, e.g. https://account.blob.core.windows.net.
	Endpoint  string
	Container string
	SASToken  string
	// Credential authenticates reads with Entra ID when set.
	Credential azcore.TokenCredential
	// Strict returns fetch failures to the caller instead of the fallback document.
	Strict bool
	// Transport replaces the default HTTP client.
	Transport policy.Transporter
}

type Client struct {
	pipeline  runtime.Pipeline
	endpoint  string
	container string
	sasToken  string
	strict    bool
}

func NewClient(opts Options) (*Client, error) {
	if opts.Endpoint != "" {
		u, err := url.Parse(opts.Endpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid blob endpoint %q", opts.Endpoint)
		}
	}

	plOpts := runtime.PipelineOptions{
		PerCall: []policy.Policy{policyFunc(setStorageVersion)},
	}
	if opts.Credential != nil {
		plOpts.PerRetry = []policy.Policy{runtime.NewBearerTokenPolicy(opts.Credential, []string{storageScope}, nil)}
	}
	clientOpts := &policy.ClientOptions{
		Retry:     policy.RetryOptions{MaxRetries: -1},
		Transport: opts.Transport,
	}

	return &Client{
		pipeline:  runtime.NewPipeline(moduleName, moduleVersion, plOpts, clientOpts),
		endpoint:  strings.TrimRight(opts.Endpoint, "/"),
		container: strings.Trim(opts.Container, "/"),
		sasToken:  strings.TrimPrefix(opts.SASToken, "?"),
		strict:    opts.Strict,
	}, nil
}

// Fetch downloads the named template. When storage answers with a non-2xx
// status or cannot be reached, the fallback document is returned instead and
// the failure is logged; a strict client returns the failure.
func (c *Client) Fetch(ctx context.Context, name string) (*Template, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	if c.endpoint == "" {
		if c.strict {
			return nil, &errors.UpstreamError{Provider: errors.ProviderBlob, Kind: errors.KindNotFound, Message: "no blob endpoint configured"}
		}
		log.Debug().Str("template", name).Msg("No blob endpoint configured, using fallback template")
		return c.fallback(name)
	}

	data, err := c.download(ctx, name)
	if err != nil {
		if c.strict {
			return nil, err
		}
		log.Warn().Err(err).Str("template", name).Msg("Template fetch failed, using fallback template")
		return c.fallback(name)
	}
	return &Template{Name: name, Data: data}, nil
}

func (c *Client) download(ctx context.Context, name string) ([]byte, error) {
	req, err := runtime.NewRequest(ctx, http.MethodGet, c.blobURL(name))
	if err != nil {
		return nil, fmt.Errorf("failed to build blob request: %w", err)
	}

	resp, err := c.pipeline.Do(req)
	if err != nil {
		return nil, &errors.UpstreamError{
			Provider: errors.ProviderBlob,
			Kind:     errors.KindConnection,
			Message:  "template download failed",
			Err:      err,
		}
	}

	if !runtime.HasStatusCode(resp, http.StatusOK) {
		_ = resp.Body.Close()
		return nil, &errors.UpstreamError{
			Provider:   errors.ProviderBlob,
			Kind:       errors.KindFromStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Code:       resp.Header.Get("x-ms-error-code"),
			Message:    fmt.Sprintf("template %s: %s", name, resp.Status),
		}
	}

	data, err := runtime.Payload(resp)
	if err != nil {
		return nil, &errors.UpstreamError{
			Provider: errors.ProviderBlob,
			Kind:     errors.KindConnection,
			Message:  "template download interrupted",
			Err:      err,
		}
	}
	if len(data) == 0 {
		return nil, &errors.UpstreamError{Provider: errors.ProviderBlob, Kind: errors.KindUnknown, Message: fmt.Sprintf("template %s is empty", name)}
	}
	return data, nil
}

func (c *Client) fallback(name string) (*Template, error) {
	data, err := Fallback()
	if err != nil {
		return nil, err
	}
	return &Template{Name: name, Data: data, Fallback: true}, nil
}

func (c *Client) blobURL(name string) string {
	u := c.endpoint + "/" + c.container + "/" + url.PathEscape(name)
	if c.sasToken != "" {
		u += "?" + c.sasToken
	}
	return u
}

// NormalizeName checks that name is a plain file name and adds the .docx
// extension when it is missing.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &errors.ValidationError{Field: "templateName", Message: "is required", Err: errors.ErrInvalidTemplate}
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") || !validName.MatchString(name) {
		return "", &errors.ValidationError{Field: "templateName", Message: "must be a plain file name", Err: errors.ErrInvalidTemplate}
	}
	if !strings.EqualFold(path.Ext(name), docxExtension) {
		name += docxExtension
	}
	return name, nil
}

type policyFunc func(*policy.Request) (*http.Response, error)

func (p policyFunc) Do(req *policy.Request) (*http.Response, error) {
	return p(req)
}

func setStorageVersion(req *policy.Request) (*http.Response, error) {
	req.Raw().Header.Set("x-ms-version", storageAPIVersion)
	return req.Next()
}
