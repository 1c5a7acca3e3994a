package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Common error values for the signature server
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidCookie   = errors.New("invalid session cookie")

	// Sign-in flow errors
	ErrInvalidState = errors.New("invalid state parameter")
	ErrInvalidNonce = errors.New("invalid nonce")
	ErrNoIDToken    = errors.New("no id_token in token response")

	// Input errors
	ErrMalformedDataURL = errors.New("malformed data URL")
	ErrInvalidTemplate  = errors.New("invalid template name")
	ErrUnknownAddress   = errors.New("unknown address reference")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// ConfigurationError is fatal at boot: required settings are missing or invalid.
type ConfigurationError struct {
	Missing []string
	Invalid []string
}

func (e *ConfigurationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required environment variable(s): "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid environment variable(s): "+strings.Join(e.Invalid, ", "))
	}
	return "configuration error: " + strings.Join(parts, "; ")
}

// AuthenticationError means there is no usable session for the request.
type AuthenticationError struct {
	Reason string
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication required: %s: %v", e.Reason, e.Err)
	}
	return "authentication required: " + e.Reason
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// ValidationError is a client input problem (HTTP 400).
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Provider identifies the external collaborator behind an UpstreamError.
type Provider string

const (
	ProviderBlob     Provider = "blob"
	ProviderGraph    Provider = "graph"
	ProviderSMTP     Provider = "smtp"
	ProviderIdentity Provider = "identity"
)

// Kind subdivides upstream failures.
type Kind string

const (
	KindConnection         Kind = "connection"
	KindAuth               Kind = "auth"
	KindNotFound           Kind = "not_found"
	KindRateLimit          Kind = "rate_limit"
	KindServiceUnavailable Kind = "service_unavailable"
	KindUnknown            Kind = "unknown"
)

// UpstreamError is a failure of blob storage, the graph API, the SMTP relay or the identity provider.
type UpstreamError struct {
	Provider   Provider
	Kind       Kind
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("%s %s error", e.Provider, e.Kind)
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// KindFromStatus classifies an HTTP status returned by an upstream service.
func KindFromStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status == http.StatusServiceUnavailable || status == http.StatusBadGateway || status == http.StatusGatewayTimeout:
		return KindServiceUnavailable
	default:
		return KindUnknown
	}
}

// RenderError means the signature could not be rendered into an artifact.
type RenderError struct {
	Reason string
}

func (e *RenderError) Error() string {
	return "render failed: " + e.Reason
}

// HTTPStatus maps an error onto the plain HTTP status it should be reported with.
func HTTPStatus(err error) int {
	var (
		authErr       *AuthenticationError
		validationErr *ValidationError
		renderErr     *RenderError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case As(err, &authErr), Is(err, ErrSessionNotFound), Is(err, ErrSessionExpired):
		return http.StatusUnauthorized
	case As(err, &validationErr), As(err, &renderErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the short machine-readable category of err.
func Code(err error) string {
	var (
		authErr       *AuthenticationError
		validationErr *ValidationError
		upstreamErr   *UpstreamError
		renderErr     *RenderError
		configErr     *ConfigurationError
	)
	switch {
	case As(err, &authErr), Is(err, ErrSessionNotFound), Is(err, ErrSessionExpired):
		return "authentication_error"
	case As(err, &validationErr):
		return "validation_error"
	case As(err, &renderErr):
		return "render_error"
	case As(err, &upstreamErr):
		return fmt.Sprintf("upstream_error:%s:%s", upstreamErr.Provider, upstreamErr.Kind)
	case As(err, &configErr):
		return "configuration_error"
	default:
		return "internal_error"
	}
}

// PublicMessage returns a human-readable message that is safe to send to the browser.
func PublicMessage(err error) string {
	var (
		authErr       *AuthenticationError
		validationErr *ValidationError
		upstreamErr   *UpstreamError
		renderErr     *RenderError
	)
	switch {
	case As(err, &authErr), Is(err, ErrSessionNotFound), Is(err, ErrSessionExpired):
		return "You are not signed in or your session has expired"
	case As(err, &validationErr):
		return validationErr.Error()
	case As(err, &renderErr):
		return renderErr.Error()
	case As(err, &upstreamErr):
		return upstreamMessage(upstreamErr)
	default:
		return "An unexpected error occurred"
	}
}

func upstreamMessage(e *UpstreamError) string {
	var service string
	switch e.Provider {
	case ProviderBlob:
		service = "Template storage"
	case ProviderGraph:
		service = "Microsoft Graph"
	case ProviderSMTP:
		service = "The mail relay"
	case ProviderIdentity:
		service = "The identity provider"
	default:
		service = "An upstream service"
	}
	switch e.Kind {
	case KindConnection:
		return service + " could not be reached"
	case KindAuth:
		return service + " rejected the credentials"
	case KindNotFound:
		return service + " could not find the requested resource"
	case KindRateLimit:
		return service + " is rate limiting requests, try again later"
	case KindServiceUnavailable:
		return service + " is temporarily unavailable"
	}
	if e.Message != "" {
		return service + " failed: " + e.Message
	}
	return service + " failed"
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
