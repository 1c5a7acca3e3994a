package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jrsteele09/signature-studio/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"authentication", &errors.AuthenticationError{Reason: "no session"}, http.StatusUnauthorized},
		{"wrapped session not found", fmt.Errorf("lookup: %w", errors.ErrSessionNotFound), http.StatusUnauthorized},
		{"validation", errors.NewValidationError("templateName", "is required"), http.StatusBadRequest},
		{"render", &errors.RenderError{Reason: "nothing to draw"}, http.StatusBadRequest},
		{"upstream", &errors.UpstreamError{Provider: errors.ProviderSMTP, Kind: errors.KindConnection}, http.StatusInternalServerError},
		{"plain", stderrors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, errors.HTTPStatus(tt.err))
		})
	}
}

func TestCode(t *testing.T) {
	err := errors.Wrapf(&errors.UpstreamError{Provider: errors.ProviderGraph, Kind: errors.KindRateLimit}, "graph me")
	require.Equal(t, "upstream_error:graph:rate_limit", errors.Code(err))
	require.Equal(t, "validation_error", errors.Code(errors.NewValidationError("x", "y")))
	require.Equal(t, "configuration_error", errors.Code(&errors.ConfigurationError{Missing: []string{"A"}}))
	require.Equal(t, "internal_error", errors.Code(stderrors.New("boom")))
}

func TestPublicMessage_DoesNotLeakCause(t *testing.T) {
	err := &errors.UpstreamError{
		Provider: errors.ProviderBlob,
		Kind:     errors.KindConnection,
		Err:      stderrors.New("dial tcp 10.0.0.4:443: connect: connection refused"),
	}
	msg := errors.PublicMessage(err)
	require.Equal(t, "Template storage could not be reached", msg)
	require.NotContains(t, msg, "10.0.0.4")
}

func TestKindFromStatus(t *testing.T) {
	require.Equal(t, errors.KindAuth, errors.KindFromStatus(http.StatusForbidden))
	require.Equal(t, errors.KindNotFound, errors.KindFromStatus(http.StatusNotFound))
	require.Equal(t, errors.KindRateLimit, errors.KindFromStatus(http.StatusTooManyRequests))
	require.Equal(t, errors.KindServiceUnavailable, errors.KindFromStatus(http.StatusServiceUnavailable))
	require.Equal(t, errors.KindUnknown, errors.KindFromStatus(http.StatusTeapot))
}

func TestConfigurationError_Message(t *testing.T) {
	err := &errors.ConfigurationError{Missing: []string{"SESSION_SECRET", "BASE_URL"}}
	require.Contains(t, err.Error(), "SESSION_SECRET, BASE_URL")
}
