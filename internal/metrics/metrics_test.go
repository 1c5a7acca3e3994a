package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/signature-studio/internal/metrics"
	"github.com/stretchr/testify/require"
)

func TestHandler_ExposesCounters(t *testing.T) {
	m := metrics.New()
	m.Artifact("png")
	m.Mail(false)
	m.UpstreamError("smtp", "connection")
	m.ObserveRequest(http.MethodPost, "POST /api/send-signature", http.StatusInternalServerError, 0.2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `signature_studio_signature_artifacts_total{format="png"} 1`)
	require.Contains(t, body, `signature_studio_mails_sent_total{result="failure"} 1`)
	require.Contains(t, body, `signature_studio_upstream_errors_total{kind="connection",provider="smtp"} 1`)
	require.Contains(t, body, `code="500"`)
}
