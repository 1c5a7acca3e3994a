package mailer_test

import (
	"encoding/base64"
	"testing"

	"github.com/jrsteele09/signature-studio/internal/errors"
	"github.com/jrsteele09/signature-studio/mailer"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake-image-data")

func pngDataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}

func TestParseDataURL(t *testing.T) {
	att, err := mailer.ParseDataURL(pngDataURL())
	require.NoError(t, err)
	require.Equal(t, "image/png", att.ContentType)
	require.Equal(t, pngBytes, att.Data)
}

func TestParseDataURL_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no comma", "data:image/png;base64" + base64.StdEncoding.EncodeToString(pngBytes)},
		{"no data prefix", "image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)},
		{"not base64", "data:image/png,rawbytes"},
		{"not an image", "data:text/html;base64,PGI+aGk8L2I+"},
		{"bad payload", "data:image/png;base64,@@@"},
		{"empty payload", "data:image/png;base64,"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mailer.ParseDataURL(tt.input)
			require.ErrorIs(t, err, errors.ErrMalformedDataURL)
			var ve *errors.ValidationError
			require.True(t, errors.As(err, &ve))
			require.Equal(t, "signatureImage", ve.Field)
		})
	}
}
