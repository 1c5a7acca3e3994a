package mailer

import (
	"encoding/base64"
	"mime"
	"strings"

	"github.com/jrsteele09/signature-studio/internal/errors"
)

// Attachment is a decoded data URL.
type Attachment struct {
	ContentType string
	Data        []byte
}

// ParseDataURL decodes a base64 data URL such as data:image/png;base64,iVBOR...
// Only images are accepted.
func ParseDataURL(s string) (*Attachment, error) {
	meta, payload, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return nil, malformed("missing comma separator")
	}
	if !strings.HasPrefix(meta, "data:") {
		return nil, malformed("missing data: prefix")
	}
	meta = strings.TrimPrefix(meta, "data:")

	params := strings.Split(meta, ";")
	if params[len(params)-1] != "base64" {
		return nil, malformed("payload is not base64 encoded")
	}
	contentType, _, err := mime.ParseMediaType(strings.Join(params[:len(params)-1], ";"))
	if err != nil || !strings.HasPrefix(contentType, "image/") {
		return nil, malformed("payload is not an image")
	}

	payload = strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' || r == ' ' {
			return -1
		}
		return r
	}, payload)
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &errors.ValidationError{Field: "signatureImage", Message: "invalid base64 payload", Err: errors.ErrMalformedDataURL}
	}
	if len(data) == 0 {
		return nil, malformed("empty payload")
	}
	return &Attachment{ContentType: contentType, Data: data}, nil
}

func malformed(reason string) error {
	return &errors.ValidationError{Field: "signatureImage", Message: reason, Err: errors.ErrMalformedDataURL}
}
