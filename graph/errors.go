package graph

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/jrsteele09/signature-studio/internal/errors"
)

// errorEnvelope is the body Graph sends with failed requests.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// newResponseError turns a non-2xx response into an UpstreamError carrying
// the provider's code and message when the body has the error envelope.
func newResponseError(resp *http.Response) error {
	upstream := &errors.UpstreamError{
		Provider:   errors.ProviderGraph,
		Kind:       errors.KindFromStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}

	body, err := runtime.Payload(resp)
	if err == nil && len(body) > 0 {
		var envelope errorEnvelope
		if json.Unmarshal(body, &envelope) == nil && envelope.Error.Code != "" {
			upstream.Code = envelope.Error.Code
			if envelope.Error.Message != "" {
				upstream.Message = envelope.Error.Message
			}
			if kind := kindFromCode(envelope.Error.Code); kind != errors.KindUnknown {
				upstream.Kind = kind
			}
		}
	}
	return upstream
}

func kindFromCode(code string) errors.Kind {
	switch strings.ToLower(code) {
	case "invalidauthenticationtoken", "unauthenticated", "accessdenied", "authorization_requestdenied", "erroraccessdenied":
		return errors.KindAuth
	case "itemnotfound", "request_resourcenotfound", "resourcenotfound", "erroritemnotfound":
		return errors.KindNotFound
	case "toomanyrequests", "activitylimitreached", "applicationthrottled":
		return errors.KindRateLimit
	case "serviceunavailable", "servicenotavailable", "generalexception":
		return errors.KindServiceUnavailable
	}
	return errors.KindUnknown
}
