package graph

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/streaming"
	"github.com/jrsteele09/signature-studio/internal/errors"
)

var profileFields = []string{
	"id", "displayName", "givenName", "surname", "jobTitle", "mail", "userPrincipalName",
	"mobilePhone", "businessPhones", "officeLocation", "streetAddress", "city", "postalCode",
	"country", "usageLocation",
}

// Me returns the signed-in user's profile.
func (c *Client) Me(ctx context.Context) (*Profile, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/me")
	if err != nil {
		return nil, err
	}
	req.Raw().URL.RawQuery = url.Values{"$select": {strings.Join(profileFields, ",")}}.Encode()

	var resp profileResponse
	if err := c.do(req, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	if resp.ID == nil || *resp.ID == "" {
		return nil, &errors.UpstreamError{Provider: errors.ProviderGraph, Kind: errors.KindUnknown, Message: "profile response has no id"}
	}
	profile := resp.profile()
	return &profile, nil
}

func (c *Client) MailboxSettings(ctx context.Context) (*MailboxSettings, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/me/mailboxSettings")
	if err != nil {
		return nil, err
	}
	var settings MailboxSettings
	if err := c.do(req, &settings, http.StatusOK); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UploadFile writes content to path in the user's OneDrive, replacing any
// existing file. Files larger than 4MB need an upload session and are rejected.
func (c *Client) UploadFile(ctx context.Context, path string, content []byte, contentType string) (*DriveItem, error) {
	const maxSimpleUpload = 4 << 20
	if len(content) > maxSimpleUpload {
		return nil, &errors.ValidationError{Field: "content", Message: "file is larger than 4MB", Err: errors.ErrUnsupported}
	}
	escaped, err := escapeDrivePath(path)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPut, "/me/drive/root:/"+escaped+":/content")
	if err != nil {
		return nil, err
	}
	if err := req.SetBody(streaming.NopCloser(bytes.NewReader(content)), contentType); err != nil {
		return nil, errors.Wrapf(err, "set upload body")
	}

	var item DriveItem
	if err := c.do(req, &item, http.StatusOK, http.StatusCreated); err != nil {
		return nil, err
	}
	return &item, nil
}

func escapeDrivePath(path string) (string, error) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		if s == "" || s == "." || s == ".." {
			return "", &errors.ValidationError{Field: "path", Message: "invalid drive path"}
		}
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/"), nil
}
