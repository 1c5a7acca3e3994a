package server

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/url"
)

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError sends the browser back to the sign-in page with a message to show.
func redirectWithError(w http.ResponseWriter, r *http.Request, callbackURL, errorMsg string) {
	q := url.Values{}
	q.Set("error", errorMsg)
	if callbackURL != "" {
		q.Set(callbackParam, callbackURL)
	}
	redirectSuccess(w, r, RouteSignIn+"?"+q.Encode())
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
