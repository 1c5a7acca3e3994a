// Package redirect computes where a browser goes once sign-in has completed.
//
// Resolve is a pure function of the requested target and the application's
// origin. It never returns a URL outside that origin and never sends the
// browser back to the sign-in page, which is what stops sign-in loops.
package redirect

import (
	"net/url"
	"strings"
)

const (
	SignInPath    = "/auth/signin"
	DashboardPath = "/dashboard"
	CallbackParam = "callbackUrl"

	// maxNesting bounds how many callbackUrl hops are followed.
	maxNesting = 5
)

// Resolve returns the absolute post-sign-in target for rawTarget inside baseURL's origin.
// baseURL is an origin; any path it carries is ignored.
// Rules, first match wins:
//  1. rawTarget mentions the sign-in path: dashboard.
//  2. rawTarget carries callbackUrl: a sign-in target gives the dashboard, a relative or
//     same-origin target is resolved in turn, a cross-origin target falls through.
//  3. rawTarget is the dashboard: the dashboard.
//  4. rawTarget is same-origin: its path and query.
//  5. rawTarget is a relative path: its path and query.
//  6. Anything else, including parse failures: dashboard.
func Resolve(rawTarget, baseURL string) string {
	b, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || b.Scheme == "" || b.Host == "" {
		return strings.TrimRight(baseURL, "/") + DashboardPath
	}
	base := &url.URL{Scheme: strings.ToLower(b.Scheme), Host: strings.ToLower(b.Host)}
	return resolve(strings.TrimSpace(rawTarget), base, 0)
}

// SignInURL returns the sign-in path carrying target as its callback.
func SignInURL(target string) string {
	return SignInPath + "?" + CallbackParam + "=" + url.QueryEscape(target)
}

func resolve(rawTarget string, base *url.URL, depth int) string {
	origin := base.String()
	dashboard := origin + DashboardPath

	if strings.Contains(rawTarget, SignInPath) {
		return dashboard
	}

	u, err := url.Parse(rawTarget)
	if err != nil {
		return dashboard
	}

	if callback := u.Query().Get(CallbackParam); callback != "" {
		if strings.Contains(callback, SignInPath) {
			return dashboard
		}
		if target, ok := resolveCallback(callback, base, depth); ok {
			return target
		}
	}

	local := isRelative(u) || sameOrigin(u, base)

	if local && strings.TrimSuffix(u.Path, "/") == DashboardPath {
		return dashboard + query(u)
	}

	if sameOrigin(u, base) {
		path := u.EscapedPath()
		if strings.Contains(path, SignInPath) {
			return dashboard
		}
		return origin + path + query(u)
	}

	if isRelative(u) && u.Path != "" {
		path := u.EscapedPath()
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return origin + path + query(u)
	}

	return dashboard
}

// resolveCallback follows a nested callbackUrl. ok is false when the callback
// points at another origin and the outer target should be used instead.
func resolveCallback(callback string, base *url.URL, depth int) (string, bool) {
	origin := base.String()
	if depth >= maxNesting {
		return origin + DashboardPath, true
	}

	c, err := url.Parse(callback)
	if err != nil {
		return origin + DashboardPath, true
	}

	switch {
	case isRelative(c):
		path := c.EscapedPath()
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return resolve(origin+path+query(c), base, depth+1), true
	case sameOrigin(c, base):
		return resolve(origin+c.EscapedPath()+query(c), base, depth+1), true
	default:
		return "", false
	}
}

func isRelative(u *url.URL) bool {
	return u.Scheme == "" && u.Host == "" && u.Opaque == ""
}

func sameOrigin(u, base *url.URL) bool {
	return strings.EqualFold(u.Scheme, base.Scheme) && strings.EqualFold(u.Host, base.Host)
}

func query(u *url.URL) string {
	if u.RawQuery == "" {
		return ""
	}
	return "?" + u.RawQuery
}
