package server

import (
	"strings"

	"github.com/jrsteele09/signature-studio/redirect"
)

// PathClass groups request paths by how the route guard treats them.
type PathClass int

const (
	PathPublic PathClass = iota
	PathSignIn
	PathProtectedPage
	PathProtectedAPI
)

// Action is what the route guard does with a request.
type Action int

const (
	ActionAllow Action = iota
	ActionRedirect
	ActionUnauthorized
)

type Decision struct {
	Action   Action
	Location string
}

// Classify places path in one of the guard's classes.
func Classify(path string) PathClass {
	switch {
	case path == RouteSignIn || strings.HasPrefix(path, RouteSignIn+"/"):
		return PathSignIn
	case path == RouteDashboard || strings.HasPrefix(path, RouteDashboard+"/"):
		return PathProtectedPage
	case path == RouteAPIHealth:
		return PathPublic
	case strings.HasPrefix(path, RouteAPIPrefix):
		return PathProtectedAPI
	default:
		return PathPublic
	}
}

// Decide is the route guard without any I/O. Signed-in users are kept off the
// sign-in pages, signed-out users are sent to sign-in from protected pages
// with the page they asked for as the callback, and get a 401 from the API.
func Decide(path, rawQuery string, hasSession bool) Decision {
	switch Classify(path) {
	case PathSignIn:
		if hasSession {
			return Decision{Action: ActionRedirect, Location: RouteDashboard}
		}
	case PathProtectedPage:
		if !hasSession {
			target := path
			if rawQuery != "" {
				target += "?" + rawQuery
			}
			return Decision{Action: ActionRedirect, Location: redirect.SignInURL(target)}
		}
	case PathProtectedAPI:
		if !hasSession {
			return Decision{Action: ActionUnauthorized}
		}
	}
	return Decision{Action: ActionAllow}
}
