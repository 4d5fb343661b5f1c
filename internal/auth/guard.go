package auth

import (
	"net/http"
	"strings"
)

// Page paths covered by the route guard.
const (
	pathRoot      = "/"
	pathSignIn    = "/sign-in"
	pathSignUp    = "/sign-up"
	pathVerify    = "/verify"
	pathDashboard = "/dashboard"
)

// Decision is the outcome of the route guard for one request.
type Decision struct {
	Redirect bool
	Location string
}

// Allow lets the request through to its handler.
var Allow = Decision{}

// RedirectTo sends the client elsewhere before any handler runs.
func RedirectTo(location string) Decision {
	return Decision{Redirect: true, Location: location}
}

// Decide is a pure function of session validity and request path.
// Authenticated clients are kept off the auth pages and the landing
// page; anonymous clients are kept off the dashboard.
func Decide(hasValidSession bool, path string) Decision {
	if hasValidSession {
		if path == pathRoot ||
			strings.HasPrefix(path, pathSignIn) ||
			strings.HasPrefix(path, pathSignUp) ||
			strings.HasPrefix(path, pathVerify) {
			return RedirectTo(pathDashboard)
		}
		return Allow
	}

	if strings.HasPrefix(path, pathDashboard) {
		return RedirectTo(pathSignIn)
	}

	return Allow
}

// PageGuard applies Decide to page routes before any handler runs.
// Session validity is taken from the token alone; no database access.
func PageGuard(tokenService TokenService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hasSession := false
			if token, err := extractToken(r); err == nil && token != "" {
				if _, err := tokenService.VerifyToken(token); err == nil {
					hasSession = true
				}
			}

			if d := Decide(hasSession, r.URL.Path); d.Redirect {
				http.Redirect(w, r, d.Location, http.StatusTemporaryRedirect)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
