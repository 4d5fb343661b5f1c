package auth

import (
	"net/http"
	"time"
)

const sessionCookieName = "whisper_session"

// SetSessionCookie stores the session token for browser clients.
// Non-browser clients use the token from the response body instead.
func SetSessionCookie(w http.ResponseWriter, token string, isProduction bool, duration time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(duration.Seconds()),
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie removes the session cookie. Sign-out is otherwise
// client-side token discard; there is no server-side revocation.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetSessionTokenFromCookie extracts the session token from the cookie.
func GetSessionTokenFromCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}
