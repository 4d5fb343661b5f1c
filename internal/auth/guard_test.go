package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name       string
		hasSession bool
		path       string
		want       Decision
	}{
		{"anonymous landing page", false, "/", Allow},
		{"anonymous sign-in", false, "/sign-in", Allow},
		{"anonymous sign-up", false, "/sign-up", Allow},
		{"anonymous verify", false, "/verify/alice", Allow},
		{"anonymous dashboard", false, "/dashboard", RedirectTo("/sign-in")},
		{"anonymous dashboard subpath", false, "/dashboard/settings", RedirectTo("/sign-in")},
		{"session landing page", true, "/", RedirectTo("/dashboard")},
		{"session sign-in", true, "/sign-in", RedirectTo("/dashboard")},
		{"session sign-up", true, "/sign-up", RedirectTo("/dashboard")},
		{"session verify", true, "/verify/alice", RedirectTo("/dashboard")},
		{"session dashboard", true, "/dashboard", Allow},
		{"session other page", true, "/u/alice", Allow},
		// Root is an exact match: other pages never inherit its redirect.
		{"session arbitrary path stays", true, "/about", Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.hasSession, tt.path))
		})
	}
}

func TestPageGuardRedirects(t *testing.T) {
	svc, err := NewPasetoService([]byte("01234567890123456789012345678901"))
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guarded := PageGuard(svc)(next)

	token, err := svc.CreateToken(testIdentity(), time.Hour)
	require.NoError(t, err)

	t.Run("anonymous dashboard request is redirected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, "/sign-in", rec.Header().Get("Location"))
	})

	t.Run("session cookie on sign-in page redirects to dashboard", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/sign-in", nil)
		req.AddCookie(&http.Cookie{Name: "whisper_session", Value: token})
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})

	t.Run("expired session counts as anonymous", func(t *testing.T) {
		expired, err := svc.CreateToken(testIdentity(), -time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: "whisper_session", Value: expired})
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, "/sign-in", rec.Header().Get("Location"))
	})

	t.Run("session dashboard request passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireAuth(t *testing.T) {
	svc, err := NewPasetoService([]byte("01234567890123456789012345678901"))
	require.NoError(t, err)

	identity := testIdentity()
	token, err := svc.CreateToken(identity, time.Hour)
	require.NoError(t, err)

	var gotIdentity Identity
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIdentity, gotOK = GetIdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := NewMiddleware(svc).RequireAuth(next)

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/get-messages", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, gotOK)
		assert.Equal(t, identity, gotIdentity)
	})

	t.Run("session cookie fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/get-messages", nil)
		req.AddCookie(&http.Cookie{Name: "whisper_session", Value: token})
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/get-messages", nil)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed authorization header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/get-messages", nil)
		req.Header.Set("Authorization", "Token "+token)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := svc.CreateToken(identity, -time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/get-messages", nil)
		req.Header.Set("Authorization", "Bearer "+expired)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/get-messages", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
