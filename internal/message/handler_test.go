package message

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/whisper-api/internal/account"
	"github.com/redmonkez12/whisper-api/internal/auth"
	"github.com/redmonkez12/whisper-api/internal/httputil"
)

// routeWithIdentity mounts the handler behind chi routing with the
// given identity already authenticated.
func routeWithIdentity(handler *Handler, acc *account.Account) *chi.Mux {
	identity := auth.Identity{
		AccountID:           acc.ID,
		Username:            acc.Username,
		IsVerified:          acc.IsVerified,
		IsAcceptingMessages: acc.IsAcceptingMessages,
	}

	injectIdentity := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auth.WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	r := chi.NewRouter()
	r.Post("/api/send-message", handler.SendMessage)
	r.Group(func(r chi.Router) {
		r.Use(injectIdentity)
		r.Get("/api/get-messages", handler.GetMessages)
		r.Delete("/api/delete-message/{messageid}", handler.DeleteMessage)
		r.Get("/api/accept-messages", handler.GetAcceptMessages)
		r.Post("/api/accept-messages", handler.SetAcceptMessages)
	})
	return r
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) httputil.APIResponse {
	t.Helper()
	var resp httputil.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestSendMessageHandler(t *testing.T) {
	svc, dir, _ := newMessageTestService()
	alice := dir.add("alice", true)
	router := routeWithIdentity(NewHandler(svc), alice)

	t.Run("delivers anonymously", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, postJSON("/api/send-message", `{"username":"alice","content":"hello there, a fine day"}`))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, postJSON("/api/send-message", `{"username":"ghost","content":"hello there, a fine day"}`))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, httputil.CodeUserNotFound, decodeEnvelope(t, rec).Code)
	})

	t.Run("content too short", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, postJSON("/api/send-message", `{"username":"alice","content":"short"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, httputil.CodeValidationFailed, decodeEnvelope(t, rec).Code)
	})

	t.Run("recipient not accepting", func(t *testing.T) {
		require.NoError(t, svc.SetAccepting(context.Background(), alice.ID, false))
		defer func() {
			require.NoError(t, svc.SetAccepting(context.Background(), alice.ID, true))
		}()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, postJSON("/api/send-message", `{"username":"alice","content":"hello there, a fine day"}`))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, httputil.CodeNotAcceptingMessages, decodeEnvelope(t, rec).Code)
	})
}

func TestGetMessagesHandler(t *testing.T) {
	svc, dir, _ := newMessageTestService()
	alice := dir.add("alice", true)
	router := routeWithIdentity(NewHandler(svc), alice)

	t.Run("empty mailbox is an empty list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/get-messages", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp MessagesResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp.Success)
		assert.NotNil(t, resp.Messages)
		assert.Empty(t, resp.Messages)
	})

	t.Run("returns messages newest first", func(t *testing.T) {
		_, err := svc.Send(context.Background(), "alice", "the first message body")
		require.NoError(t, err)
		_, err = svc.Send(context.Background(), "alice", "the second message body")
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/get-messages", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp MessagesResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Len(t, resp.Messages, 2)
		assert.Equal(t, "the second message body", resp.Messages[0].Content)
	})

	t.Run("deleted account reports not found", func(t *testing.T) {
		ghost := &account.Account{ID: uuid.New(), Username: "ghost", IsVerified: true}
		ghostRouter := routeWithIdentity(NewHandler(svc), ghost)

		rec := httptest.NewRecorder()
		ghostRouter.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/get-messages", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDeleteMessageHandler(t *testing.T) {
	svc, dir, _ := newMessageTestService()
	alice := dir.add("alice", true)
	bob := dir.add("bob", true)
	aliceRouter := routeWithIdentity(NewHandler(svc), alice)
	bobRouter := routeWithIdentity(NewHandler(svc), bob)

	msg, err := svc.Send(context.Background(), "alice", "a message to be deleted")
	require.NoError(t, err)

	t.Run("malformed id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		aliceRouter.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/delete-message/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("cross-account delete misses", func(t *testing.T) {
		rec := httptest.NewRecorder()
		bobRouter.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/delete-message/"+msg.ID.String(), nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, httputil.CodeMessageNotFound, decodeEnvelope(t, rec).Code)
	})

	t.Run("owner delete succeeds once", func(t *testing.T) {
		rec := httptest.NewRecorder()
		aliceRouter.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/delete-message/"+msg.ID.String(), nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		aliceRouter.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/delete-message/"+msg.ID.String(), nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAcceptMessagesHandler(t *testing.T) {
	svc, dir, _ := newMessageTestService()
	alice := dir.add("alice", true)
	router := routeWithIdentity(NewHandler(svc), alice)

	readFlag := func(t *testing.T) bool {
		t.Helper()
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/accept-messages", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp AcceptMessagesResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		return resp.IsAcceptingMessages
	}

	assert.True(t, readFlag(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, postJSON("/api/accept-messages", `{"acceptMessages":false}`))
	require.Equal(t, http.StatusOK, rec.Code)

	// The GET reads storage, not the stale session claims.
	assert.False(t, readFlag(t))

	t.Run("deleted account maps to unauthorized", func(t *testing.T) {
		ghost := &account.Account{ID: uuid.New(), Username: "ghost", IsVerified: true}
		ghostRouter := routeWithIdentity(NewHandler(svc), ghost)

		rec := httptest.NewRecorder()
		ghostRouter.ServeHTTP(rec, postJSON("/api/accept-messages", `{"acceptMessages":true}`))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
