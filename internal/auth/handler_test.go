package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/whisper-api/internal/httputil"
)

func newTestHandler(t *testing.T) (*Handler, *fakeAccountRepo, *fakeEmailSender) {
	t.Helper()

	svc, repo, _, sender := newTestService()
	tokenSvc, err := NewPasetoService([]byte("01234567890123456789012345678901"))
	require.NoError(t, err)

	return NewHandler(svc, tokenSvc, false, time.Hour), repo, sender
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.APIResponse {
	t.Helper()
	var resp httputil.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestSignUpHandler(t *testing.T) {
	t.Run("creates account", func(t *testing.T) {
		handler, _, sender := newTestHandler(t)

		rec := httptest.NewRecorder()
		handler.SignUp(rec, postJSON("/api/sign-up", `{"username":"alice","email":"alice@example.com","password":"secret99"}`))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.True(t, decodeResponse(t, rec).Success)
		assert.Len(t, sender.sent, 1)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		handler, _, _ := newTestHandler(t)

		rec := httptest.NewRecorder()
		handler.SignUp(rec, postJSON("/api/sign-up", `{broken`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, httputil.CodeInvalidRequestBody, decodeResponse(t, rec).Code)
	})

	t.Run("rejects invalid username", func(t *testing.T) {
		handler, _, _ := newTestHandler(t)

		rec := httptest.NewRecorder()
		handler.SignUp(rec, postJSON("/api/sign-up", `{"username":"a!","email":"alice@example.com","password":"secret99"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, httputil.CodeValidationFailed, decodeResponse(t, rec).Code)
	})

	t.Run("reports email delivery failure", func(t *testing.T) {
		handler, repo, sender := newTestHandler(t)
		sender.failNext = true

		rec := httptest.NewRecorder()
		handler.SignUp(rec, postJSON("/api/sign-up", `{"username":"alice","email":"alice@example.com","password":"secret99"}`))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, httputil.CodeEmailDeliveryFailed, decodeResponse(t, rec).Code)
		assert.Len(t, repo.accounts, 1)
	})
}

// signUpAndVerify registers a verified account through the handlers.
func signUpAndVerify(t *testing.T, handler *Handler, repo *fakeAccountRepo, username, email string) {
	t.Helper()

	rec := httptest.NewRecorder()
	handler.SignUp(rec, postJSON("/api/sign-up", `{"username":"`+username+`","email":"`+email+`","password":"secret99"}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	acc, err := repo.GetByUsername(context.Background(), username)
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	handler.VerifyCode(rec, postJSON("/api/verify-code", `{"username":"`+username+`","code":"`+acc.VerifyCode+`"}`))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestVerifyCodeHandler(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		handler, _, _ := newTestHandler(t)

		rec := httptest.NewRecorder()
		handler.VerifyCode(rec, postJSON("/api/verify-code", `{"username":"ghost","code":"123456"}`))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, httputil.CodeUserNotFound, decodeResponse(t, rec).Code)
	})

	t.Run("wrong code", func(t *testing.T) {
		handler, repo, _ := newTestHandler(t)

		rec := httptest.NewRecorder()
		handler.SignUp(rec, postJSON("/api/sign-up", `{"username":"alice","email":"alice@example.com","password":"secret99"}`))
		require.Equal(t, http.StatusCreated, rec.Code)

		acc, err := repo.GetByUsername(context.Background(), "alice")
		require.NoError(t, err)
		wrong := "000000"
		if acc.VerifyCode == wrong {
			wrong = "000001"
		}

		rec = httptest.NewRecorder()
		handler.VerifyCode(rec, postJSON("/api/verify-code", `{"username":"alice","code":"`+wrong+`"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, httputil.CodeCodeInvalid, decodeResponse(t, rec).Code)
	})

	t.Run("expired code", func(t *testing.T) {
		handler, repo, _ := newTestHandler(t)

		rec := httptest.NewRecorder()
		handler.SignUp(rec, postJSON("/api/sign-up", `{"username":"alice","email":"alice@example.com","password":"secret99"}`))
		require.Equal(t, http.StatusCreated, rec.Code)

		var code string
		for _, acc := range repo.accounts {
			code = acc.VerifyCode
			acc.VerifyCodeExpiry = time.Now().Add(-time.Minute)
		}

		rec = httptest.NewRecorder()
		handler.VerifyCode(rec, postJSON("/api/verify-code", `{"username":"alice","code":"`+code+`"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, httputil.CodeCodeExpired, decodeResponse(t, rec).Code)
	})
}

func TestCheckUsernameUniqueHandler(t *testing.T) {
	handler, repo, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/check-username-unique?username=alice", nil)
	rec := httptest.NewRecorder()
	handler.CheckUsernameUnique(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Username is unique", decodeResponse(t, rec).Message)

	signUpAndVerify(t, handler, repo, "alice", "alice@example.com")

	req = httptest.NewRequest(http.MethodGet, "/api/check-username-unique?username=alice", nil)
	rec = httptest.NewRecorder()
	handler.CheckUsernameUnique(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httputil.CodeUsernameTaken, decodeResponse(t, rec).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/check-username-unique?username=a", nil)
	rec = httptest.NewRecorder()
	handler.CheckUsernameUnique(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httputil.CodeValidationFailed, decodeResponse(t, rec).Code)
}

func TestSignInHandler(t *testing.T) {
	t.Run("returns token and cookie", func(t *testing.T) {
		handler, repo, _ := newTestHandler(t)
		signUpAndVerify(t, handler, repo, "alice", "alice@example.com")

		rec := httptest.NewRecorder()
		handler.SignIn(rec, postJSON("/api/sign-in", `{"identifier":"alice","password":"secret99"}`))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp SignInResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, int64(3600), resp.ExpiresIn)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "whisper_session", cookies[0].Name)
		assert.Equal(t, resp.Token, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)

		// The token embeds the identity claims.
		claims, err := handler.tokenService.VerifyToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Identity.Username)
		assert.True(t, claims.Identity.IsVerified)
	})

	t.Run("wrong password", func(t *testing.T) {
		handler, repo, _ := newTestHandler(t)
		signUpAndVerify(t, handler, repo, "alice", "alice@example.com")

		rec := httptest.NewRecorder()
		handler.SignIn(rec, postJSON("/api/sign-in", `{"identifier":"alice","password":"wrongpass"}`))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, httputil.CodeInvalidCredentials, decodeResponse(t, rec).Code)
	})

	t.Run("unknown user maps to the same status", func(t *testing.T) {
		handler, _, _ := newTestHandler(t)

		rec := httptest.NewRecorder()
		handler.SignIn(rec, postJSON("/api/sign-in", `{"identifier":"ghost","password":"secret99"}`))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unverified account", func(t *testing.T) {
		handler, _, _ := newTestHandler(t)

		rec := httptest.NewRecorder()
		handler.SignUp(rec, postJSON("/api/sign-up", `{"username":"alice","email":"alice@example.com","password":"secret99"}`))
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = httptest.NewRecorder()
		handler.SignIn(rec, postJSON("/api/sign-in", `{"identifier":"alice","password":"secret99"}`))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, httputil.CodeNotVerified, decodeResponse(t, rec).Code)
	})
}

func TestSignOutHandlerClearsCookie(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.SignOut(rec, httptest.NewRequest(http.MethodPost, "/api/sign-out", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "whisper_session", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestResendCodeHandlerAlwaysSucceeds(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ResendCode(rec, postJSON("/api/resend-code", `{"email":"ghost@example.com"}`))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ResendCode(rec, postJSON("/api/resend-code", `{broken`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
