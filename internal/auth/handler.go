package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/redmonkez12/whisper-api/internal/account"
	"github.com/redmonkez12/whisper-api/internal/httputil"
	"github.com/redmonkez12/whisper-api/internal/logging"
)

// Handler contains HTTP handlers for the account lifecycle endpoints
type Handler struct {
	service         *Service
	tokenService    TokenService
	isProduction    bool
	sessionDuration time.Duration
}

func NewHandler(service *Service, tokenService TokenService, isProduction bool, sessionDuration time.Duration) *Handler {
	return &Handler{
		service:         service,
		tokenService:    tokenService,
		isProduction:    isProduction,
		sessionDuration: sessionDuration,
	}
}

// SignUpRequest represents the signup request body
type SignUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyCodeRequest represents the code confirmation request body
type VerifyCodeRequest struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

// SignInRequest represents the credential sign-in request body
type SignInRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// ResendCodeRequest represents the resend request body
type ResendCodeRequest struct {
	Email string `json:"email"`
}

// SignInResponse carries the session token for non-browser clients;
// browsers get the same token as an HttpOnly cookie.
type SignInResponse struct {
	httputil.APIResponse
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

// SignUp handles user registration
// @Summary      Register a new account
// @Description  Create an account with username, email and password. A 6-digit verification code is emailed.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignUpRequest true "Signup fields"
// @Success      201 {object} httputil.APIResponse
// @Failure      400 {object} httputil.APIResponse "Validation error or username/email taken"
// @Failure      500 {object} httputil.APIResponse "Internal error or email delivery failure"
// @Router       /api/sign-up [post]
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid signup request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"username": req.Username})

	result, err := h.service.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			logger.Warn("signup blocked: username taken")
			httputil.RespondError(w, "Username is already taken", httputil.CodeUsernameTaken, http.StatusBadRequest)
		case errors.Is(err, ErrEmailTaken):
			logger.Warn("signup blocked: email taken")
			httputil.RespondError(w, "Email is already taken", httputil.CodeEmailTaken, http.StatusBadRequest)
		case isValidationError(err):
			logger.Warn("signup failed: validation error", "error", err.Error())
			httputil.RespondError(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		case errors.Is(err, ErrEmailDeliveryFailed):
			// The record is persisted; the client can retry via resend.
			logger.Error("signup failed: email delivery")
			httputil.RespondError(w, "Error sending verification email", httputil.CodeEmailDeliveryFailed, http.StatusInternalServerError)
		default:
			logger.Error("signup failed: internal error", "error", err.Error())
			httputil.RespondError(w, "Error registering user", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("account registered", "account_id", result.Account.ID, "reused", result.Status == SignupReused)

	httputil.RespondSuccess(w, "User registered successfully. Please verify your email", http.StatusCreated)
}

// VerifyCode handles email verification
// @Summary      Confirm a verification code
// @Description  Verify an account with the 6-digit code sent by email. An expired code reports expiry even when it matches.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body VerifyCodeRequest true "Username and code"
// @Success      200 {object} httputil.APIResponse
// @Failure      400 {object} httputil.APIResponse "Invalid or expired code"
// @Failure      404 {object} httputil.APIResponse "Unknown user"
// @Failure      500 {object} httputil.APIResponse
// @Router       /api/verify-code [post]
func (h *Handler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid verify request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	err := h.service.VerifyCode(r.Context(), req.Username, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			logger.Warn("verification failed: user not found")
			httputil.RespondError(w, "User not found", httputil.CodeUserNotFound, http.StatusNotFound)
		case errors.Is(err, ErrCodeExpired):
			logger.Warn("verification failed: code expired")
			httputil.RespondError(w, "Verification code expired", httputil.CodeCodeExpired, http.StatusBadRequest)
		case errors.Is(err, ErrCodeInvalid):
			logger.Warn("verification failed: code invalid")
			httputil.RespondError(w, "Invalid verification code", httputil.CodeCodeInvalid, http.StatusBadRequest)
		case errors.Is(err, ErrUsernameTaken):
			logger.Warn("verification failed: username claimed meanwhile")
			httputil.RespondError(w, "Username is already taken", httputil.CodeUsernameTaken, http.StatusBadRequest)
		default:
			logger.Error("verification failed: internal error", "error", err.Error())
			httputil.RespondError(w, "Error verifying user", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("account verified", "username", req.Username)

	httputil.RespondSuccess(w, "User verified successfully", http.StatusOK)
}

// CheckUsernameUnique handles username availability lookups
// @Summary      Check username availability
// @Description  Report whether a username is still available for a verified claim.
// @Tags         auth
// @Produce      json
// @Param        username query string true "Username to check"
// @Success      200 {object} httputil.APIResponse
// @Failure      400 {object} httputil.APIResponse "Invalid or taken username"
// @Failure      500 {object} httputil.APIResponse
// @Router       /api/check-username-unique [get]
func (h *Handler) CheckUsernameUnique(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	username := r.URL.Query().Get("username")

	err := h.service.CheckUsernameAvailable(r.Context(), username)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			httputil.RespondError(w, "Username already taken", httputil.CodeUsernameTaken, http.StatusBadRequest)
		case isValidationError(err):
			httputil.RespondError(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		default:
			logger.Error("username check failed", "error", err.Error())
			httputil.RespondError(w, "Error checking username", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	httputil.RespondSuccess(w, "Username is unique", http.StatusOK)
}

// SignIn handles credential authentication
// @Summary      Sign in
// @Description  Authenticate with username or email plus password and receive a session token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignInRequest true "Credentials"
// @Success      200 {object} SignInResponse
// @Failure      401 {object} httputil.APIResponse "Unknown user or wrong password"
// @Failure      403 {object} httputil.APIResponse "Account not verified"
// @Failure      500 {object} httputil.APIResponse
// @Router       /api/sign-in [post]
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid sign-in request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	acc, err := h.service.Authenticate(r.Context(), req.Identifier, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrBadCredentials):
			logger.Warn("sign-in failed: bad credentials")
			httputil.RespondError(w, "Incorrect username or password", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
		case errors.Is(err, ErrNotVerified):
			logger.Warn("sign-in failed: account not verified")
			httputil.RespondError(w, "Please verify your account before logging in", httputil.CodeNotVerified, http.StatusForbidden)
		default:
			logger.Error("sign-in failed: internal error", "error", err.Error())
			httputil.RespondError(w, "Error signing in", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	identity := Identity{
		AccountID:           acc.ID,
		Username:            acc.Username,
		IsVerified:          acc.IsVerified,
		IsAcceptingMessages: acc.IsAcceptingMessages,
	}

	token, err := h.tokenService.CreateToken(identity, h.sessionDuration)
	if err != nil {
		logger.Error("sign-in failed: token creation", "error", err.Error())
		httputil.RespondError(w, "Error signing in", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("signed in", "account_id", acc.ID, "username", acc.Username)

	SetSessionCookie(w, token, h.isProduction, h.sessionDuration)

	httputil.RespondJSON(w, SignInResponse{
		APIResponse: httputil.APIResponse{Success: true, Message: "Signed in successfully"},
		Token:       token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.sessionDuration.Seconds()),
	}, http.StatusOK)
}

// SignOut handles logout
// @Summary      Sign out
// @Description  Clear the session cookie. Tokens are stateless, so sign-out is otherwise client-side discard.
// @Tags         auth
// @Produce      json
// @Success      200 {object} httputil.APIResponse
// @Router       /api/sign-out [post]
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	ClearSessionCookie(w)
	httputil.RespondSuccess(w, "Signed out", http.StatusOK)
}

// ResendCode handles verification code resend
// @Summary      Resend verification code
// @Description  Email a fresh code to an unverified account. Always succeeds to avoid account enumeration.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ResendCodeRequest true "Email address"
// @Success      200 {object} httputil.APIResponse
// @Failure      400 {object} httputil.APIResponse "Invalid request body"
// @Router       /api/resend-code [post]
func (h *Handler) ResendCode(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ResendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid resend request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	_ = h.service.ResendCode(r.Context(), req.Email)

	httputil.RespondSuccess(w, "If your email is registered and not verified, a new code has been sent.", http.StatusOK)
}

func isValidationError(err error) bool {
	return errors.Is(err, account.ErrUsernameTooShort) ||
		errors.Is(err, account.ErrUsernameTooLong) ||
		errors.Is(err, account.ErrUsernameCharset) ||
		errors.Is(err, account.ErrInvalidEmail) ||
		errors.Is(err, account.ErrPasswordTooShort)
}
