package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/whisper-api/internal/account"
	"github.com/redmonkez12/whisper-api/internal/logging"
)

var (
	ErrUsernameTaken       = errors.New("username is already taken")
	ErrEmailTaken          = errors.New("email is already taken")
	ErrEmailDeliveryFailed = errors.New("failed to send verification email")
	ErrUserNotFound        = errors.New("user not found")
	ErrCodeInvalid         = errors.New("invalid verification code")
	ErrCodeExpired         = errors.New("verification code expired")
	ErrNotVerified         = errors.New("account is not verified")
	ErrBadCredentials      = errors.New("incorrect username or password")
)

const verifyCodeTTL = time.Hour

// AccountRepository is the slice of the account store the service needs.
type AccountRepository interface {
	Create(ctx context.Context, acc *account.Account) (*account.Account, error)
	GetByUsername(ctx context.Context, username string) (*account.Account, error)
	GetVerifiedByUsername(ctx context.Context, username string) (*account.Account, error)
	GetByEmail(ctx context.Context, email string) (*account.Account, error)
	GetByIdentifier(ctx context.Context, identifier string) (*account.Account, error)
	RestartVerification(ctx context.Context, id uuid.UUID, passwordHash, code string, expiry time.Time) error
	UpdateVerifyCode(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
}

// UsernameCache is an advisory read-through cache of verified username
// claims. All methods are best-effort; failures never block a request.
type UsernameCache interface {
	IsClaimed(ctx context.Context, username string) (bool, error)
	MarkClaimed(ctx context.Context, username string) error
}

// EmailSender dispatches the verification code. The SMTP implementation
// lives in internal/email.
type EmailSender interface {
	SendVerificationCode(ctx context.Context, toEmail, username, code string) error
}

// SignupStatus tags the branch the signup state machine took.
type SignupStatus int

const (
	// SignupBlocked - a verified account already holds the username or email.
	SignupBlocked SignupStatus = iota
	// SignupCreated - a fresh unverified account was inserted.
	SignupCreated
	// SignupReused - an unverified account with the same email was reset
	// and its verification window restarted.
	SignupReused
)

// SignupResult reports the branch taken and the persisted account.
type SignupResult struct {
	Status  SignupStatus
	Account *account.Account
}

// Service implements the account lifecycle: signup, verification,
// credential authentication and code resend.
type Service struct {
	accounts      AccountRepository
	usernameCache UsernameCache
	emailSender   EmailSender
	logger        *logging.Logger
}

func NewService(accounts AccountRepository, usernameCache UsernameCache, emailSender EmailSender, logger *logging.Logger) *Service {
	return &Service{
		accounts:      accounts,
		usernameCache: usernameCache,
		emailSender:   emailSender,
		logger:        logger,
	}
}

// Signup runs the three-way signup state machine:
//  1. a verified account owns the username -> Blocked (ErrUsernameTaken)
//  2. the email exists: verified -> Blocked (ErrEmailTaken); unverified ->
//     Reused, password overwritten and verification restarted
//  3. otherwise -> Created
//
// The verification email is dispatched synchronously. If dispatch fails
// the persisted record is kept (retryable via resend) and
// ErrEmailDeliveryFailed is returned.
func (s *Service) Signup(ctx context.Context, username, email, password string) (*SignupResult, error) {
	if err := account.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := account.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := account.ValidatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.accounts.GetVerifiedByUsername(ctx, username); err == nil {
		return &SignupResult{Status: SignupBlocked}, ErrUsernameTaken
	} else if !errors.Is(err, account.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := generateVerifyCode()
	if err != nil {
		return nil, err
	}
	expiry := time.Now().Add(verifyCodeTTL)

	var result *SignupResult

	existing, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.IsVerified:
		return &SignupResult{Status: SignupBlocked}, ErrEmailTaken

	case err == nil:
		// Unverified holder of this email: reuse the record, restart
		// the verification window.
		if err := s.accounts.RestartVerification(ctx, existing.ID, passwordHash, code, expiry); err != nil {
			return nil, fmt.Errorf("failed to restart verification: %w", err)
		}
		existing.PasswordHash = passwordHash
		existing.VerifyCode = code
		existing.VerifyCodeExpiry = expiry
		result = &SignupResult{Status: SignupReused, Account: existing}

	case errors.Is(err, account.ErrNotFound):
		created, err := s.accounts.Create(ctx, &account.Account{
			Username:         username,
			Email:            email,
			PasswordHash:     passwordHash,
			VerifyCode:       code,
			VerifyCodeExpiry: expiry,
		})
		if err != nil {
			if errors.Is(err, account.ErrDuplicateEmail) {
				return &SignupResult{Status: SignupBlocked}, ErrEmailTaken
			}
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
		result = &SignupResult{Status: SignupCreated, Account: created}

	default:
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	// Synchronous dispatch: the caller must learn about a failed send.
	// The record stays usable for a resend.
	if err := s.emailSender.SendVerificationCode(ctx, email, username, code); err != nil {
		s.logger.Error("verification email dispatch failed", "email", email, "error", err.Error())
		return result, ErrEmailDeliveryFailed
	}

	return result, nil
}

// VerifyCode confirms a submitted code for the given username.
// Expiry outranks mismatch: an expired-but-correct code reports
// ErrCodeExpired. Success is idempotent under retry because the stored
// code is kept after verification.
func (s *Service) VerifyCode(ctx context.Context, username, code string) error {
	decoded, err := url.QueryUnescape(username)
	if err != nil {
		decoded = username
	}

	acc, err := s.accounts.GetByUsername(ctx, decoded)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up account: %w", err)
	}

	if time.Now().After(acc.VerifyCodeExpiry) {
		return ErrCodeExpired
	}
	if acc.VerifyCode != code {
		return ErrCodeInvalid
	}

	if err := s.accounts.MarkVerified(ctx, acc.ID); err != nil {
		if errors.Is(err, account.ErrUsernameTaken) {
			// Lost the race for the username claim to another signup.
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to mark account verified: %w", err)
	}

	if err := s.usernameCache.MarkClaimed(ctx, acc.Username); err != nil {
		s.logger.Warn("failed to cache username claim", "username", acc.Username, "error", err.Error())
	}

	return nil
}

// Authenticate checks the identifier (username or email) and password.
// Unverified accounts never authenticate, even with the right password.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*account.Account, error) {
	acc, err := s.accounts.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if !acc.IsVerified {
		return nil, ErrNotVerified
	}

	if !VerifyPassword(acc.PasswordHash, password) {
		return nil, ErrBadCredentials
	}

	return acc, nil
}

// ResendCode regenerates the verification code for an unverified email
// and re-dispatches it. Always returns nil for unknown or already
// verified emails so the endpoint does not leak account existence.
func (s *Service) ResendCode(ctx context.Context, email string) error {
	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil
		}
		s.logger.Warn("failed to get account for resend", "error", err.Error())
		return nil
	}

	if acc.IsVerified {
		return nil
	}

	code, err := generateVerifyCode()
	if err != nil {
		s.logger.Warn("failed to generate verification code", "error", err.Error())
		return nil
	}

	if err := s.accounts.UpdateVerifyCode(ctx, acc.ID, code, time.Now().Add(verifyCodeTTL)); err != nil {
		s.logger.Warn("failed to update verification code", "error", err.Error())
		return nil
	}

	if err := s.emailSender.SendVerificationCode(ctx, acc.Email, acc.Username, code); err != nil {
		s.logger.Warn("failed to resend verification email", "email", acc.Email, "error", err.Error())
	}

	return nil
}

// CheckUsernameAvailable reports whether a verified account already
// holds the username. The redis claim cache short-circuits known
// claims; the database stays authoritative for the rest.
func (s *Service) CheckUsernameAvailable(ctx context.Context, username string) error {
	if err := account.ValidateUsername(username); err != nil {
		return err
	}

	claimed, err := s.usernameCache.IsClaimed(ctx, username)
	if err != nil {
		s.logger.Warn("username cache lookup failed", "error", err.Error())
	} else if claimed {
		return ErrUsernameTaken
	}

	_, err = s.accounts.GetVerifiedByUsername(ctx, username)
	switch {
	case err == nil:
		if cacheErr := s.usernameCache.MarkClaimed(ctx, username); cacheErr != nil {
			s.logger.Warn("failed to cache username claim", "username", username, "error", cacheErr.Error())
		}
		return ErrUsernameTaken
	case errors.Is(err, account.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("failed to check username: %w", err)
	}
}
