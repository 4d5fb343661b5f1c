package account

import (
	"errors"
	"net/mail"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUsernameTooShort = errors.New("username must be at least 2 characters long")
	ErrUsernameTooLong  = errors.New("username must be at most 20 characters long")
	ErrUsernameCharset  = errors.New("username must only contain letters, numbers, and underscores")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Account is a registered identity able to receive anonymous messages.
// The username claim becomes exclusive only once the account verifies.
type Account struct {
	ID                  uuid.UUID `json:"id"`
	Username            string    `json:"username"`
	Email               string    `json:"email"`
	PasswordHash        string    `json:"-"`
	VerifyCode          string    `json:"-"`
	VerifyCodeExpiry    time.Time `json:"-"`
	IsVerified          bool      `json:"is_verified"`
	IsAcceptingMessages bool      `json:"is_accepting_messages"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ValidateUsername checks the 2-20 char alphanumeric+underscore rule.
func ValidateUsername(username string) error {
	if len(username) < 2 {
		return ErrUsernameTooShort
	}
	if len(username) > 20 {
		return ErrUsernameTooLong
	}
	if !usernamePattern.MatchString(username) {
		return ErrUsernameCharset
	}
	return nil
}

// ValidateEmail checks email syntax.
func ValidateEmail(email string) error {
	if email == "" || len(email) > 254 {
		return ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword checks the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return ErrPasswordTooShort
	}
	return nil
}
