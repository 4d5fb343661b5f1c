package message

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	minContentLength = 10
	maxContentLength = 300
)

var (
	ErrContentTooShort = errors.New("message must be at least 10 characters")
	ErrContentTooLong  = errors.New("message must be no longer than 300 characters")
)

// Message is a single anonymous message delivered to an account.
// The sender is never recorded.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidateContent checks the message length bounds in runes, not bytes.
func ValidateContent(content string) error {
	n := utf8.RuneCountInString(content)
	if n < minContentLength {
		return ErrContentTooShort
	}
	if n > maxContentLength {
		return ErrContentTooLong
	}
	return nil
}
