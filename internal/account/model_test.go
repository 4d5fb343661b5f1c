package account

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  error
	}{
		{"ok minimal", "ab", nil},
		{"ok maximal", strings.Repeat("a", 20), nil},
		{"ok mixed", "alice_W0nder", nil},
		{"too short", "a", ErrUsernameTooShort},
		{"empty", "", ErrUsernameTooShort},
		{"too long", strings.Repeat("a", 21), ErrUsernameTooLong},
		{"space", "alice w", ErrUsernameCharset},
		{"dash", "alice-w", ErrUsernameCharset},
		{"unicode", "alicé", ErrUsernameCharset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("alice@example.com"))
	assert.ErrorIs(t, ValidateEmail("not-an-email"), ErrInvalidEmail)
	assert.ErrorIs(t, ValidateEmail(""), ErrInvalidEmail)

	long := strings.Repeat("a", 250) + "@example.com"
	assert.ErrorIs(t, ValidateEmail(long), ErrInvalidEmail)
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("secret"))
	assert.ErrorIs(t, ValidatePassword("five5"), ErrPasswordTooShort)
	assert.ErrorIs(t, ValidatePassword(""), ErrPasswordTooShort)
}
