package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret99")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	assert.True(t, VerifyPassword(hash, "secret99"))
	assert.False(t, VerifyPassword(hash, "secret98"))
	assert.False(t, VerifyPassword(hash, ""))
}

func TestHashPasswordIsSalted(t *testing.T) {
	first, err := HashPassword("secret99")
	require.NoError(t, err)
	second, err := HashPassword("secret99")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	assert.False(t, VerifyPassword("not-a-hash", "secret99"))
	assert.False(t, VerifyPassword("$argon2id$v=19$m=65536,t=3,p=4$bad", "secret99"))
}

func TestGenerateVerifyCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateVerifyCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.GreaterOrEqual(t, code[0], byte('1'))
	}
}
