package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeRange spans 100000-999999 so every code is exactly six digits.
var codeRange = big.NewInt(900000)

// generateVerifyCode returns a uniformly random 6-digit code.
func generateVerifyCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeRange)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%d", 100000+n.Int64()), nil
}
