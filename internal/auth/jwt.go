package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// jwtClaims is the wire shape of an HS256 session token.
type jwtClaims struct {
	Username            string `json:"username"`
	IsVerified          bool   `json:"is_verified"`
	IsAcceptingMessages bool   `json:"is_accepting_messages"`
	jwt.RegisteredClaims
}

// JWTService is the HS256 alternative to PasetoService, selected via
// SESSION_TOKEN_BACKEND=jwt.
type JWTService struct {
	key []byte
}

func NewJWTService(key []byte) (*JWTService, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("signing key must be exactly 32 bytes, got %d", len(key))
	}
	return &JWTService{key: key}, nil
}

// CreateToken generates a signed HS256 token carrying the identity.
func (s *JWTService) CreateToken(identity Identity, duration time.Duration) (string, error) {
	now := time.Now()

	claims := jwtClaims{
		Username:            identity.Username,
		IsVerified:          identity.IsVerified,
		IsAcceptingMessages: identity.IsAcceptingMessages,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.AccountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates an HS256 token and returns the claims.
func (s *JWTService) VerifyToken(tokenStr string) (*SessionClaims, error) {
	var claims jwtClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	return &SessionClaims{
		Identity: Identity{
			AccountID:           accountID,
			Username:            claims.Username,
			IsVerified:          claims.IsVerified,
			IsAcceptingMessages: claims.IsAcceptingMessages,
		},
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
