package auth

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// PasetoService issues and validates session tokens.
// Uses v4.local (symmetric encryption with XChaCha20-Poly1305)
type PasetoService struct {
	symmetricKey paseto.V4SymmetricKey
}

func NewPasetoService(symmetricKey []byte) (*PasetoService, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &PasetoService{
		symmetricKey: key,
	}, nil
}

// CreateToken generates a new PASETO v4.local token carrying the identity.
func (s *PasetoService) CreateToken(identity Identity, duration time.Duration) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetExpiration(now.Add(duration))
	token.SetString("account_id", identity.AccountID.String())
	token.SetString("username", identity.Username)
	if err := token.Set("is_verified", identity.IsVerified); err != nil {
		return "", fmt.Errorf("failed to set claim: %w", err)
	}
	if err := token.Set("is_accepting_messages", identity.IsAcceptingMessages); err != nil {
		return "", fmt.Errorf("failed to set claim: %w", err)
	}

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// VerifyToken validates a PASETO v4.local token and returns the claims.
func (s *PasetoService) VerifyToken(tokenStr string) (*SessionClaims, error) {
	parser := paseto.NewParser()

	token, err := parser.ParseV4Local(s.symmetricKey, tokenStr, nil)
	if err != nil {
		// The parser checks expiration by default; distinguish expired from invalid
		if errors.Is(err, &paseto.RuleError{}) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	accountIDStr, err := token.GetString("account_id")
	if err != nil {
		return nil, ErrInvalidToken
	}
	accountID, err := uuid.Parse(accountIDStr)
	if err != nil {
		return nil, ErrInvalidToken
	}

	username, err := token.GetString("username")
	if err != nil {
		return nil, ErrInvalidToken
	}

	var isVerified, isAccepting bool
	if err := token.Get("is_verified", &isVerified); err != nil {
		return nil, ErrInvalidToken
	}
	if err := token.Get("is_accepting_messages", &isAccepting); err != nil {
		return nil, ErrInvalidToken
	}

	issuedAt, err := token.GetIssuedAt()
	if err != nil {
		return nil, ErrInvalidToken
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &SessionClaims{
		Identity: Identity{
			AccountID:           accountID,
			Username:            username,
			IsVerified:          isVerified,
			IsAcceptingMessages: isAccepting,
		},
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}
