package auth

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the account snapshot embedded in a session token.
// The token is authoritative for display, the database for mutations:
// flags here can go stale until the next sign-in.
type Identity struct {
	AccountID           uuid.UUID
	Username            string
	IsVerified          bool
	IsAcceptingMessages bool
}

// SessionClaims are the decoded contents of a session token.
type SessionClaims struct {
	Identity
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService defines the interface for session token creation and
// validation. Implementations include PasetoService (PASETO v4.local)
// and JWTService (HS256).
type TokenService interface {
	CreateToken(identity Identity, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*SessionClaims, error)
}
