package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the bun model for the accounts table.
// Username uniqueness is enforced only among verified accounts
// (partial index, see migrations/0001_init.sql) so an unverified
// claim on a username never blocks a fresh signup.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID                  uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Username            string    `bun:"username,notnull"`
	Email               string    `bun:"email,notnull"`
	PasswordHash        string    `bun:"password_hash,notnull"`
	VerifyCode          string    `bun:"verify_code,notnull"`
	VerifyCodeExpiry    time.Time `bun:"verify_code_expiry,notnull"`
	IsVerified          bool      `bun:"is_verified,notnull,default:false"`
	IsAcceptingMessages bool      `bun:"is_accepting_messages,notnull,default:true"`
	CreatedAt           time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt           time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Message is the bun model for the messages table. Messages belong to
// exactly one account and are removed with it (ON DELETE CASCADE).
type Message struct {
	bun.BaseModel `bun:"table:messages,alias:m"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	AccountID uuid.UUID `bun:"account_id,notnull,type:uuid"`
	Content   string    `bun:"content,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
