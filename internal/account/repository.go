package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/whisper-api/internal/database"
)

var (
	ErrNotFound       = errors.New("account not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrUsernameTaken  = errors.New("username already taken")
)

// Repository handles account persistence. Every mutation is a single
// conditioned statement; concurrent requests rely on the database for
// atomicity, never on application-level read-modify-write.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a fresh, unverified account.
func (r *Repository) Create(ctx context.Context, acc *Account) (*Account, error) {
	dbAcc := &database.Account{
		Username:            acc.Username,
		Email:               acc.Email,
		PasswordHash:        acc.PasswordHash,
		VerifyCode:          acc.VerifyCode,
		VerifyCodeExpiry:    acc.VerifyCodeExpiry,
		IsVerified:          false,
		IsAcceptingMessages: true,
	}

	_, err := r.db.NewInsert().
		Model(dbAcc).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return mapDBAccountToModel(dbAcc), nil
}

// GetByID retrieves an account by its id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	dbAcc := new(database.Account)
	err := r.db.NewSelect().
		Model(dbAcc).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by id: %w", err)
	}

	return mapDBAccountToModel(dbAcc), nil
}

// GetByUsername retrieves an account by exact username match.
// When several unverified accounts share the username, the verified one
// wins, otherwise the most recent claim.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*Account, error) {
	dbAcc := new(database.Account)
	err := r.db.NewSelect().
		Model(dbAcc).
		Where("username = ?", username).
		OrderExpr("is_verified DESC, created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by username: %w", err)
	}

	return mapDBAccountToModel(dbAcc), nil
}

// GetVerifiedByUsername retrieves the verified holder of a username.
func (r *Repository) GetVerifiedByUsername(ctx context.Context, username string) (*Account, error) {
	dbAcc := new(database.Account)
	err := r.db.NewSelect().
		Model(dbAcc).
		Where("username = ?", username).
		Where("is_verified = ?", true).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get verified account by username: %w", err)
	}

	return mapDBAccountToModel(dbAcc), nil
}

// GetByEmail retrieves an account by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	dbAcc := new(database.Account)
	err := r.db.NewSelect().
		Model(dbAcc).
		Where("email = ?", email).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}

	return mapDBAccountToModel(dbAcc), nil
}

// GetByIdentifier retrieves an account whose username or email equals
// identifier. Verified accounts are preferred on username collisions.
func (r *Repository) GetByIdentifier(ctx context.Context, identifier string) (*Account, error) {
	dbAcc := new(database.Account)
	err := r.db.NewSelect().
		Model(dbAcc).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("username = ?", identifier).WhereOr("email = ?", identifier)
		}).
		OrderExpr("is_verified DESC, created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by identifier: %w", err)
	}

	return mapDBAccountToModel(dbAcc), nil
}

// RestartVerification overwrites the password hash and verification
// code of an unverified account, restarting its verification window.
func (r *Repository) RestartVerification(ctx context.Context, id uuid.UUID, passwordHash, code string, expiry time.Time) error {
	result, err := r.db.NewUpdate().
		Model((*database.Account)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("verify_code = ?", code).
		Set("verify_code_expiry = ?", expiry).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Where("is_verified = ?", false).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to restart verification: %w", err)
	}

	return requireRowsAffected(result)
}

// UpdateVerifyCode regenerates the code and expiry for an unverified
// account (resend path).
func (r *Repository) UpdateVerifyCode(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error {
	result, err := r.db.NewUpdate().
		Model((*database.Account)(nil)).
		Set("verify_code = ?", code).
		Set("verify_code_expiry = ?", expiry).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Where("is_verified = ?", false).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update verify code: %w", err)
	}

	return requireRowsAffected(result)
}

// MarkVerified flips is_verified. The partial unique index on
// (username WHERE is_verified) makes a losing race surface here as
// ErrUsernameTaken rather than producing two verified claims.
func (r *Repository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewUpdate().
		Model((*database.Account)(nil)).
		Set("is_verified = ?", true).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to mark account verified: %w", err)
	}

	return requireRowsAffected(result)
}

// SetAcceptingMessages toggles the owner's accepting flag. Idempotent.
func (r *Repository) SetAcceptingMessages(ctx context.Context, id uuid.UUID, accepting bool) error {
	result, err := r.db.NewUpdate().
		Model((*database.Account)(nil)).
		Set("is_accepting_messages = ?", accepting).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set accepting messages: %w", err)
	}

	return requireRowsAffected(result)
}

func requireRowsAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}

func mapDBAccountToModel(dba *database.Account) *Account {
	return &Account{
		ID:                  dba.ID,
		Username:            dba.Username,
		Email:               dba.Email,
		PasswordHash:        dba.PasswordHash,
		VerifyCode:          dba.VerifyCode,
		VerifyCodeExpiry:    dba.VerifyCodeExpiry,
		IsVerified:          dba.IsVerified,
		IsAcceptingMessages: dba.IsAcceptingMessages,
		CreatedAt:           dba.CreatedAt,
		UpdatedAt:           dba.UpdatedAt,
	}
}
