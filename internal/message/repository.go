package message

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/whisper-api/internal/database"
)

var ErrNotFound = errors.New("message not found")

// Repository handles message persistence. Append and Delete are single
// statements so concurrent senders and the owner never need
// application-level coordination.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Append stores a new message for the given account.
func (r *Repository) Append(ctx context.Context, accountID uuid.UUID, content string) (*Message, error) {
	dbMsg := &database.Message{
		AccountID: accountID,
		Content:   content,
	}

	_, err := r.db.NewInsert().
		Model(dbMsg).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	return mapDBMessageToModel(dbMsg), nil
}

// ListByAccount returns the account's messages, newest first.
func (r *Repository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Message, error) {
	var dbMsgs []*database.Message
	err := r.db.NewSelect().
		Model(&dbMsgs).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages := make([]*Message, 0, len(dbMsgs))
	for _, m := range dbMsgs {
		messages = append(messages, mapDBMessageToModel(m))
	}

	return messages, nil
}

// Delete removes a message only when it belongs to accountID. A miss,
// whether the message is absent or owned by someone else, reports
// ErrNotFound.
func (r *Repository) Delete(ctx context.Context, accountID, messageID uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Message)(nil)).
		Where("id = ?", messageID).
		Where("account_id = ?", accountID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
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

func mapDBMessageToModel(dbm *database.Message) *Message {
	return &Message{
		ID:        dbm.ID,
		Content:   dbm.Content,
		CreatedAt: dbm.CreatedAt,
	}
}
