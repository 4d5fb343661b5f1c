package message

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/redmonkez12/whisper-api/internal/account"
	"github.com/redmonkez12/whisper-api/internal/logging"
)

var (
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrNotAccepting      = errors.New("recipient is not accepting messages")
	ErrAccountNotFound   = errors.New("account not found")
)

// AccountDirectory is the slice of account persistence the message
// service needs.
type AccountDirectory interface {
	GetByUsername(ctx context.Context, username string) (*account.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
	SetAcceptingMessages(ctx context.Context, id uuid.UUID, accepting bool) error
}

// MessageStore is the persistence surface for messages.
type MessageStore interface {
	Append(ctx context.Context, accountID uuid.UUID, content string) (*Message, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Message, error)
	Delete(ctx context.Context, accountID, messageID uuid.UUID) error
}

type Service struct {
	accounts AccountDirectory
	messages MessageStore
	logger   *logging.Logger
}

func NewService(accounts AccountDirectory, messages MessageStore, logger *logging.Logger) *Service {
	return &Service{
		accounts: accounts,
		messages: messages,
		logger:   logger,
	}
}

// Send delivers an anonymous message to the named recipient. The
// accepting flag is read fresh from the store on every send, so a
// recipient who just toggled it off rejects immediately.
func (s *Service) Send(ctx context.Context, username, content string) (*Message, error) {
	if err := ValidateContent(content); err != nil {
		return nil, err
	}

	recipient, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("failed to resolve recipient: %w", err)
	}

	if !recipient.IsAcceptingMessages {
		return nil, ErrNotAccepting
	}

	msg, err := s.messages.Append(ctx, recipient.ID, content)
	if err != nil {
		return nil, err
	}

	s.logger.Info("message delivered", "recipient_id", recipient.ID)

	return msg, nil
}

// List returns the owner's messages, newest first. An empty mailbox is
// an empty slice, not an error; ErrAccountNotFound only means the
// account itself is gone.
func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]*Message, error) {
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}

	return s.messages.ListByAccount(ctx, accountID)
}

// Delete removes one of the owner's messages.
func (s *Service) Delete(ctx context.Context, accountID, messageID uuid.UUID) error {
	return s.messages.Delete(ctx, accountID, messageID)
}

// SetAccepting updates the owner's accepting flag.
func (s *Service) SetAccepting(ctx context.Context, accountID uuid.UUID, accepting bool) error {
	err := s.accounts.SetAcceptingMessages(ctx, accountID, accepting)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	s.logger.Info("accepting flag updated", "account_id", accountID, "accepting", accepting)

	return nil
}

// GetAccepting reads the owner's current accepting flag from the
// store, not from session claims, so it reflects toggles from other
// sessions.
func (s *Service) GetAccepting(ctx context.Context, accountID uuid.UUID) (bool, error) {
	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return false, ErrAccountNotFound
		}
		return false, fmt.Errorf("failed to resolve account: %w", err)
	}

	return acc.IsAcceptingMessages, nil
}
