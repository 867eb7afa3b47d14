package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RepositoryPort defines data access for conversations and messages.
type RepositoryPort interface {
	// FindConversation returns the conversation for the triple, nil when absent.
	FindConversation(ctx context.Context, ownerID, tenantID, propertyID string) (*Conversation, error)
	CreateConversation(ctx context.Context, c *Conversation) error
	AppendMessage(ctx context.Context, m *Message) error
	TouchConversation(ctx context.Context, conversationID string, at time.Time) error
}

// TxRunner executes the find-or-create-and-append sequence inside one
// transaction, so a failure never leaves a conversation without its message.
type TxRunner interface {
	RepeatableRead(ctx context.Context, fn func(context.Context) error) error
}

// Service delivers in-app notifications as conversation messages.
type Service struct {
	repo RepositoryPort
	tx   TxRunner
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, tx TxRunner) *Service {
	return &Service{repo: repo, tx: tx}
}

// Notify finds or creates the owner/tenant conversation for the property and
// appends text as a message from the tenant.
func (s *Service) Notify(ctx context.Context, ownerID, tenantID, propertyID, text string) error {
	return s.tx.RepeatableRead(ctx, func(ctx context.Context) error {
		return s.notify(ctx, ownerID, tenantID, propertyID, text)
	})
}

func (s *Service) notify(ctx context.Context, ownerID, tenantID, propertyID, text string) error {
	conv, err := s.repo.FindConversation(ctx, ownerID, tenantID, propertyID)
	if err != nil {
		return fmt.Errorf("find conversation: %w", err)
	}
	now := time.Now()
	if conv == nil {
		conv = &Conversation{
			ID:            uuid.NewString(),
			OwnerID:       ownerID,
			TenantID:      tenantID,
			PropertyID:    propertyID,
			CreatedAt:     now,
			LastMessageAt: now,
		}
		if err := s.repo.CreateConversation(ctx, conv); err != nil {
			return fmt.Errorf("create conversation: %w", err)
		}
	}
	msg := &Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		SenderID:       tenantID,
		Body:           text,
		SentAt:         now,
	}
	if err := s.repo.AppendMessage(ctx, msg); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	if err := s.repo.TouchConversation(ctx, conv.ID, now); err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	return nil
}

var pesoPrinter = message.NewPrinter(language.English)

// FormatPeso renders a peso amount with digit grouping for message bodies.
func FormatPeso(amount float64) string {
	return pesoPrinter.Sprintf("₱%.2f", amount)
}
