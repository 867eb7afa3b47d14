package notify

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hanapbahay/hanapbahay/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for conversations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) q(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

// FindConversation returns the conversation for the triple, nil when absent.
func (r *Repository) FindConversation(ctx context.Context, ownerID, tenantID, propertyID string) (*Conversation, error) {
	var c Conversation
	err := r.q(ctx).QueryRow(ctx, `SELECT id, owner_id, tenant_id, property_id, created_at, last_message_at
FROM conversations WHERE owner_id = $1 AND tenant_id = $2 AND property_id = $3`,
		ownerID, tenantID, propertyID).
		Scan(&c.ID, &c.OwnerID, &c.TenantID, &c.PropertyID, &c.CreatedAt, &c.LastMessageAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// CreateConversation inserts a conversation.
func (r *Repository) CreateConversation(ctx context.Context, c *Conversation) error {
	_, err := r.q(ctx).Exec(ctx, `INSERT INTO conversations (id, owner_id, tenant_id, property_id, created_at, last_message_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.OwnerID, c.TenantID, c.PropertyID, c.CreatedAt, c.LastMessageAt)
	return err
}

// AppendMessage inserts a message.
func (r *Repository) AppendMessage(ctx context.Context, m *Message) error {
	_, err := r.q(ctx).Exec(ctx, `INSERT INTO messages (id, conversation_id, sender_id, body, sent_at)
VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.ConversationID, m.SenderID, m.Body, m.SentAt)
	return err
}

// TouchConversation bumps the conversation's last-message timestamp.
func (r *Repository) TouchConversation(ctx context.Context, conversationID string, at time.Time) error {
	_, err := r.q(ctx).Exec(ctx, `UPDATE conversations SET last_message_at = $2 WHERE id = $1`,
		conversationID, at)
	return err
}
