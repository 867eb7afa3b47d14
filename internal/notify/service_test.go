package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type passthroughTx struct{}

func (passthroughTx) RepeatableRead(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type memoryNotifyRepo struct {
	conversations []Conversation
	messages      []Message
}

func (r *memoryNotifyRepo) FindConversation(ctx context.Context, ownerID, tenantID, propertyID string) (*Conversation, error) {
	for i := range r.conversations {
		c := r.conversations[i]
		if c.OwnerID == ownerID && c.TenantID == tenantID && c.PropertyID == propertyID {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *memoryNotifyRepo) CreateConversation(ctx context.Context, c *Conversation) error {
	r.conversations = append(r.conversations, *c)
	return nil
}

func (r *memoryNotifyRepo) AppendMessage(ctx context.Context, m *Message) error {
	r.messages = append(r.messages, *m)
	return nil
}

func (r *memoryNotifyRepo) TouchConversation(ctx context.Context, conversationID string, at time.Time) error {
	for i := range r.conversations {
		if r.conversations[i].ID == conversationID {
			r.conversations[i].LastMessageAt = at
		}
	}
	return nil
}

func TestNotifyCreatesConversationOnce(t *testing.T) {
	repo := &memoryNotifyRepo{}
	svc := NewService(repo, passthroughTx{})
	ctx := context.Background()

	require.NoError(t, svc.Notify(ctx, "owner-1", "tenant-1", "prop-1", "first"))
	require.NoError(t, svc.Notify(ctx, "owner-1", "tenant-1", "prop-1", "second"))

	require.Len(t, repo.conversations, 1)
	require.Len(t, repo.messages, 2)
	require.Equal(t, repo.conversations[0].ID, repo.messages[0].ConversationID)
	require.Equal(t, repo.conversations[0].ID, repo.messages[1].ConversationID)
	require.Equal(t, "tenant-1", repo.messages[0].SenderID)
	require.Equal(t, "first", repo.messages[0].Body)

	// A different property gets its own thread.
	require.NoError(t, svc.Notify(ctx, "owner-1", "tenant-1", "prop-2", "third"))
	require.Len(t, repo.conversations, 2)
}

func TestFormatPeso(t *testing.T) {
	require.Equal(t, "₱30,000.00", FormatPeso(30000))
	require.Equal(t, "₱9,500.50", FormatPeso(9500.5))
	require.Equal(t, "₱0.00", FormatPeso(0))
}
