package notify

import "time"

// Conversation groups messages between an owner and a tenant about a property.
type Conversation struct {
	ID            string
	OwnerID       string
	TenantID      string
	PropertyID    string
	CreatedAt     time.Time
	LastMessageAt time.Time
}

// Message is one entry in a conversation.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Body           string
	SentAt         time.Time
}
