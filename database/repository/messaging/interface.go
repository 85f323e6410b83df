package messagingRepo

import (
	"brandconnect/models"
	"context"
	"time"
)

// MessagingRepository stores conversations and their append-only messages.
type MessagingRepository interface {
	// CreateConversation inserts c unless a conversation with the same
	// client, creative and booking exists, in which case that one is returned.
	CreateConversation(ctx context.Context, c *models.Conversation) (*models.Conversation, error)
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	// ListConversations returns the user's conversations, most recent activity first.
	ListConversations(ctx context.Context, userID string) ([]models.Conversation, error)
	// ListMessages returns a conversation's messages by createdAt, then id.
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)
	// AppendMessage inserts m and advances the conversation's lastMessageAt
	// to m.CreatedAt in one atomic unit. lastMessageAt never moves backwards.
	AppendMessage(ctx context.Context, m *models.Message) error
	// MarkRead stamps readAt on unread messages not sent by readerID.
	MarkRead(ctx context.Context, conversationID, readerID string, at time.Time) (int64, error)
}
