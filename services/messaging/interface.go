package messaging

import (
	"context"
	"fmt"
	"time"

	messagingRepo "brandconnect/database/repository/messaging"
	"brandconnect/models"

	"go.uber.org/zap"
)

// MessagingService manages two-party conversations and their messages.
type MessagingService interface {
	GetConversations(ctx context.Context, userID string) ([]models.Conversation, error)
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	CreateConversation(ctx context.Context, bookingID, clientID, creativeID string) (*models.Conversation, error)
	GetMessages(ctx context.Context, conversationID string) ([]models.Message, error)
	SendMessage(ctx context.Context, conversationID, senderID, content, messageType string) (*models.Message, error)
	MarkMessagesAsRead(ctx context.Context, conversationID, userID string) (bool, error)
}

// DefaultMessagingService is the production implementation.
type DefaultMessagingService struct {
	Repo   messagingRepo.MessagingRepository
	Feed   Feed
	Logger *zap.Logger

	now func() time.Time
}

// NewDefaultMessagingService builds the service. feed may be nil, in which
// case messages are stored but not published.
func NewDefaultMessagingService(repo messagingRepo.MessagingRepository, feed Feed, logger *zap.Logger) (*DefaultMessagingService, error) {
	if repo == nil {
		return nil, fmt.Errorf("messaging service initialization error: repository is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultMessagingService{
		Repo:   repo,
		Feed:   feed,
		Logger: logger,
		now:    time.Now,
	}, nil
}
