package messaging

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"brandconnect/models"
	"brandconnect/services/errs"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxContentLength = 4000

func (s *DefaultMessagingService) GetConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	if userID == "" {
		return nil, errs.Validation("userId is required")
	}
	return s.Repo.ListConversations(ctx, userID)
}

func (s *DefaultMessagingService) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	return s.Repo.GetConversation(ctx, id)
}

// CreateConversation returns the existing conversation for the same client,
// creative and booking instead of creating a second one.
func (s *DefaultMessagingService) CreateConversation(ctx context.Context, bookingID, clientID, creativeID string) (*models.Conversation, error) {
	clientID = strings.TrimSpace(clientID)
	creativeID = strings.TrimSpace(creativeID)
	if clientID == "" || creativeID == "" {
		return nil, errs.Validation("clientId and creativeId are required")
	}
	if clientID == creativeID {
		return nil, errs.Validation("a conversation needs two different participants")
	}

	now := s.now().UTC()
	c, err := s.Repo.CreateConversation(ctx, &models.Conversation{
		ID:            uuid.New().String(),
		BookingID:     strings.TrimSpace(bookingID),
		ClientID:      clientID,
		CreativeID:    creativeID,
		Status:        models.ConversationActive,
		LastMessageAt: now,
		CreatedAt:     now,
	})
	if err != nil {
		return nil, fmt.Errorf("CreateConversation: %w", err)
	}
	return c, nil
}

func (s *DefaultMessagingService) GetMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	if _, err := s.Repo.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	return s.Repo.ListMessages(ctx, conversationID)
}

func (s *DefaultMessagingService) SendMessage(ctx context.Context, conversationID, senderID, content, messageType string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errs.Validation("message content is required")
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return nil, errs.Validation("message content exceeds %d characters", maxContentLength)
	}
	if messageType == "" {
		messageType = models.MessageTypeText
	}

	conv, err := s.Repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(senderID) {
		return nil, errs.Forbidden("sender is not a participant of this conversation")
	}

	msg := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		MessageType:    messageType,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.Repo.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("SendMessage: %w", err)
	}

	if s.Feed != nil {
		if err := s.Feed.Publish(ctx, *msg); err != nil {
			s.Logger.Warn("failed to publish message", zap.String("conversationId", conversationID), zap.String("messageId", msg.ID), zap.Error(err))
		}
	}
	return msg, nil
}

// MarkMessagesAsRead stamps every unread message the other participant sent.
// Repeating it is harmless.
func (s *DefaultMessagingService) MarkMessagesAsRead(ctx context.Context, conversationID, userID string) (bool, error) {
	conv, err := s.Repo.GetConversation(ctx, conversationID)
	if err != nil {
		return false, err
	}
	if !conv.HasParticipant(userID) {
		return false, errs.Forbidden("user is not a participant of this conversation")
	}
	n, err := s.Repo.MarkRead(ctx, conversationID, userID, s.now().UTC())
	if err != nil {
		return false, fmt.Errorf("MarkMessagesAsRead: %w", err)
	}
	s.Logger.Debug("messages marked read", zap.String("conversationId", conversationID), zap.String("userId", userID), zap.Int64("count", n))
	return true, nil
}
