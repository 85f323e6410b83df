package notification

import (
	"context"
	"fmt"
	"strings"

	userRepo "brandconnect/database/repository/user"
	"brandconnect/models"
	"brandconnect/services/errs"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateNotification stores an in-app notification and then pushes it to
// the user's device when one is registered. Push failures are logged only.
func (s *DefaultNotificationService) CreateNotification(ctx context.Context, userID, notificationType, title, message string, data map[string]any) (*models.Notification, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errs.Validation("userId is required")
	}
	if strings.TrimSpace(title) == "" && strings.TrimSpace(message) == "" {
		return nil, errs.Validation("notification needs a title or message")
	}

	n := &models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      notificationType,
		Title:     title,
		Message:   message,
		Data:      data,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("CreateNotification: %w", err)
	}

	s.pushNotification(ctx, n)
	return n, nil
}

func (s *DefaultNotificationService) pushNotification(ctx context.Context, n *models.Notification) {
	if s.push == nil {
		return
	}
	u, err := s.users.GetByIDWithProjection(ctx, n.UserID, userRepo.ContactProjection)
	if err != nil {
		s.logger.Warn("push skipped: user lookup failed", zap.String("userId", n.UserID), zap.Error(err))
		return
	}
	if u.FCMToken == "" {
		recordDispatch(channelPush, outcomeSkipped)
		return
	}

	payload := map[string]string{
		"notificationId": n.ID,
		"type":           n.Type,
		"role":           string(u.Role),
	}
	for k, v := range n.Data {
		payload[k] = fmt.Sprint(v)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	_, err = s.push.Send(ctx, &messaging.Message{
		Token:        u.FCMToken,
		Notification: &messaging.Notification{Title: n.Title, Body: n.Message},
		Data:         payload,
	})
	if err != nil {
		s.logger.Warn("push send failed", zap.String("userId", n.UserID), zap.String("notificationId", n.ID), zap.Error(err))
		recordDispatch(channelPush, outcomeFailed)
		return
	}
	recordDispatch(channelPush, outcomeSent)
}

func (s *DefaultNotificationService) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	if userID == "" {
		return nil, errs.Validation("userId is required")
	}
	return s.repo.ListByUser(ctx, userID)
}

// MarkNotificationRead is idempotent; the first read time is kept.
func (s *DefaultNotificationService) MarkNotificationRead(ctx context.Context, id, userID string) (*models.Notification, error) {
	return s.repo.MarkRead(ctx, id, userID, s.now().UTC())
}
