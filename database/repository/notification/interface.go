package notificationRepo

import (
	"brandconnect/models"
	"context"
	"time"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	// ListByUser returns the user's in-app notifications, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	// MarkRead returns errs.ErrNotFound when id does not belong to userID.
	MarkRead(ctx context.Context, id, userID string, at time.Time) (*models.Notification, error)
}
