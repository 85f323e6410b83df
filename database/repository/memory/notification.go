package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	notificationRepo "brandconnect/database/repository/notification"
	"brandconnect/models"
	"brandconnect/services/errs"
)

type NotificationRepo struct {
	mu    sync.Mutex
	items map[string]models.Notification
}

func NewNotificationRepo() *NotificationRepo {
	return &NotificationRepo{items: make(map[string]models.Notification)}
}

var _ notificationRepo.NotificationRepository = (*NotificationRepo)(nil)

func (r *NotificationRepo) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[n.ID] = *n
	return nil
}

func (r *NotificationRepo) ListByUser(_ context.Context, userID string) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.Notification{}
	for _, n := range r.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *NotificationRepo) MarkRead(_ context.Context, id, userID string, at time.Time) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]
	if !ok || n.UserID != userID {
		return nil, errs.NotFound("notification", id)
	}
	if n.ReadAt == nil {
		stamp := at
		n.ReadAt = &stamp
		r.items[id] = n
	}
	return &n, nil
}
