package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	messagingRepo "brandconnect/database/repository/messaging"
	"brandconnect/models"
	"brandconnect/services/errs"
)

type MessagingRepo struct {
	mu            sync.Mutex
	conversations map[string]models.Conversation
	messages      map[string][]models.Message
}

func NewMessagingRepo() *MessagingRepo {
	return &MessagingRepo{
		conversations: make(map[string]models.Conversation),
		messages:      make(map[string][]models.Message),
	}
}

var _ messagingRepo.MessagingRepository = (*MessagingRepo)(nil)

func (r *MessagingRepo) CreateConversation(_ context.Context, c *models.Conversation) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.conversations {
		if existing.ClientID == c.ClientID && existing.CreativeID == c.CreativeID && existing.BookingID == c.BookingID {
			out := existing
			return &out, nil
		}
	}
	r.conversations[c.ID] = *c
	out := *c
	return &out, nil
}

func (r *MessagingRepo) GetConversation(_ context.Context, id string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conversations[id]
	if !ok {
		return nil, errs.NotFound("conversation", id)
	}
	return &c, nil
}

func (r *MessagingRepo) ListConversations(_ context.Context, userID string) ([]models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.Conversation{}
	for _, c := range r.conversations {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastMessageAt.Equal(out[j].LastMessageAt) {
			return out[i].LastMessageAt.After(out[j].LastMessageAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MessagingRepo) ListMessages(_ context.Context, conversationID string) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := append([]models.Message{}, r.messages[conversationID]...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MessagingRepo) AppendMessage(_ context.Context, m *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conversations[m.ConversationID]
	if !ok {
		return errs.NotFound("conversation", m.ConversationID)
	}
	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], *m)
	if m.CreatedAt.After(c.LastMessageAt) {
		c.LastMessageAt = m.CreatedAt
		r.conversations[c.ID] = c
	}
	return nil
}

func (r *MessagingRepo) MarkRead(_ context.Context, conversationID, readerID string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	msgs := r.messages[conversationID]
	for i := range msgs {
		if msgs[i].SenderID == readerID || msgs[i].ReadAt != nil {
			continue
		}
		stamp := at
		msgs[i].ReadAt = &stamp
		n++
	}
	return n, nil
}
