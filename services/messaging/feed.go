package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"brandconnect/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Unsubscribe stops delivery to one subscriber.
type Unsubscribe func()

// Feed delivers newly appended messages to live subscribers of a
// conversation. Delivery is at-least-once; consumers drop repeats with a
// Deduplicator.
type Feed interface {
	Publish(ctx context.Context, msg models.Message) error
	Subscribe(conversationID string, fn func(models.Message)) (Unsubscribe, error)
}

func channelName(conversationID string) string {
	return "conversation:" + conversationID
}

// RedisFeed fans messages out over Redis pub/sub so every API instance sees
// every message.
type RedisFeed struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisFeed(client *redis.Client, logger *zap.Logger) *RedisFeed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisFeed{client: client, logger: logger}
}

func (f *RedisFeed) Publish(ctx context.Context, msg models.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, channelName(msg.ConversationID), data).Err()
}

// Subscribe returns once the subscription is active.
func (f *RedisFeed) Subscribe(conversationID string, fn func(models.Message)) (Unsubscribe, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	ps := f.client.Subscribe(ctx, channelName(conversationID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", conversationID, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for m := range ps.Channel() {
			var msg models.Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				f.logger.Warn("dropping malformed feed payload", zap.String("channel", m.Channel), zap.Error(err))
				continue
			}
			fn(msg)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = ps.Close()
			<-done
		})
	}, nil
}

// MemoryFeed is a process-local Feed.
type MemoryFeed struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]func(models.Message)
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: make(map[string]map[int]func(models.Message))}
}

func (f *MemoryFeed) Publish(_ context.Context, msg models.Message) error {
	f.mu.RLock()
	handlers := make([]func(models.Message), 0, len(f.subs[msg.ConversationID]))
	for _, fn := range f.subs[msg.ConversationID] {
		handlers = append(handlers, fn)
	}
	f.mu.RUnlock()

	for _, fn := range handlers {
		fn(msg)
	}
	return nil
}

func (f *MemoryFeed) Subscribe(conversationID string, fn func(models.Message)) (Unsubscribe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	if f.subs[conversationID] == nil {
		f.subs[conversationID] = make(map[int]func(models.Message))
	}
	f.subs[conversationID][id] = fn

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs[conversationID], id)
		if len(f.subs[conversationID]) == 0 {
			delete(f.subs, conversationID)
		}
	}, nil
}

// Deduplicator remembers the last capacity message ids a consumer has seen.
type Deduplicator struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
	next  int
}

func NewDeduplicator(capacity int) *Deduplicator {
	if capacity <= 0 {
		capacity = 256
	}
	return &Deduplicator{
		seen:  make(map[string]struct{}, capacity),
		order: make([]string, capacity),
	}
}

// First reports whether id has not been seen before, and records it.
func (d *Deduplicator) First(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return false
	}
	if old := d.order[d.next]; old != "" {
		delete(d.seen, old)
	}
	d.order[d.next] = id
	d.next = (d.next + 1) % len(d.order)
	d.seen[id] = struct{}{}
	return true
}
