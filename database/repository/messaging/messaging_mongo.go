package messagingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brandconnect/database"
	"brandconnect/models"
	"brandconnect/services/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoMessagingRepo struct {
	conversations *mongo.Collection
	messages      *mongo.Collection
}

func NewMongoMessagingRepo() MessagingRepository {
	db := database.DB()
	repo := &MongoMessagingRepo{
		conversations: db.Collection("conversations"),
		messages:      db.Collection("messages"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create messaging indexes: %v\n", err)
	}
	return repo
}

func newContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

func (r *MongoMessagingRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.conversations.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys:    bson.D{{Key: "client_id", Value: 1}, {Key: "creative_id", Value: 1}, {Key: "booking_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("participants_booking_unique"),
		},
		{Keys: bson.D{{Key: "creative_id", Value: 1}, {Key: "last_message_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create conversation indexes: %w", err)
	}
	_, err = r.messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}
	return nil
}

func participantsFilter(clientID, creativeID, bookingID string) bson.M {
	filter := bson.M{"client_id": clientID, "creative_id": creativeID}
	if bookingID == "" {
		filter["booking_id"] = bson.M{"$in": bson.A{nil, ""}}
	} else {
		filter["booking_id"] = bookingID
	}
	return filter
}

func (r *MongoMessagingRepo) CreateConversation(ctx context.Context, c *models.Conversation) (*models.Conversation, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var existing models.Conversation
	err := r.conversations.FindOne(ctx, participantsFilter(c.ClientID, c.CreativeID, c.BookingID)).Decode(&existing)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("error looking up conversation: %w", err)
	}

	if _, err := r.conversations.InsertOne(ctx, c); err != nil {
		// Lost a creation race; the unique index kept one document.
		if mongo.IsDuplicateKeyError(err) {
			if err := r.conversations.FindOne(ctx, participantsFilter(c.ClientID, c.CreativeID, c.BookingID)).Decode(&existing); err != nil {
				return nil, fmt.Errorf("error reloading conversation: %w", err)
			}
			return &existing, nil
		}
		return nil, fmt.Errorf("error creating conversation: %w", err)
	}
	return c, nil
}

func (r *MongoMessagingRepo) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var conv models.Conversation
	if err := r.conversations.FindOne(ctx, bson.M{"id": id}).Decode(&conv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NotFound("conversation", id)
		}
		return nil, fmt.Errorf("error fetching conversation %s: %w", id, err)
	}
	return &conv, nil
}

func (r *MongoMessagingRepo) ListConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"$or": bson.A{bson.M{"client_id": userID}, bson.M{"creative_id": userID}}}
	opts := options.Find().SetSort(bson.D{{Key: "last_message_at", Value: -1}, {Key: "id", Value: 1}})
	cursor, err := r.conversations.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing conversations: %w", err)
	}
	defer cursor.Close(ctx)

	conversations := []models.Conversation{}
	if err := cursor.All(ctx, &conversations); err != nil {
		return nil, fmt.Errorf("error decoding conversations: %w", err)
	}
	return conversations, nil
}

func (r *MongoMessagingRepo) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "id", Value: 1}})
	cursor, err := r.messages.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("error decoding messages: %w", err)
	}
	return messages, nil
}

func (r *MongoMessagingRepo) AppendMessage(ctx context.Context, m *models.Message) error {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	err := database.WithTransaction(ctx, r.messages.Database().Client(), func(sc mongo.SessionContext) error {
		if _, err := r.messages.InsertOne(sc, m); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
		res, err := r.conversations.UpdateOne(sc,
			bson.M{"id": m.ConversationID},
			bson.M{"$max": bson.M{"last_message_at": m.CreatedAt}},
		)
		if err != nil {
			return fmt.Errorf("advance lastMessageAt: %w", err)
		}
		if res.MatchedCount == 0 {
			return errs.NotFound("conversation", m.ConversationID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("append message transaction: %w", err)
	}
	return nil
}

func (r *MongoMessagingRepo) MarkRead(ctx context.Context, conversationID, readerID string, at time.Time) (int64, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.messages.UpdateMany(ctx,
		bson.M{
			"conversation_id": conversationID,
			"sender_id":       bson.M{"$ne": readerID},
			"read_at":         nil,
		},
		bson.M{"$set": bson.M{"read_at": at}},
	)
	if err != nil {
		return 0, fmt.Errorf("error marking messages read: %w", err)
	}
	return res.ModifiedCount, nil
}
