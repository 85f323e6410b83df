package models

import "time"

const (
	ConversationActive = "active"
	MessageTypeText    = "text"
)

// Conversation is the channel between exactly one client and one creative,
// optionally scoped to a booking.
type Conversation struct {
	ID            string    `bson:"id" json:"id"`
	BookingID     string    `bson:"booking_id,omitempty" json:"bookingId,omitempty"`
	ClientID      string    `bson:"client_id" json:"clientId"`
	CreativeID    string    `bson:"creative_id" json:"creativeId"`
	Status        string    `bson:"status" json:"status"`
	LastMessageAt time.Time `bson:"last_message_at" json:"lastMessageAt"`
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
}

// HasParticipant reports whether userID is the client or the creative.
func (c Conversation) HasParticipant(userID string) bool {
	return userID != "" && (userID == c.ClientID || userID == c.CreativeID)
}

type Message struct {
	ID             string     `bson:"id" json:"id"`
	ConversationID string     `bson:"conversation_id" json:"conversationId"`
	SenderID       string     `bson:"sender_id" json:"senderId"`
	Content        string     `bson:"content" json:"content"`
	MessageType    string     `bson:"message_type" json:"messageType"`
	ReadAt         *time.Time `bson:"read_at,omitempty" json:"readAt,omitempty"`
	CreatedAt      time.Time  `bson:"created_at" json:"createdAt"`
}
