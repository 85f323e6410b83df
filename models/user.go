package models

import "time"

type Role string

const (
	RoleClient   Role = "client"
	RoleCreative Role = "creative"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Role      Role      `bson:"role" json:"role"`
	Location  string    `bson:"location,omitempty" json:"location,omitempty"`
	Verified  bool      `bson:"verified" json:"verified"`
	FCMToken  string    `bson:"fcm_token,omitempty" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Service is an offering owned by one creative. Price is in whole shillings.
type Service struct {
	ID         string    `bson:"id" json:"id"`
	CreativeID string    `bson:"creative_id" json:"creativeId"`
	Name       string    `bson:"name" json:"name"`
	Price      int64     `bson:"price" json:"price"`
	Duration   int       `bson:"duration" json:"duration"` // minutes
	Category   string    `bson:"category,omitempty" json:"category,omitempty"`
	Active     bool      `bson:"active" json:"active"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}
