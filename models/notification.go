package models

import "time"

const (
	NotificationBookingCreated = "booking_created"
	NotificationNewBooking     = "new_booking"
	NotificationBookingStatus  = "booking_status"
	NotificationPaymentReceipt = "payment_receipt"
	NotificationReminder       = "booking_reminder"
)

type Notification struct {
	ID        string         `bson:"id" json:"id"`
	UserID    string         `bson:"user_id" json:"userId"`
	Type      string         `bson:"type" json:"type"`
	Title     string         `bson:"title" json:"title"`
	Message   string         `bson:"message" json:"message"`
	Data      map[string]any `bson:"data,omitempty" json:"data,omitempty"`
	ReadAt    *time.Time     `bson:"read_at,omitempty" json:"readAt,omitempty"`
	CreatedAt time.Time      `bson:"created_at" json:"createdAt"`
}

// DispatchResult exposes each channel's outcome of a multi-channel send.
type DispatchResult struct {
	EmailSent bool `json:"emailSent"`
	SMSSent   bool `json:"smsSent"`
}

// ReminderPayload is the asynq task body for a booking reminder.
type ReminderPayload struct {
	BookingID string `json:"bookingId"`
	FireAt    string `json:"fireAt"`
}
