package models

import "time"

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in-progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

// BookingPaymentStatus is independent of BookingStatus; a confirmed booking may
// still be awaiting payment.
type BookingPaymentStatus string

const (
	BookingPaymentPending  BookingPaymentStatus = "pending"
	BookingPaymentPaid     BookingPaymentStatus = "paid"
	BookingPaymentFailed   BookingPaymentStatus = "failed"
	BookingPaymentRefunded BookingPaymentStatus = "refunded"
)

// Booking represents a client's reservation of a creative's service.
type Booking struct {
	ID            string               `bson:"id" json:"id"`
	ClientID      string               `bson:"client_id" json:"clientId"`
	CreativeID    string               `bson:"creative_id" json:"creativeId"`
	ServiceID     string               `bson:"service_id" json:"serviceId"`
	Date          string               `bson:"date" json:"date"`            // "YYYY-MM-DD"
	StartTime     string               `bson:"start_time" json:"startTime"` // "HH:MM"
	EndTime       string               `bson:"end_time" json:"endTime"`     // "HH:MM"
	Status        BookingStatus        `bson:"status" json:"status"`
	TotalAmount   int64                `bson:"total_amount" json:"totalAmount"`
	PaymentStatus BookingPaymentStatus `bson:"payment_status" json:"paymentStatus"`
	PaymentID     string               `bson:"payment_id,omitempty" json:"paymentId,omitempty"`
	Notes         string               `bson:"notes,omitempty" json:"notes,omitempty"`
	Version       int64                `bson:"version" json:"version"`
	CreatedAt     time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updated_at" json:"updatedAt"`
}

// BookingFilter narrows ListBookings; empty fields match everything.
type BookingFilter struct {
	Status     BookingStatus `form:"status" json:"status,omitempty"`
	ClientID   string        `form:"clientId" json:"clientId,omitempty"`
	CreativeID string        `form:"creativeId" json:"creativeId,omitempty"`
}

// CreateBookingRequest carries the selections made on the booking page.
type CreateBookingRequest struct {
	ClientID    string `json:"clientId"`
	CreativeID  string `json:"creativeId" binding:"required"`
	ServiceID   string `json:"serviceId" binding:"required"`
	Date        string `json:"date" binding:"required"`
	StartTime   string `json:"startTime" binding:"required"`
	EndTime     string `json:"endTime" binding:"required"`
	TotalAmount int64  `json:"totalAmount" binding:"required"`
	Notes       string `json:"notes,omitempty"`
	PaymentID   string `json:"paymentId,omitempty"`
}

// HoldsSlot reports whether the booking occupies the creative's calendar.
func (b Booking) HoldsSlot() bool {
	return b.Status == BookingConfirmed || b.Status == BookingInProgress
}
