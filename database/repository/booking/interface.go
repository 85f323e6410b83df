package bookingRepo

import (
	"brandconnect/models"
	"context"
	"errors"
)

// ErrVersionConflict is returned when a conditional update finds the booking
// at a different version than the caller read.
var ErrVersionConflict = errors.New("booking was modified concurrently")

// BookingRepository persists bookings and owns the slot invariant: no two
// bookings holding a slot (confirmed, in-progress) overlap for one creative
// and date.
type BookingRepository interface {
	// CreateIfSlotFree inserts b unless its window overlaps a booking that
	// holds a slot. The check and the insert form one atomic unit.
	CreateIfSlotFree(ctx context.Context, b *models.Booking) error
	// GetByID returns errs.ErrNotFound for an unknown id.
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// UpdateStatus moves the booking to status if it is still at
	// expectedVersion. Moving into a slot-holding status re-checks overlap
	// in the same atomic unit.
	UpdateStatus(ctx context.Context, id string, expectedVersion int64, status models.BookingStatus) (*models.Booking, error)
	// SetPaymentStatus updates the payment side of the booking only.
	SetPaymentStatus(ctx context.Context, id string, status models.BookingPaymentStatus, paymentID string) (*models.Booking, error)
	// List applies every non-empty filter field, newest first.
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	// ListHoldingSlots returns the confirmed and in-progress bookings of a creative on date.
	ListHoldingSlots(ctx context.Context, creativeID, date string) ([]models.Booking, error)
}

// FirstConflict returns the first booking in holding that overlaps b.
func FirstConflict(b models.Booking, holding []models.Booking) (models.Booking, bool) {
	for _, h := range holding {
		if h.ID == b.ID || !h.HoldsSlot() {
			continue
		}
		if models.BookingsOverlap(b, h) {
			return h, true
		}
	}
	return models.Booking{}, false
}
