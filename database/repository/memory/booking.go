// Package memory holds in-process repositories with the same atomicity
// guarantees as the Mongo ones. They back tests and local runs without a
// replica set.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	bookingRepo "brandconnect/database/repository/booking"
	"brandconnect/models"
	"brandconnect/services/errs"
)

type BookingRepo struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
}

func NewBookingRepo() *BookingRepo {
	return &BookingRepo{bookings: make(map[string]models.Booking)}
}

var _ bookingRepo.BookingRepository = (*BookingRepo)(nil)

func (r *BookingRepo) holdingLocked(creativeID, date string) []models.Booking {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.CreativeID == creativeID && b.Date == date && b.HoldsSlot() {
			out = append(out, b)
		}
	}
	return out
}

func (r *BookingRepo) CreateIfSlotFree(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, clash := bookingRepo.FirstConflict(*b, r.holdingLocked(b.CreativeID, b.Date)); clash {
		return errs.SlotUnavailable(b.CreativeID, b.Date, b.StartTime, b.EndTime)
	}
	r.bookings[b.ID] = *b
	return nil
}

func (r *BookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, errs.NotFound("booking", id)
	}
	return &b, nil
}

func (r *BookingRepo) UpdateStatus(_ context.Context, id string, expectedVersion int64, status models.BookingStatus) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.bookings[id]
	if !ok {
		return nil, errs.NotFound("booking", id)
	}
	if current.Version != expectedVersion {
		return nil, bookingRepo.ErrVersionConflict
	}

	next := current
	next.Status = status
	if next.HoldsSlot() && !current.HoldsSlot() {
		if _, clash := bookingRepo.FirstConflict(next, r.holdingLocked(current.CreativeID, current.Date)); clash {
			return nil, errs.SlotUnavailable(current.CreativeID, current.Date, current.StartTime, current.EndTime)
		}
	}
	next.Version++
	next.UpdatedAt = time.Now().UTC()
	r.bookings[id] = next
	return &next, nil
}

func (r *BookingRepo) SetPaymentStatus(_ context.Context, id string, status models.BookingPaymentStatus, paymentID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, errs.NotFound("booking", id)
	}
	b.PaymentStatus = status
	if paymentID != "" {
		b.PaymentID = paymentID
	}
	b.Version++
	b.UpdatedAt = time.Now().UTC()
	r.bookings[id] = b
	return &b, nil
}

func (r *BookingRepo) List(_ context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.Booking{}
	for _, b := range r.bookings {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.ClientID != "" && b.ClientID != filter.ClientID {
			continue
		}
		if filter.CreativeID != "" && b.CreativeID != filter.CreativeID {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *BookingRepo) ListHoldingSlots(_ context.Context, creativeID, date string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.holdingLocked(creativeID, date), nil
}
