package booking

import (
	"context"
	"testing"

	"brandconnect/models"
	"brandconnect/services/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from, to models.BookingStatus
		ok       bool
	}{
		{models.BookingPending, models.BookingConfirmed, true},
		{models.BookingPending, models.BookingCancelled, true},
		{models.BookingPending, models.BookingInProgress, false},
		{models.BookingConfirmed, models.BookingInProgress, true},
		{models.BookingConfirmed, models.BookingPending, false},
		{models.BookingInProgress, models.BookingCompleted, true},
		{models.BookingInProgress, models.BookingCancelled, true},
		{models.BookingCompleted, models.BookingCancelled, false},
		{models.BookingCancelled, models.BookingPending, false},
		{models.BookingPending, models.BookingPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, errs.ErrInvalidTransition)
			}
		})
	}
	assert.Equal(t, []models.BookingStatus{models.BookingInProgress, models.BookingCancelled}, AllowedTransitions(models.BookingConfirmed))
	assert.Empty(t, AllowedTransitions(models.BookingCancelled))
}

func TestAvailableSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	held, err := f.svc.CreateBooking(ctx, request("10:30", "12:00"))
	require.NoError(t, err)
	_, err = f.svc.UpdateBookingStatus(ctx, held.ID, models.BookingConfirmed)
	require.NoError(t, err)
	// Pending bookings do not hold a slot.
	_, err = f.svc.CreateBooking(ctx, request("14:00", "15:00"))
	require.NoError(t, err)

	slots, err := f.svc.AvailableSlots(ctx, "creative-1", "2025-03-10")
	require.NoError(t, err)
	require.Len(t, slots, 8)
	assert.Equal(t, "09:00", slots[0].StartTime)
	assert.Equal(t, "17:00", slots[7].EndTime)

	unavailable := map[string]bool{}
	for _, s := range slots {
		if !s.Available {
			unavailable[s.StartTime] = true
		}
	}
	assert.Equal(t, map[string]bool{"10:00": true, "11:00": true}, unavailable)

	_, err = f.svc.AvailableSlots(ctx, "creative-1", "tomorrow")
	assert.ErrorIs(t, err, errs.ErrValidation)
}
