package booking

import (
	"context"
	"fmt"

	"brandconnect/models"
	"brandconnect/services/errs"
)

// Working hours offered on the booking page.
const (
	dayStartMinutes = 9 * 60
	dayEndMinutes   = 17 * 60
	slotMinutes     = 60
)

// AvailableSlots returns the creative's hourly slots for date, with every
// slot overlapping a confirmed or in-progress booking marked unavailable.
func (s *DefaultBookingService) AvailableSlots(ctx context.Context, creativeID, date string) ([]models.TimeSlot, error) {
	if creativeID == "" {
		return nil, errs.Validation("creativeId is required")
	}
	if _, err := models.ParseDate(date); err != nil {
		return nil, errs.Validation("%v", err)
	}

	holding, err := s.Repo.ListHoldingSlots(ctx, creativeID, date)
	if err != nil {
		return nil, fmt.Errorf("AvailableSlots: %w", err)
	}
	return buildSlots(creativeID, date, holding), nil
}

func buildSlots(creativeID, date string, holding []models.Booking) []models.TimeSlot {
	slots := make([]models.TimeSlot, 0, (dayEndMinutes-dayStartMinutes)/slotMinutes)
	for start := dayStartMinutes; start+slotMinutes <= dayEndMinutes; start += slotMinutes {
		end := start + slotMinutes
		slot := models.TimeSlot{
			ID:         fmt.Sprintf("%s-%s-%s", creativeID, date, models.FormatClock(start)),
			CreativeID: creativeID,
			Date:       date,
			StartTime:  models.FormatClock(start),
			EndTime:    models.FormatClock(end),
			Available:  true,
		}
		for _, b := range holding {
			bs, err1 := models.ParseClock(b.StartTime)
			be, err2 := models.ParseClock(b.EndTime)
			if err1 != nil || err2 != nil {
				continue
			}
			if models.Overlaps(start, end, bs, be) {
				slot.Available = false
				break
			}
		}
		slots = append(slots, slot)
	}
	return slots
}
