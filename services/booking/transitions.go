package booking

import (
	"brandconnect/models"
	"brandconnect/services/errs"
)

// transitions is the complete lifecycle table. Completed and cancelled are terminal.
var transitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPending:    {models.BookingConfirmed, models.BookingCancelled},
	models.BookingConfirmed:  {models.BookingInProgress, models.BookingCancelled},
	models.BookingInProgress: {models.BookingCompleted, models.BookingCancelled},
	models.BookingCompleted:  nil,
	models.BookingCancelled:  nil,
}

// AllowedTransitions lists the statuses reachable from "from" in one step.
func AllowedTransitions(from models.BookingStatus) []models.BookingStatus {
	return append([]models.BookingStatus(nil), transitions[from]...)
}

func CanTransition(from, to models.BookingStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns an *errs.InvalidTransitionError when from -> to
// is not in the table.
func ValidateTransition(from, to models.BookingStatus) error {
	if CanTransition(from, to) {
		return nil
	}
	allowed := make([]string, 0, len(transitions[from]))
	for _, s := range transitions[from] {
		allowed = append(allowed, string(s))
	}
	return &errs.InvalidTransitionError{From: string(from), To: string(to), Allowed: allowed}
}

// IsValidStatus reports whether s is one of the five lifecycle states.
func IsValidStatus(s models.BookingStatus) bool {
	_, ok := transitions[s]
	return ok
}
