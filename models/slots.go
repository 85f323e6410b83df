package models

import (
	"fmt"
	"time"
)

// TimeSlot is a bookable window on a creative's calendar.
type TimeSlot struct {
	ID         string `json:"id"`
	CreativeID string `json:"creativeId"`
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	Available  bool   `json:"available"`
}

// ParseClock converts "HH:MM" into minutes from midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock converts minutes from midnight into "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate validates a "YYYY-MM-DD" date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}

// Overlaps reports whether [aStart,aEnd) and [bStart,bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// BookingsOverlap compares two bookings on the same date. Unparseable times
// never overlap; they are rejected at creation.
func BookingsOverlap(a, b Booking) bool {
	if a.Date != b.Date {
		return false
	}
	as, err1 := ParseClock(a.StartTime)
	ae, err2 := ParseClock(a.EndTime)
	bs, err3 := ParseClock(b.StartTime)
	be, err4 := ParseClock(b.EndTime)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return false
	}
	return Overlaps(as, ae, bs, be)
}

// Bookings are made in Tanzanian local time.
var BookingLocation = loadBookingLocation()

func loadBookingLocation() *time.Location {
	loc, err := time.LoadLocation("Africa/Dar_es_Salaam")
	if err != nil {
		return time.FixedZone("EAT", 3*60*60)
	}
	return loc
}

// BookingWindow returns the absolute start and end of a booking.
func BookingWindow(b Booking) (time.Time, time.Time, error) {
	day, err := ParseDate(b.Date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, err := ParseClock(b.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ParseClock(b.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, BookingLocation)
	return midnight.Add(time.Duration(start) * time.Minute), midnight.Add(time.Duration(end) * time.Minute), nil
}
