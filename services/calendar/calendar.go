// Package calendar exports bookings to Google, Outlook and iCalendar clients.
package calendar

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"brandconnect/models"
)

const (
	googleBase  = "https://calendar.google.com/calendar/render"
	outlookBase = "https://outlook.live.com/calendar/0/deeplink/compose"
	prodID      = "-//Brand Connect//Booking System//EN"
	uidDomain   = "brandconnect.co.tz"
	stampLayout = "20060102T150405Z"
)

type Event struct {
	ID          string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Location    string
	Attendees   []string
	Stamp       time.Time
}

// BookingEvent describes a booking from the client's side. The booking's
// date and times are read in Tanzanian local time.
func BookingEvent(b models.Booking, creative models.User, service models.Service) (Event, error) {
	start, end, err := models.BookingWindow(b)
	if err != nil {
		return Event{}, err
	}
	var desc strings.Builder
	desc.WriteString("Booking Details:\n\n")
	fmt.Fprintf(&desc, "Service: %s\n", service.Name)
	fmt.Fprintf(&desc, "Creative: %s\n", creative.Name)
	if creative.Location != "" {
		fmt.Fprintf(&desc, "Location: %s\n", creative.Location)
	}
	if creative.Phone != "" {
		fmt.Fprintf(&desc, "Phone: %s\n", creative.Phone)
	}
	if creative.Email != "" {
		fmt.Fprintf(&desc, "Email: %s\n", creative.Email)
	}
	fmt.Fprintf(&desc, "\nBooking ID: %s", b.ID)

	var attendees []string
	if creative.Email != "" {
		attendees = append(attendees, creative.Email)
	}
	return Event{
		ID:          b.ID,
		Title:       fmt.Sprintf("%s with %s", service.Name, creative.Name),
		Description: desc.String(),
		Start:       start,
		End:         end,
		Location:    creative.Location,
		Attendees:   attendees,
		Stamp:       b.CreatedAt,
	}, nil
}

func utcStamp(t time.Time) string {
	return t.UTC().Format(stampLayout)
}

func GoogleCalendarURL(e Event) string {
	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", e.Title)
	q.Set("dates", utcStamp(e.Start)+"/"+utcStamp(e.End))
	q.Set("details", e.Description)
	q.Set("location", e.Location)
	q.Set("sf", "true")
	q.Set("output", "xml")
	return googleBase + "?" + q.Encode()
}

func OutlookCalendarURL(e Event) string {
	q := url.Values{}
	q.Set("subject", e.Title)
	q.Set("body", e.Description)
	q.Set("startdt", e.Start.UTC().Format(time.RFC3339))
	q.Set("enddt", e.End.UTC().Format(time.RFC3339))
	q.Set("location", e.Location)
	return outlookBase + "?" + q.Encode()
}

var textEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

// fold splits content lines longer than 75 octets.
func fold(line string) string {
	if len(line) <= 75 {
		return line
	}
	var b strings.Builder
	width := 75
	for len(line) > width {
		cut := width
		// keep UTF-8 sequences whole
		for cut > 0 && line[cut]&0xC0 == 0x80 {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		width = 74
	}
	b.WriteString(line)
	return b.String()
}

// ICS renders a single-event VCALENDAR document.
func ICS(e Event) string {
	stamp := e.Stamp
	if stamp.IsZero() {
		stamp = e.Start
	}
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + prodID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:" + e.ID + "@" + uidDomain,
		"DTSTAMP:" + utcStamp(stamp),
		"DTSTART:" + utcStamp(e.Start),
		"DTEND:" + utcStamp(e.End),
		"SUMMARY:" + textEscaper.Replace(e.Title),
		"DESCRIPTION:" + textEscaper.Replace(e.Description),
		"LOCATION:" + textEscaper.Replace(e.Location),
	}
	for _, a := range e.Attendees {
		lines = append(lines, "ATTENDEE:mailto:"+a)
	}
	lines = append(lines, "STATUS:CONFIRMED", "END:VEVENT", "END:VCALENDAR")

	for i, l := range lines {
		lines[i] = fold(l)
	}
	return strings.Join(lines, "\r\n") + "\r\n"
}
