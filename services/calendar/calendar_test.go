package calendar

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"brandconnect/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent(t *testing.T) Event {
	t.Helper()
	b := models.Booking{
		ID: "booking-1", Date: "2025-03-10", StartTime: "10:00", EndTime: "11:30",
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	creative := models.User{Name: "Baraka", Email: "baraka@example.com", Phone: "+255754000111", Location: "Masaki, Dar es Salaam"}
	service := models.Service{Name: "Portrait Session"}
	e, err := BookingEvent(b, creative, service)
	require.NoError(t, err)
	return e
}

func TestBookingEvent(t *testing.T) {
	e := sampleEvent(t)
	assert.Equal(t, "Portrait Session with Baraka", e.Title)
	// 10:00 EAT is 07:00 UTC.
	assert.Equal(t, time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC), e.Start.UTC())
	assert.Equal(t, 90*time.Minute, e.End.Sub(e.Start))
	assert.Contains(t, e.Description, "Booking ID: booking-1")
	assert.Equal(t, []string{"baraka@example.com"}, e.Attendees)

	_, err := BookingEvent(models.Booking{Date: "10/03/2025", StartTime: "10:00", EndTime: "11:00"}, models.User{}, models.Service{})
	assert.Error(t, err)
}

func TestGoogleCalendarURL(t *testing.T) {
	raw := GoogleCalendarURL(sampleEvent(t))
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "calendar.google.com", u.Host)
	q := u.Query()
	assert.Equal(t, "TEMPLATE", q.Get("action"))
	assert.Equal(t, "20250310T070000Z/20250310T083000Z", q.Get("dates"))
	assert.Equal(t, "Masaki, Dar es Salaam", q.Get("location"))
}

func TestOutlookCalendarURL(t *testing.T) {
	u, err := url.Parse(OutlookCalendarURL(sampleEvent(t)))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "2025-03-10T07:00:00Z", q.Get("startdt"))
	assert.Equal(t, "2025-03-10T08:30:00Z", q.Get("enddt"))
	assert.Equal(t, "Portrait Session with Baraka", q.Get("subject"))
}

func TestICS(t *testing.T) {
	doc := ICS(sampleEvent(t))
	assert.True(t, strings.HasPrefix(doc, "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//Brand Connect//Booking System//EN\r\n"))
	assert.Contains(t, doc, "UID:booking-1@brandconnect.co.tz\r\n")
	assert.Contains(t, doc, "DTSTART:20250310T070000Z\r\n")
	assert.Contains(t, doc, "DTEND:20250310T083000Z\r\n")
	assert.Contains(t, doc, "DTSTAMP:20250301T120000Z\r\n")
	assert.Contains(t, doc, `LOCATION:Masaki\, Dar es Salaam`)
	assert.Contains(t, doc, "ATTENDEE:mailto:baraka@example.com\r\n")
	assert.True(t, strings.HasSuffix(doc, "END:VEVENT\r\nEND:VCALENDAR\r\n"))

	for _, line := range strings.Split(doc, "\r\n") {
		assert.LessOrEqual(t, len(line), 75, line)
	}
}

func TestFoldKeepsContent(t *testing.T) {
	long := "DESCRIPTION:" + strings.Repeat("ü", 60)
	folded := fold(long)
	assert.Equal(t, long, strings.ReplaceAll(folded, "\r\n ", ""))
	for _, line := range strings.Split(folded, "\r\n") {
		assert.LessOrEqual(t, len(line), 75)
	}
}
