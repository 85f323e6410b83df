package notification

import (
	"bytes"
	"fmt"
	"html/template"

	"brandconnect/models"
	"brandconnect/services/payment"
)

const (
	subjectBookingConfirmation = "Booking Confirmation - Brand Connect"
	subjectNewBooking          = "New Booking - Brand Connect"
	subjectPaymentReceipt      = "Payment Receipt - Brand Connect"
)

var emailTemplates = template.Must(template.New("email").Parse(`
{{define "client_booking"}}<h2>Booking Confirmed!</h2>
<p>Dear {{.Client}},</p>
<p>Your booking has been confirmed with the following details:</p>
<ul>
<li><strong>Creative:</strong> {{.Creative}}</li>
<li><strong>Service:</strong> {{.Service}}</li>
<li><strong>Date:</strong> {{.Date}}</li>
<li><strong>Time:</strong> {{.Start}} - {{.End}}</li>
<li><strong>Amount:</strong> {{.Amount}}</li>
</ul>
<p>We'll send you a reminder 24 hours before your appointment.</p>
<p>Best regards,<br>Brand Connect Team</p>{{end}}
{{define "creative_booking"}}<h2>New Booking</h2>
<p>Dear {{.Creative}},</p>
<p>{{.Client}} has booked you:</p>
<ul>
<li><strong>Service:</strong> {{.Service}}</li>
<li><strong>Date:</strong> {{.Date}}</li>
<li><strong>Time:</strong> {{.Start}} - {{.End}}</li>
<li><strong>Amount:</strong> {{.Amount}}</li>
</ul>
<p>Best regards,<br>Brand Connect Team</p>{{end}}
{{define "receipt"}}<h2>Payment Receipt</h2>
<p>Thank you for your payment{{if .Client}}, {{.Client}}{{end}}!</p>
<ul>
<li><strong>Transaction ID:</strong> {{.TransactionID}}</li>
<li><strong>Amount:</strong> {{.Amount}}</li>
<li><strong>Payment Method:</strong> {{.Method}}</li>
<li><strong>Date:</strong> {{.Date}}</li>
</ul>{{end}}
`))

type bookingView struct {
	ID       string
	Client   string
	Creative string
	Service  string
	Date     string
	Start    string
	End      string
	Amount   string
}

type receiptView struct {
	Client        string
	TransactionID string
	Amount        string
	Method        string
	Date          string
}

func newBookingView(b models.Booking, serviceName string, creative, client models.User) bookingView {
	if serviceName == "" {
		serviceName = b.ServiceID
	}
	return bookingView{
		ID:       b.ID,
		Client:   client.Name,
		Creative: creative.Name,
		Service:  serviceName,
		Date:     b.Date,
		Start:    b.StartTime,
		End:      b.EndTime,
		Amount:   payment.FormatCurrency(b.TotalAmount, "TZS"),
	}
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func clientBookingSMS(v bookingView) string {
	return fmt.Sprintf("Hi %s! Your booking with %s for %s at %s has been confirmed. Booking ID: %s",
		v.Client, v.Creative, v.Date, v.Start, v.ID)
}

func creativeBookingSMS(v bookingView) string {
	return fmt.Sprintf("Hi %s! %s booked %s on %s at %s. Booking ID: %s",
		v.Creative, v.Client, v.Service, v.Date, v.Start, v.ID)
}

func reminderSMS(b models.Booking, creative models.User) string {
	msg := fmt.Sprintf("Reminder: You have a booking with %s tomorrow at %s.", creative.Name, b.StartTime)
	if creative.Location != "" {
		msg += " Location: " + creative.Location + "."
	}
	if creative.Phone != "" {
		msg += " Contact: " + creative.Phone
	}
	return msg
}
