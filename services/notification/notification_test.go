package notification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"brandconnect/database/repository/memory"
	"brandconnect/models"
	"brandconnect/services/errs"

	"firebase.google.com/go/v4/messaging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type MockSESService struct {
	mu            sync.Mutex
	sent          []*ses.SendEmailInput
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.mu.Lock()
	m.sent = append(m.sent, params)
	m.mu.Unlock()
	if m.SendEmailFunc == nil {
		return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
	}
	return m.SendEmailFunc(ctx, params, optFns...)
}

func (m *MockSESService) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, in := range m.sent {
		out = append(out, in.Destination.ToAddresses...)
	}
	return out
}

type MockSNSService struct {
	mu          sync.Mutex
	sent        []*sns.PublishInput
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.mu.Lock()
	m.sent = append(m.sent, params)
	m.mu.Unlock()
	if m.PublishFunc == nil {
		return &sns.PublishOutput{MessageId: aws.String("sms-1")}, nil
	}
	return m.PublishFunc(ctx, params, optFns...)
}

func (m *MockSNSService) numbers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, in := range m.sent {
		out = append(out, aws.ToString(in.PhoneNumber))
	}
	return out
}

type MockPusher struct {
	mu       sync.Mutex
	messages []*messaging.Message
	err      error
}

func (m *MockPusher) Send(_ context.Context, msg *messaging.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return "projects/x/messages/1", m.err
}

type fixture struct {
	svc    *DefaultNotificationService
	ses    *MockSESService
	sns    *MockSNSService
	push   *MockPusher
	users  *memory.UserRepo
	client models.User
	artist models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		ses:   &MockSESService{},
		sns:   &MockSNSService{},
		push:  &MockPusher{},
		users: memory.NewUserRepo(),
		client: models.User{
			ID: "client-1", Name: "Asha", Email: "asha@example.com", Phone: "0712345678",
			Role: models.RoleClient, FCMToken: "device-asha",
		},
		artist: models.User{
			ID: "creative-1", Name: "Baraka", Email: "baraka@example.com", Phone: "+255754000111",
			Role: models.RoleCreative, Location: "Masaki, Dar es Salaam",
		},
	}
	require.NoError(t, f.users.Create(ctx, &f.client))
	require.NoError(t, f.users.Create(ctx, &f.artist))
	require.NoError(t, f.users.CreateService(ctx, &models.Service{ID: "svc-1", CreativeID: "creative-1", Name: "Portrait Session", Price: 250000, Active: true}))

	svc, err := NewDefaultNotificationService(memory.NewNotificationRepo(), f.users, f.ses, f.sns, f.push, zaptest.NewLogger(t), Options{
		Timeout: 100 * time.Millisecond,
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func sampleBooking() models.Booking {
	return models.Booking{
		ID: "booking-1", ClientID: "client-1", CreativeID: "creative-1", ServiceID: "svc-1",
		Date: "2025-03-10", StartTime: "10:00", EndTime: "11:00",
		Status: models.BookingPending, TotalAmount: 250000,
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"0712345678":        "+255712345678",
		"+255 712 345 678":  "+255712345678",
		"255712345678":      "+255712345678",
		"00255712345678":    "+255712345678",
		"+1 (415) 555-0100": "+14155550100",
		"12345":             "",
		"not a number":      "",
		"":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePhone(in), in)
	}
}

func TestSendEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.True(t, f.svc.SendEmail(ctx, "asha@example.com", "Hello", "<p>hi</p>"))
	require.Len(t, f.ses.sent, 1)
	in := f.ses.sent[0]
	assert.Equal(t, "noreply@brandconnect.co.tz", aws.ToString(in.Source))
	assert.Equal(t, "Hello", aws.ToString(in.Message.Subject.Data))
	assert.Equal(t, "<p>hi</p>", aws.ToString(in.Message.Body.Html.Data))

	assert.False(t, f.svc.SendEmail(ctx, "not-an-address", "Hello", "x"))
	assert.Len(t, f.ses.sent, 1)

	f.ses.SendEmailFunc = func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
		return nil, errors.New("throttled")
	}
	assert.False(t, f.svc.SendEmail(ctx, "asha@example.com", "Hello", "x"))
}

func TestSendSMS_TimeoutReturnsFalse(t *testing.T) {
	f := newFixture(t)
	f.sns.PublishFunc = func(ctx context.Context, _ *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	start := time.Now()
	assert.False(t, f.svc.SendSMS(context.Background(), "0712345678", "hello"))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, []string{"+255712345678"}, f.sns.numbers())
}

func TestSendBookingConfirmation_AllChannels(t *testing.T) {
	f := newFixture(t)
	before := testutil.ToFloat64(dispatchTotal.WithLabelValues(channelEmail, outcomeSent))

	res := f.svc.SendBookingConfirmation(context.Background(), sampleBooking(), f.artist, f.client)
	assert.True(t, res.EmailSent)
	assert.True(t, res.SMSSent)

	assert.ElementsMatch(t, []string{"asha@example.com", "baraka@example.com"}, f.ses.recipients())
	assert.ElementsMatch(t, []string{"+255712345678", "+255754000111"}, f.sns.numbers())
	assert.Equal(t, before+2, testutil.ToFloat64(dispatchTotal.WithLabelValues(channelEmail, outcomeSent)))

	for _, in := range f.ses.sent {
		body := aws.ToString(in.Message.Body.Html.Data)
		assert.Contains(t, body, "Portrait Session")
		assert.Contains(t, body, "TZS 250,000")
	}
}

func TestSendBookingConfirmation_SMSFailureStillSendsEmail(t *testing.T) {
	f := newFixture(t)
	f.sns.PublishFunc = func(context.Context, *sns.PublishInput, ...func(*sns.Options)) (*sns.PublishOutput, error) {
		return nil, errors.New("unreachable number")
	}

	res := f.svc.SendBookingConfirmation(context.Background(), sampleBooking(), f.artist, f.client)
	assert.True(t, res.EmailSent)
	assert.False(t, res.SMSSent)
	assert.Len(t, f.ses.recipients(), 2)
}

func TestSendBookingConfirmation_EmailFailureStillSendsSMS(t *testing.T) {
	f := newFixture(t)
	f.ses.SendEmailFunc = func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
		return nil, errors.New("ses down")
	}
	client := f.client
	client.Email = ""

	res := f.svc.SendBookingConfirmation(context.Background(), sampleBooking(), f.artist, client)
	assert.False(t, res.EmailSent)
	assert.True(t, res.SMSSent)
}

func TestSendPaymentReceiptAndReminder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := models.Payment{
		ID: "pay-1", Amount: 250000, Currency: "TZS", Method: models.MethodMobileMoney,
		Status: models.PaymentCompleted, TransactionID: "txn-9",
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	assert.True(t, f.svc.SendPaymentReceipt(ctx, p, f.client))
	require.Len(t, f.ses.sent, 1)
	body := aws.ToString(f.ses.sent[0].Message.Body.Html.Data)
	assert.Contains(t, body, "txn-9")
	assert.Contains(t, body, "mobile_money")
	assert.Contains(t, body, "1 March 2025")

	assert.True(t, f.svc.SendReminder(ctx, sampleBooking(), f.artist, f.client))
	require.Len(t, f.sns.sent, 1)
	msg := aws.ToString(f.sns.sent[0].Message)
	assert.True(t, strings.HasPrefix(msg, "Reminder: You have a booking with Baraka tomorrow at 10:00."))
	assert.Contains(t, msg, "Masaki")
	assert.Contains(t, msg, "+255754000111")
}

func TestTemplatesEscapeUserInput(t *testing.T) {
	f := newFixture(t)
	client := f.client
	client.Name = "<script>x</script>"

	f.svc.SendBookingConfirmation(context.Background(), sampleBooking(), f.artist, client)
	for _, in := range f.ses.sent {
		assert.NotContains(t, aws.ToString(in.Message.Body.Html.Data), "<script>")
	}
}

func TestCreateNotification_PushesWhenDeviceRegistered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.svc.CreateNotification(ctx, "client-1", models.NotificationBookingCreated, "Booking request sent", "Awaiting confirmation", map[string]any{"bookingId": "booking-1"})
	require.NoError(t, err)
	assert.Nil(t, n.ReadAt)
	require.Len(t, f.push.messages, 1)
	msg := f.push.messages[0]
	assert.Equal(t, "device-asha", msg.Token)
	assert.Equal(t, "booking-1", msg.Data["bookingId"])
	assert.Equal(t, "client", msg.Data["role"])

	// No device token: stored, not pushed.
	_, err = f.svc.CreateNotification(ctx, "creative-1", models.NotificationNewBooking, "New booking", "", nil)
	require.NoError(t, err)
	assert.Len(t, f.push.messages, 1)
}

func TestCreateNotification_PushFailureIsNotAnError(t *testing.T) {
	f := newFixture(t)
	f.push.err = errors.New("registration token not registered")

	n, err := f.svc.CreateNotification(context.Background(), "client-1", models.NotificationBookingStatus, "Booking confirmed", "See you soon", nil)
	require.NoError(t, err)
	list, err := f.svc.ListNotifications(context.Background(), "client-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, n.ID, list[0].ID)
}

func TestCreateNotification_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateNotification(context.Background(), "", "x", "t", "m", nil)
	assert.ErrorIs(t, err, errs.ErrValidation)
	_, err = f.svc.CreateNotification(context.Background(), "client-1", "x", " ", "", nil)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestListAndMarkNotificationRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	tick := 0
	f.svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, err := f.svc.CreateNotification(ctx, "client-1", "a", "first", "", nil)
	require.NoError(t, err)
	second, err := f.svc.CreateNotification(ctx, "client-1", "b", "second", "", nil)
	require.NoError(t, err)

	list, err := f.svc.ListNotifications(ctx, "client-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	read, err := f.svc.MarkNotificationRead(ctx, first.ID, "client-1")
	require.NoError(t, err)
	require.NotNil(t, read.ReadAt)
	firstRead := *read.ReadAt

	again, err := f.svc.MarkNotificationRead(ctx, first.ID, "client-1")
	require.NoError(t, err)
	assert.True(t, firstRead.Equal(*again.ReadAt))

	_, err = f.svc.MarkNotificationRead(ctx, first.ID, "creative-1")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
