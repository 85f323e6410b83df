package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"brandconnect/database/repository/memory"
	"brandconnect/models"
	"brandconnect/services/errs"
	"brandconnect/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeNotifier struct {
	mu            sync.Mutex
	confirmations []string
	notifications []models.Notification
	failCreate    bool
}

func (f *fakeNotifier) SendBookingConfirmation(_ context.Context, b models.Booking, creative, client models.User) models.DispatchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmations = append(f.confirmations, b.ID+":"+creative.ID+":"+client.ID)
	return models.DispatchResult{EmailSent: true, SMSSent: false}
}

func (f *fakeNotifier) CreateNotification(_ context.Context, userID, notificationType, title, message string, data map[string]any) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return nil, errors.New("store down")
	}
	n := models.Notification{UserID: userID, Type: notificationType, Title: title, Message: message, Data: data}
	f.notifications = append(f.notifications, n)
	return &n, nil
}

type fakeReminders struct {
	scheduled []string
}

func (f *fakeReminders) ScheduleReminder(_ context.Context, b models.Booking) error {
	f.scheduled = append(f.scheduled, b.ID)
	return nil
}

// fakePayments claims a payment for one booking at a time, like the store.
type fakePayments struct {
	mu       sync.Mutex
	payments map[string]*models.Payment
}

func (f *fakePayments) add(p models.Payment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments[p.ID] = &p
}

func (f *fakePayments) attached(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payments[id].BookingID
}

func (f *fakePayments) GetPayment(_ context.Context, id string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return nil, errs.NotFound("payment", id)
	}
	cp := *p
	return &cp, nil
}

func (f *fakePayments) AttachBooking(_ context.Context, paymentID, bookingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[paymentID]
	if !ok {
		return errs.NotFound("payment", paymentID)
	}
	if p.BookingID != "" && p.BookingID != bookingID {
		return errs.Validation("payment %s already belongs to another booking", paymentID)
	}
	p.BookingID = bookingID
	return nil
}

func (f *fakePayments) DetachBooking(_ context.Context, paymentID, bookingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.payments[paymentID]; ok && p.BookingID == bookingID {
		p.BookingID = ""
	}
	return nil
}

type fixture struct {
	svc       *DefaultBookingService
	notifier  *fakeNotifier
	reminders *fakeReminders
	payments  *fakePayments
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	users := memory.NewUserRepo()
	require.NoError(t, users.Create(ctx, &models.User{ID: "client-1", Name: "Amina", Email: "amina@example.com", Phone: "+255700000001", Role: models.RoleClient}))
	require.NoError(t, users.Create(ctx, &models.User{ID: "creative-1", Name: "Baraka", Email: "baraka@example.com", Phone: "+255700000002", Role: models.RoleCreative}))
	require.NoError(t, users.CreateService(ctx, &models.Service{ID: "svc-1", CreativeID: "creative-1", Name: "Logo Design", Price: 250000, Duration: 120, Active: true}))

	f := &fixture{
		notifier:  &fakeNotifier{},
		reminders: &fakeReminders{},
		payments:  &fakePayments{payments: map[string]*models.Payment{}},
	}
	svc, err := NewDefaultBookingService(memory.NewBookingRepo(), users, f.payments, f.notifier, f.reminders, utils.NewKeyedMutex(), zaptest.NewLogger(t))
	require.NoError(t, err)
	f.svc = svc
	return f
}

func request(start, end string) models.CreateBookingRequest {
	return models.CreateBookingRequest{
		ClientID:    "client-1",
		CreativeID:  "creative-1",
		ServiceID:   "svc-1",
		Date:        "2025-03-10",
		StartTime:   start,
		EndTime:     end,
		TotalAmount: 250000,
	}
}

func TestCreateBooking_Pending(t *testing.T) {
	f := newFixture(t)

	b, err := f.svc.CreateBooking(context.Background(), request("10:00", "12:00"))
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, b.Status)
	assert.Equal(t, models.BookingPaymentPending, b.PaymentStatus)
	assert.NotEmpty(t, b.ID)

	assert.Equal(t, []string{b.ID + ":creative-1:client-1"}, f.notifier.confirmations)
	require.Len(t, f.notifier.notifications, 2)
	assert.Equal(t, "client-1", f.notifier.notifications[0].UserID)
	assert.Equal(t, "creative-1", f.notifier.notifications[1].UserID)
	assert.Equal(t, []string{b.ID}, f.reminders.scheduled)
}

func TestCreateBooking_NotificationFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.notifier.failCreate = true

	b, err := f.svc.CreateBooking(context.Background(), request("10:00", "12:00"))
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, b.Status)
}

func TestCreateBooking_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(*models.CreateBookingRequest)
		target error
	}{
		{"end before start", func(r *models.CreateBookingRequest) { r.EndTime = "09:00" }, errs.ErrValidation},
		{"bad date", func(r *models.CreateBookingRequest) { r.Date = "10/03/2025" }, errs.ErrValidation},
		{"bad time", func(r *models.CreateBookingRequest) { r.StartTime = "25:00" }, errs.ErrValidation},
		{"zero amount", func(r *models.CreateBookingRequest) { r.TotalAmount = 0 }, errs.ErrInvalidAmount},
		{"below service price", func(r *models.CreateBookingRequest) { r.TotalAmount = 1000 }, errs.ErrValidation},
		{"self booking", func(r *models.CreateBookingRequest) { r.ClientID = "creative-1" }, errs.ErrValidation},
		{"unknown service", func(r *models.CreateBookingRequest) { r.ServiceID = "svc-x" }, errs.ErrValidation},
		{"foreign service", func(r *models.CreateBookingRequest) { r.CreativeID = "creative-2" }, errs.ErrValidation},
		{"unknown payment", func(r *models.CreateBookingRequest) { r.PaymentID = "pay-x" }, errs.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request("10:00", "12:00")
			tt.mutate(&req)
			_, err := f.svc.CreateBooking(context.Background(), req)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func paid(id, payer string, amount int64) models.Payment {
	return models.Payment{ID: id, PayerID: payer, Amount: amount, Currency: "TZS", Status: models.PaymentCompleted}
}

func TestCreateBooking_WithCompletedPayment(t *testing.T) {
	f := newFixture(t)
	f.payments.add(paid("pay-1", "client-1", 250000))
	f.payments.add(models.Payment{ID: "pay-2", PayerID: "client-1", Amount: 250000, Status: models.PaymentFailed})

	req := request("10:00", "12:00")
	req.PaymentID = "pay-1"
	b, err := f.svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPaymentPaid, b.PaymentStatus)
	assert.Equal(t, b.ID, f.payments.attached("pay-1"))

	req = request("13:00", "14:00")
	req.PaymentID = "pay-2"
	_, err = f.svc.CreateBooking(context.Background(), req)
	assert.ErrorIs(t, err, errs.ErrValidation)

	// A payment already settling a booking cannot settle another.
	req.PaymentID = "pay-1"
	_, err = f.svc.CreateBooking(context.Background(), req)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestCreateBooking_RejectsPaymentFromAnotherPayer(t *testing.T) {
	f := newFixture(t)
	f.payments.add(paid("pay-1", "client-2", 250000))

	req := request("10:00", "12:00")
	req.PaymentID = "pay-1"
	_, err := f.svc.CreateBooking(context.Background(), req)
	assert.ErrorIs(t, err, errs.ErrForbidden)
	assert.Empty(t, f.payments.attached("pay-1"))
}

func TestCreateBooking_ConcurrentSamePaymentOneWins(t *testing.T) {
	f := newFixture(t)
	f.payments.add(paid("pay-1", "client-1", 250000))
	ctx := context.Background()

	var wg sync.WaitGroup
	type result struct {
		b   *models.Booking
		err error
	}
	results := make(chan result, 4)
	for _, window := range [][2]string{{"08:00", "09:00"}, {"10:00", "11:00"}, {"12:00", "13:00"}, {"14:00", "15:00"}} {
		wg.Add(1)
		go func(start, end string) {
			defer wg.Done()
			req := request(start, end)
			req.PaymentID = "pay-1"
			b, err := f.svc.CreateBooking(ctx, req)
			results <- result{b, err}
		}(window[0], window[1])
	}
	wg.Wait()
	close(results)

	var winner *models.Booking
	for r := range results {
		if r.err == nil {
			require.Nil(t, winner, "two bookings share one payment")
			winner = r.b
		} else {
			assert.ErrorIs(t, r.err, errs.ErrValidation)
		}
	}
	require.NotNil(t, winner)
	assert.Equal(t, winner.ID, f.payments.attached("pay-1"))

	all, err := f.svc.ListBookings(ctx, models.BookingFilter{ClientID: "client-1"})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreateBooking_TakenSlotReleasesPayment(t *testing.T) {
	f := newFixture(t)
	f.payments.add(paid("pay-1", "client-1", 250000))
	ctx := context.Background()

	held, err := f.svc.CreateBooking(ctx, request("10:00", "12:00"))
	require.NoError(t, err)
	_, err = f.svc.UpdateBookingStatus(ctx, held.ID, models.BookingConfirmed)
	require.NoError(t, err)

	req := request("11:00", "13:00")
	req.PaymentID = "pay-1"
	_, err = f.svc.CreateBooking(ctx, req)
	assert.ErrorIs(t, err, errs.ErrSlotUnavailable)
	assert.Empty(t, f.payments.attached("pay-1"))

	req = request("13:00", "15:00")
	req.PaymentID = "pay-1"
	b, err := f.svc.CreateBooking(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, b.ID, f.payments.attached("pay-1"))
}

func TestCreateBooking_RejectsOverlapWithHeldSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	held, err := f.svc.CreateBooking(ctx, request("10:00", "12:00"))
	require.NoError(t, err)
	_, err = f.svc.UpdateBookingStatus(ctx, held.ID, models.BookingConfirmed)
	require.NoError(t, err)

	_, err = f.svc.CreateBooking(ctx, request("11:00", "12:30"))
	assert.ErrorIs(t, err, errs.ErrSlotUnavailable)

	_, err = f.svc.CreateBooking(ctx, request("12:00", "13:00"))
	assert.NoError(t, err)
}

func TestUpdateBookingStatus_FullLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, request("10:00", "12:00"))
	require.NoError(t, err)

	for _, next := range []models.BookingStatus{models.BookingConfirmed, models.BookingInProgress, models.BookingCompleted} {
		b, err = f.svc.UpdateBookingStatus(ctx, b.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, b.Status)
	}

	_, err = f.svc.UpdateBookingStatus(ctx, b.ID, models.BookingCancelled)
	var it *errs.InvalidTransitionError
	require.True(t, errors.As(err, &it))
	assert.Equal(t, "completed", it.From)
	assert.Equal(t, "cancelled", it.To)
	assert.Empty(t, it.Allowed)
}

func TestUpdateBookingStatus_InvalidAndUnknown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, request("10:00", "12:00"))
	require.NoError(t, err)

	_, err = f.svc.UpdateBookingStatus(ctx, b.ID, models.BookingCompleted)
	assert.ErrorIs(t, err, errs.ErrInvalidTransition)

	got, err := f.svc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, got.Status)

	_, err = f.svc.UpdateBookingStatus(ctx, "missing", models.BookingConfirmed)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = f.svc.UpdateBookingStatus(ctx, b.ID, models.BookingStatus("archived"))
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestUpdateBookingStatus_RacingTransitionsStayInTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, request("10:00", "12:00"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errsCh := make(chan error, 2)
	for _, target := range []models.BookingStatus{models.BookingConfirmed, models.BookingCancelled} {
		wg.Add(1)
		go func(target models.BookingStatus) {
			defer wg.Done()
			_, err := f.svc.UpdateBookingStatus(ctx, b.ID, target)
			errsCh <- err
		}(target)
	}
	wg.Wait()
	close(errsCh)

	var wins int
	for err := range errsCh {
		if err == nil {
			wins++
		}
	}
	// confirmed -> cancelled is legal, so both may apply in sequence; what
	// must never happen is a lost update or a state outside the table.
	got, err := f.svc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, wins, 1)
	assert.Contains(t, []models.BookingStatus{models.BookingConfirmed, models.BookingCancelled}, got.Status)
	assert.Equal(t, int64(wins), got.Version)
}

func TestUpdateBookingStatus_ConcurrentSameTargetOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, request("10:00", "12:00"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errsCh := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.UpdateBookingStatus(ctx, b.ID, models.BookingConfirmed)
			errsCh <- err
		}()
	}
	wg.Wait()
	close(errsCh)

	var wins, rejected int
	for err := range errsCh {
		if err == nil {
			wins++
		} else if errors.Is(err, errs.ErrInvalidTransition) {
			rejected++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 4, rejected)
}

func TestUpdateBookingStatus_TwoPendingCannotBothConfirm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.svc.CreateBooking(ctx, request("10:00", "11:00"))
	require.NoError(t, err)
	b, err := f.svc.CreateBooking(ctx, request("10:30", "11:30"))
	require.NoError(t, err)

	_, err = f.svc.UpdateBookingStatus(ctx, a.ID, models.BookingConfirmed)
	require.NoError(t, err)
	_, err = f.svc.UpdateBookingStatus(ctx, b.ID, models.BookingConfirmed)
	assert.ErrorIs(t, err, errs.ErrSlotUnavailable)

	// Cancelling frees the slot again.
	_, err = f.svc.UpdateBookingStatus(ctx, a.ID, models.BookingCancelled)
	require.NoError(t, err)
	_, err = f.svc.UpdateBookingStatus(ctx, b.ID, models.BookingConfirmed)
	assert.NoError(t, err)
}

func TestMarkPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.payments.add(paid("pay-9", "client-1", 250000))
	b, err := f.svc.CreateBooking(ctx, request("10:00", "12:00"))
	require.NoError(t, err)

	got, err := f.svc.MarkPaid(ctx, b.ID, "pay-9")
	require.NoError(t, err)
	assert.Equal(t, models.BookingPaymentPaid, got.PaymentStatus)
	assert.Equal(t, "pay-9", got.PaymentID)
	assert.Equal(t, models.BookingPending, got.Status)
	assert.Equal(t, b.ID, f.payments.attached("pay-9"))

	again, err := f.svc.MarkPaid(ctx, b.ID, "pay-9")
	require.NoError(t, err)
	assert.Equal(t, got.Version, again.Version)

	f.payments.add(paid("pay-10", "client-1", 250000))
	_, err = f.svc.MarkPaid(ctx, b.ID, "pay-10")
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Empty(t, f.payments.attached("pay-10"))
}

func TestMarkPaid_RejectsUnusablePayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, request("10:00", "12:00"))
	require.NoError(t, err)

	f.payments.add(paid("pay-other", "client-2", 250000))
	f.payments.add(paid("pay-short", "client-1", 1000))
	f.payments.add(models.Payment{ID: "pay-refund", PayerID: "client-1", Amount: 250000, Status: models.PaymentRefunded, RefundOf: "pay-x"})

	_, err = f.svc.MarkPaid(ctx, b.ID, "pay-other")
	assert.ErrorIs(t, err, errs.ErrForbidden)
	_, err = f.svc.MarkPaid(ctx, b.ID, "pay-short")
	assert.ErrorIs(t, err, errs.ErrValidation)
	_, err = f.svc.MarkPaid(ctx, b.ID, "pay-refund")
	assert.ErrorIs(t, err, errs.ErrValidation)
	_, err = f.svc.MarkPaid(ctx, b.ID, "pay-missing")
	assert.ErrorIs(t, err, errs.ErrValidation)
	_, err = f.svc.MarkPaid(ctx, b.ID, "")
	assert.ErrorIs(t, err, errs.ErrValidation)
	_, err = f.svc.MarkPaid(ctx, "missing", "pay-short")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	got, err := f.svc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPaymentPending, got.PaymentStatus)

	_, err = f.svc.UpdateBookingStatus(ctx, b.ID, models.BookingCancelled)
	require.NoError(t, err)
	f.payments.add(paid("pay-ok", "client-1", 250000))
	_, err = f.svc.MarkPaid(ctx, b.ID, "pay-ok")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestMarkPaid_FailedPaymentMarksBookingFailed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, request("10:00", "12:00"))
	require.NoError(t, err)
	f.payments.add(models.Payment{ID: "pay-declined", PayerID: "client-1", Amount: 250000, Status: models.PaymentFailed, FailureReason: "card_declined"})

	_, err = f.svc.MarkPaid(ctx, b.ID, "pay-declined")
	assert.ErrorIs(t, err, errs.ErrPaymentDeclined)

	got, err := f.svc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPaymentFailed, got.PaymentStatus)

	// A later successful payment still settles it.
	f.payments.add(paid("pay-ok", "client-1", 250000))
	got, err = f.svc.MarkPaid(ctx, b.ID, "pay-ok")
	require.NoError(t, err)
	assert.Equal(t, models.BookingPaymentPaid, got.PaymentStatus)
}

func TestSetPaymentStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.payments.add(paid("pay-1", "client-1", 250000))
	req := request("10:00", "12:00")
	req.PaymentID = "pay-1"
	b, err := f.svc.CreateBooking(ctx, req)
	require.NoError(t, err)

	got, err := f.svc.SetPaymentStatus(ctx, b.ID, models.BookingPaymentRefunded)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPaymentRefunded, got.PaymentStatus)
	assert.Equal(t, "pay-1", got.PaymentID)
	assert.Equal(t, models.BookingPending, got.Status)

	_, err = f.svc.SetPaymentStatus(ctx, "missing", models.BookingPaymentRefunded)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestListBookings_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	clock := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	first, err := f.svc.CreateBooking(ctx, request("09:00", "10:00"))
	require.NoError(t, err)
	second, err := f.svc.CreateBooking(ctx, request("10:00", "11:00"))
	require.NoError(t, err)
	_, err = f.svc.UpdateBookingStatus(ctx, second.ID, models.BookingConfirmed)
	require.NoError(t, err)

	all, err := f.svc.ListBookings(ctx, models.BookingFilter{CreativeID: "creative-1"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)

	confirmed, err := f.svc.ListBookings(ctx, models.BookingFilter{Status: models.BookingConfirmed, ClientID: "client-1"})
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, second.ID, confirmed[0].ID)

	none, err := f.svc.ListBookings(ctx, models.BookingFilter{ClientID: "client-9"})
	require.NoError(t, err)
	assert.Empty(t, none)
}
