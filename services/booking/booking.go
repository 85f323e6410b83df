package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	bookingRepo "brandconnect/database/repository/booking"
	userRepo "brandconnect/database/repository/user"
	"brandconnect/models"
	"brandconnect/services/errs"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxStatusAttempts bounds the re-read loop when a status update loses a
// version race to another writer.
const maxStatusAttempts = 3

func validateCreate(req models.CreateBookingRequest) error {
	switch {
	case strings.TrimSpace(req.ClientID) == "":
		return errs.Validation("clientId is required")
	case strings.TrimSpace(req.CreativeID) == "":
		return errs.Validation("creativeId is required")
	case strings.TrimSpace(req.ServiceID) == "":
		return errs.Validation("serviceId is required")
	case req.ClientID == req.CreativeID:
		return errs.Validation("a client cannot book themselves")
	}
	if _, err := models.ParseDate(req.Date); err != nil {
		return errs.Validation("%v", err)
	}
	start, err := models.ParseClock(req.StartTime)
	if err != nil {
		return errs.Validation("%v", err)
	}
	end, err := models.ParseClock(req.EndTime)
	if err != nil {
		return errs.Validation("%v", err)
	}
	if end <= start {
		return errs.Validation("endTime %s must be after startTime %s", req.EndTime, req.StartTime)
	}
	if req.TotalAmount <= 0 {
		return errs.InvalidAmount(req.TotalAmount)
	}
	return nil
}

// CreateBooking validates the request, settles the payment side when a
// completed payment is supplied and reserves the slot atomically.
// Notification failures are logged and never fail the booking.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	service, err := s.Users.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.Validation("unknown service %s", req.ServiceID)
		}
		return nil, fmt.Errorf("CreateBooking: %w", err)
	}
	if service.CreativeID != req.CreativeID {
		return nil, errs.Validation("service %s is not offered by creative %s", req.ServiceID, req.CreativeID)
	}

	if req.TotalAmount < service.Price {
		return nil, errs.Validation("totalAmount %d is below the service price %d", req.TotalAmount, service.Price)
	}

	paymentStatus := models.BookingPaymentPending
	if req.PaymentID != "" {
		if err := s.checkPayment(ctx, req.PaymentID, req.ClientID, req.TotalAmount); err != nil {
			return nil, err
		}
		paymentStatus = models.BookingPaymentPaid
	}

	now := s.now().UTC()
	b := &models.Booking{
		ID:            uuid.New().String(),
		ClientID:      req.ClientID,
		CreativeID:    req.CreativeID,
		ServiceID:     req.ServiceID,
		Date:          req.Date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Status:        models.BookingPending,
		TotalAmount:   req.TotalAmount,
		PaymentStatus: paymentStatus,
		PaymentID:     req.PaymentID,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// The payment is claimed before the slot so two bookings can never share
	// it; the claim is released if the slot is taken.
	if req.PaymentID != "" {
		if err := s.Payments.AttachBooking(ctx, req.PaymentID, b.ID); err != nil {
			return nil, err
		}
	}
	if err := s.Repo.CreateIfSlotFree(ctx, b); err != nil {
		if req.PaymentID != "" {
			s.releasePayment(ctx, req.PaymentID, b.ID)
		}
		return nil, err
	}

	s.Logger.Info("booking created",
		zap.String("bookingId", b.ID),
		zap.String("creativeId", b.CreativeID),
		zap.String("date", b.Date),
		zap.String("start", b.StartTime),
	)
	s.afterCreate(ctx, *b, service)
	return b, nil
}

func (s *DefaultBookingService) releasePayment(ctx context.Context, paymentID, bookingID string) {
	if err := s.Payments.DetachBooking(ctx, paymentID, bookingID); err != nil {
		s.Logger.Error("failed to release payment claim",
			zap.String("paymentId", paymentID),
			zap.String("bookingId", bookingID),
			zap.Error(err),
		)
	}
}

func (s *DefaultBookingService) checkPayment(ctx context.Context, paymentID, clientID string, total int64) error {
	if s.Payments == nil {
		return errs.Validation("payments are not available")
	}
	p, err := s.Payments.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.Validation("unknown payment %s", paymentID)
		}
		return fmt.Errorf("CreateBooking: %w", err)
	}
	return paymentCovers(p, clientID, total)
}

// paymentCovers reports whether p can settle a booking of total for clientID.
func paymentCovers(p *models.Payment, clientID string, total int64) error {
	if p.PayerID != clientID {
		return errs.Forbidden("payment " + p.ID + " was not made by the booking client")
	}
	if p.Status != models.PaymentCompleted || p.RefundOf != "" {
		return errs.Validation("payment %s is %s, not completed", p.ID, p.Status)
	}
	if p.BookingID != "" {
		return errs.Validation("payment %s already belongs to booking %s", p.ID, p.BookingID)
	}
	if p.Amount < total {
		return errs.Validation("payment %s covers %d of %d", p.ID, p.Amount, total)
	}
	return nil
}

func (s *DefaultBookingService) contacts(ctx context.Context, b models.Booking) (client, creative *models.User, ok bool) {
	client, err := s.Users.GetByIDWithProjection(ctx, b.ClientID, userRepo.ContactProjection)
	if err != nil {
		s.Logger.Warn("booking notification skipped: client lookup failed", zap.String("bookingId", b.ID), zap.Error(err))
		return nil, nil, false
	}
	creative, err = s.Users.GetByIDWithProjection(ctx, b.CreativeID, userRepo.ContactProjection)
	if err != nil {
		s.Logger.Warn("booking notification skipped: creative lookup failed", zap.String("bookingId", b.ID), zap.Error(err))
		return nil, nil, false
	}
	return client, creative, true
}

func (s *DefaultBookingService) afterCreate(ctx context.Context, b models.Booking, service *models.Service) {
	if s.Reminders != nil {
		if err := s.Reminders.ScheduleReminder(ctx, b); err != nil {
			s.Logger.Warn("failed to schedule booking reminder", zap.String("bookingId", b.ID), zap.Error(err))
		}
	}
	if s.Notifier == nil {
		return
	}
	client, creative, ok := s.contacts(ctx, b)
	if !ok {
		return
	}

	result := s.Notifier.SendBookingConfirmation(ctx, b, *creative, *client)
	s.Logger.Info("booking confirmation dispatched",
		zap.String("bookingId", b.ID),
		zap.Bool("emailSent", result.EmailSent),
		zap.Bool("smsSent", result.SMSSent),
	)

	when := formatBookingDateTime(b)
	data := map[string]any{"bookingId": b.ID, "date": b.Date, "startTime": b.StartTime}
	if _, err := s.Notifier.CreateNotification(ctx, b.ClientID, models.NotificationBookingCreated,
		"Booking request sent",
		fmt.Sprintf("Your booking for %s with %s on %s is awaiting confirmation.", service.Name, creative.Name, when),
		data,
	); err != nil {
		s.Logger.Warn("failed to create client notification", zap.String("bookingId", b.ID), zap.Error(err))
	}
	if _, err := s.Notifier.CreateNotification(ctx, b.CreativeID, models.NotificationNewBooking,
		"New booking request",
		fmt.Sprintf("%s requested %s on %s.", client.Name, service.Name, when),
		data,
	); err != nil {
		s.Logger.Warn("failed to create creative notification", zap.String("bookingId", b.ID), zap.Error(err))
	}
}

func formatBookingDateTime(b models.Booking) string {
	start, _, err := models.BookingWindow(b)
	if err != nil {
		return b.Date + " " + b.StartTime
	}
	return start.Format("Monday, 2 January 2006 at 15:04")
}

func (s *DefaultBookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.Repo.GetByID(ctx, id)
}

// UpdateBookingStatus applies one lifecycle step. Concurrent updates for the
// same booking are serialized by the locker and guarded by a version check in
// storage, so of two racing transitions out of one state exactly one wins and
// the other is re-validated against the new state.
func (s *DefaultBookingService) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) (*models.Booking, error) {
	if !IsValidStatus(status) {
		return nil, errs.Validation("unknown booking status %q", status)
	}

	unlock, err := s.Locker.Lock(ctx, "booking:"+id)
	if err != nil {
		return nil, fmt.Errorf("UpdateBookingStatus: lock booking %s: %w", id, err)
	}
	defer unlock()

	for attempt := 0; attempt < maxStatusAttempts; attempt++ {
		current, err := s.Repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := ValidateTransition(current.Status, status); err != nil {
			return nil, err
		}

		updated, err := s.Repo.UpdateStatus(ctx, id, current.Version, status)
		if errors.Is(err, bookingRepo.ErrVersionConflict) {
			s.Logger.Debug("booking version moved, retrying", zap.String("bookingId", id), zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, err
		}

		s.Logger.Info("booking status changed",
			zap.String("bookingId", id),
			zap.String("from", string(current.Status)),
			zap.String("to", string(updated.Status)),
		)
		s.notifyStatus(ctx, *updated)
		return updated, nil
	}
	return nil, fmt.Errorf("UpdateBookingStatus %s: %w", id, bookingRepo.ErrVersionConflict)
}

func (s *DefaultBookingService) notifyStatus(ctx context.Context, b models.Booking) {
	if s.Notifier == nil {
		return
	}
	title := "Booking " + string(b.Status)
	message := fmt.Sprintf("Your booking on %s is now %s.", formatBookingDateTime(b), b.Status)
	data := map[string]any{"bookingId": b.ID, "status": string(b.Status)}
	for _, userID := range []string{b.ClientID, b.CreativeID} {
		if _, err := s.Notifier.CreateNotification(ctx, userID, models.NotificationBookingStatus, title, message, data); err != nil {
			s.Logger.Warn("failed to create status notification", zap.String("bookingId", b.ID), zap.String("userId", userID), zap.Error(err))
		}
	}
}

// MarkPaid settles an existing booking with a payment made by its client. A
// failed payment marks the booking's payment as failed. It does not touch
// the lifecycle status.
func (s *DefaultBookingService) MarkPaid(ctx context.Context, id, paymentID string) (*models.Booking, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, errs.Validation("paymentId is required")
	}
	if s.Payments == nil {
		return nil, errs.Validation("payments are not available")
	}

	unlock, err := s.Locker.Lock(ctx, "booking:"+id)
	if err != nil {
		return nil, fmt.Errorf("MarkPaid: lock booking %s: %w", id, err)
	}
	defer unlock()

	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.PaymentStatus == models.BookingPaymentPaid || b.PaymentStatus == models.BookingPaymentRefunded {
		if b.PaymentID == paymentID {
			return b, nil
		}
		return nil, errs.Validation("booking %s is already settled by payment %s", id, b.PaymentID)
	}
	if b.Status == models.BookingCancelled {
		return nil, errs.Validation("booking %s is cancelled", id)
	}

	p, err := s.Payments.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.Validation("unknown payment %s", paymentID)
		}
		return nil, fmt.Errorf("MarkPaid: %w", err)
	}
	if p.PayerID != b.ClientID {
		return nil, errs.Forbidden("payment " + paymentID + " was not made by the booking client")
	}
	if p.Status == models.PaymentFailed {
		if _, err := s.Repo.SetPaymentStatus(ctx, id, models.BookingPaymentFailed, paymentID); err != nil {
			return nil, err
		}
		s.Logger.Info("booking payment failed", zap.String("bookingId", id), zap.String("paymentId", paymentID))
		return nil, errs.PaymentDeclined(p.FailureReason)
	}
	if err := paymentCovers(p, b.ClientID, b.TotalAmount); err != nil {
		return nil, err
	}

	if err := s.Payments.AttachBooking(ctx, paymentID, id); err != nil {
		return nil, err
	}
	updated, err := s.Repo.SetPaymentStatus(ctx, id, models.BookingPaymentPaid, paymentID)
	if err != nil {
		s.releasePayment(ctx, paymentID, id)
		return nil, err
	}
	s.Logger.Info("booking paid", zap.String("bookingId", id), zap.String("paymentId", paymentID))
	return updated, nil
}

// SetPaymentStatus moves only the payment side of a booking, for instance to
// refunded once its payment has been returned in full.
func (s *DefaultBookingService) SetPaymentStatus(ctx context.Context, id string, status models.BookingPaymentStatus) (*models.Booking, error) {
	unlock, err := s.Locker.Lock(ctx, "booking:"+id)
	if err != nil {
		return nil, fmt.Errorf("SetPaymentStatus: lock booking %s: %w", id, err)
	}
	defer unlock()

	b, err := s.Repo.SetPaymentStatus(ctx, id, status, "")
	if err != nil {
		return nil, err
	}
	s.Logger.Info("booking payment status changed", zap.String("bookingId", id), zap.String("paymentStatus", string(status)))
	return b, nil
}

func (s *DefaultBookingService) ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	if filter.Status != "" && !IsValidStatus(filter.Status) {
		return nil, errs.Validation("unknown booking status %q", filter.Status)
	}
	return s.Repo.List(ctx, filter)
}
