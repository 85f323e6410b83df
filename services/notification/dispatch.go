package notification

import (
	"context"

	"brandconnect/models"
	"brandconnect/services/payment"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func (s *DefaultNotificationService) serviceName(ctx context.Context, id string) string {
	svc, err := s.users.GetService(ctx, id)
	if err != nil {
		s.logger.Debug("service lookup for template failed", zap.String("serviceId", id), zap.Error(err))
		return ""
	}
	return svc.Name
}

// SendBookingConfirmation sends the confirmation email and SMS to the client
// and a creative-facing pair to the creative. All four sends run at once and
// each is attempted regardless of the others. The result reports the
// client's channels; the creative's outcomes are logged and counted.
func (s *DefaultNotificationService) SendBookingConfirmation(ctx context.Context, b models.Booking, creative, client models.User) models.DispatchResult {
	view := newBookingView(b, s.serviceName(ctx, b.ServiceID), creative, client)

	var result models.DispatchResult
	var creativeEmail, creativeSMS bool

	var g errgroup.Group
	g.Go(func() error {
		body, err := render("client_booking", view)
		if err != nil {
			s.logger.Error("booking confirmation template failed", zap.String("bookingId", b.ID), zap.Error(err))
			return nil
		}
		result.EmailSent = s.SendEmail(ctx, client.Email, subjectBookingConfirmation, body)
		return nil
	})
	g.Go(func() error {
		result.SMSSent = s.SendSMS(ctx, client.Phone, clientBookingSMS(view))
		return nil
	})
	g.Go(func() error {
		body, err := render("creative_booking", view)
		if err != nil {
			s.logger.Error("new booking template failed", zap.String("bookingId", b.ID), zap.Error(err))
			return nil
		}
		creativeEmail = s.SendEmail(ctx, creative.Email, subjectNewBooking, body)
		return nil
	})
	g.Go(func() error {
		creativeSMS = s.SendSMS(ctx, creative.Phone, creativeBookingSMS(view))
		return nil
	})
	_ = g.Wait()

	s.logger.Info("booking confirmation dispatch finished",
		zap.String("bookingId", b.ID),
		zap.Bool("clientEmailSent", result.EmailSent),
		zap.Bool("clientSmsSent", result.SMSSent),
		zap.Bool("creativeEmailSent", creativeEmail),
		zap.Bool("creativeSmsSent", creativeSMS),
	)
	return result
}

func (s *DefaultNotificationService) SendPaymentReceipt(ctx context.Context, p models.Payment, client models.User) bool {
	body, err := render("receipt", receiptView{
		Client:        client.Name,
		TransactionID: p.TransactionID,
		Amount:        payment.FormatCurrency(p.Amount, p.Currency),
		Method:        string(p.Method),
		Date:          p.CreatedAt.In(models.BookingLocation).Format("2 January 2006"),
	})
	if err != nil {
		s.logger.Error("receipt template failed", zap.String("paymentId", p.ID), zap.Error(err))
		return false
	}
	return s.SendEmail(ctx, client.Email, subjectPaymentReceipt, body)
}

// SendReminder texts the client ahead of the appointment.
func (s *DefaultNotificationService) SendReminder(ctx context.Context, b models.Booking, creative, client models.User) bool {
	sent := s.SendSMS(ctx, client.Phone, reminderSMS(b, creative))
	s.logger.Info("booking reminder dispatched", zap.String("bookingId", b.ID), zap.Bool("smsSent", sent))
	return sent
}
