package payment

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	paymentRepo "brandconnect/database/repository/payment"
	"brandconnect/models"
	"brandconnect/services/errs"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	last4Pattern    = regexp.MustCompile(`^[0-9]{4}$`)
	phonePattern    = regexp.MustCompile(`^\+?[0-9]{9,15}$`)
)

// ValidateMethod checks that the fields of the method's variant are present.
func ValidateMethod(m models.PaymentMethod) error {
	switch m.Type {
	case models.MethodCard:
		if !last4Pattern.MatchString(m.Last4) || strings.TrimSpace(m.Brand) == "" {
			return errs.Validation("card payments need last4 and brand")
		}
	case models.MethodMobileMoney:
		if !phonePattern.MatchString(m.PhoneNumber) {
			return errs.Validation("mobile money payments need a valid phoneNumber")
		}
	case models.MethodBankTransfer:
		if strings.TrimSpace(m.BankName) == "" {
			return errs.Validation("bank transfers need bankName")
		}
	default:
		return errs.Validation("unsupported payment method %q", m.Type)
	}
	return nil
}

func (s *DefaultPaymentService) CreatePaymentIntent(ctx context.Context, payerID string, amount int64, currency string) (*models.PaymentIntent, error) {
	if strings.TrimSpace(payerID) == "" {
		return nil, errs.Validation("payerId is required")
	}
	if amount <= 0 {
		return nil, errs.InvalidAmount(amount)
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = s.Options.DefaultCurrency
	}
	if !currencyPattern.MatchString(currency) {
		return nil, errs.Validation("invalid currency %q", currency)
	}

	id := "pi_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	callCtx, cancel := context.WithTimeout(ctx, s.Options.CallTimeout)
	defer cancel()
	gw, err := s.Gateway.CreateIntent(callCtx, id, amount, currency)
	if err != nil {
		s.Logger.Error("gateway create intent failed", zap.String("intentId", id), zap.Error(err))
		return nil, errs.PaymentGatewayUnreachable(err)
	}

	now := s.now().UTC()
	intent := &models.PaymentIntent{
		ID:           id,
		PayerID:      payerID,
		Amount:       amount,
		Currency:     currency,
		Status:       models.IntentRequiresPaymentMethod,
		ClientSecret: gw.ClientSecret,
		GatewayRef:   gw.Ref,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.CreateIntent(ctx, intent); err != nil {
		return nil, fmt.Errorf("CreatePaymentIntent: %w", err)
	}
	s.Logger.Info("payment intent created", zap.String("intentId", id), zap.String("payerId", payerID), zap.Int64("amount", amount), zap.String("currency", currency))
	return intent, nil
}

// storedOutcome replays a finalized intent: the same record, and for a
// failed one the same decline.
func storedOutcome(p *models.Payment) (*models.Payment, error) {
	if p.Status == models.PaymentFailed {
		return p, errs.PaymentDeclined(p.FailureReason)
	}
	return p, nil
}

// ConfirmPayment charges the intent once. Repeated or concurrent confirms of
// the same intent return the stored terminal record without calling the
// gateway again. The gateway call is bounded by the confirm timeout and is
// never retried here.
func (s *DefaultPaymentService) ConfirmPayment(ctx context.Context, intentID string, method models.PaymentMethod) (*models.Payment, error) {
	if err := ValidateMethod(method); err != nil {
		return nil, err
	}

	unlock, err := s.Locker.Lock(ctx, "intent:"+intentID)
	if err != nil {
		return nil, fmt.Errorf("ConfirmPayment: lock intent %s: %w", intentID, err)
	}
	defer unlock()

	intent, err := s.Repo.GetIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if intent.PaymentID != "" {
		return s.replayIntent(ctx, intent)
	}

	if err := s.Repo.SetIntentStatus(ctx, intentID, models.IntentProcessing); err != nil {
		return s.afterLostRace(ctx, intentID, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.Options.ConfirmTimeout)
	defer cancel()
	txID, gwErr := s.Gateway.ConfirmIntent(callCtx, *intent, method)

	now := s.now().UTC()
	p := &models.Payment{
		ID:        uuid.New().String(),
		IntentID:  intent.ID,
		PayerID:   intent.PayerID,
		Amount:    intent.Amount,
		Currency:  intent.Currency,
		Method:    method.Type,
		CreatedAt: now,
		UpdatedAt: now,
	}
	intentStatus := models.IntentSucceeded

	var declined *DeclinedError
	switch {
	case gwErr == nil:
		p.Status = models.PaymentCompleted
		p.TransactionID = txID
	case errors.As(gwErr, &declined):
		p.Status = models.PaymentFailed
		p.FailureReason = declined.Reason
		intentStatus = models.IntentCanceled
	case errors.Is(gwErr, ErrMethodTokenRequired):
		s.reopenIntent(ctx, intentID)
		return nil, errs.Validation("paymentMethod.gatewayToken is required")
	default:
		// Outcome unknown: nothing is recorded so the client may confirm
		// again; the gateway deduplicates on the intent id.
		s.Logger.Error("gateway confirm failed",
			zap.String("intentId", intentID),
			zap.Bool("timeout", errors.Is(gwErr, context.DeadlineExceeded)),
			zap.Error(gwErr),
		)
		s.reopenIntent(ctx, intentID)
		return nil, errs.PaymentGatewayUnreachable(gwErr)
	}

	if err := s.Repo.FinalizeIntent(ctx, intentID, intentStatus, p); err != nil {
		return s.afterLostRace(ctx, intentID, err)
	}

	s.Logger.Info("payment confirmed",
		zap.String("intentId", intentID),
		zap.String("paymentId", p.ID),
		zap.String("status", string(p.Status)),
		zap.String("method", string(p.Method)),
	)
	return storedOutcome(p)
}

func (s *DefaultPaymentService) replayIntent(ctx context.Context, intent *models.PaymentIntent) (*models.Payment, error) {
	p, err := s.Repo.GetPayment(ctx, intent.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("ConfirmPayment: load stored payment: %w", err)
	}
	s.Logger.Info("payment intent already finalized", zap.String("intentId", intent.ID), zap.String("paymentId", p.ID))
	return storedOutcome(p)
}

// afterLostRace handles a write that found the intent already finalized by
// another confirm, for instance after the lock expired mid-call.
func (s *DefaultPaymentService) afterLostRace(ctx context.Context, intentID string, err error) (*models.Payment, error) {
	if !errors.Is(err, paymentRepo.ErrIntentFinalized) {
		return nil, fmt.Errorf("ConfirmPayment: store outcome: %w", err)
	}
	intent, err := s.Repo.GetIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	return s.replayIntent(ctx, intent)
}

// reopenIntent puts an intent whose charge was not settled back to
// requires_confirmation so it can be confirmed again.
func (s *DefaultPaymentService) reopenIntent(ctx context.Context, intentID string) {
	err := s.Repo.SetIntentStatus(ctx, intentID, models.IntentRequiresConfirmation)
	if err != nil && !errors.Is(err, paymentRepo.ErrIntentFinalized) {
		s.Logger.Warn("could not reopen payment intent", zap.String("intentId", intentID), zap.Error(err))
	}
}

// ProcessRefund issues a refund against a completed payment. The original
// record is left untouched; the refund is a new record pointing at it.
// amount defaults to what is left to refund.
func (s *DefaultPaymentService) ProcessRefund(ctx context.Context, paymentID string, amount *int64) (*models.Payment, error) {
	unlock, err := s.Locker.Lock(ctx, "payment:"+paymentID)
	if err != nil {
		return nil, fmt.Errorf("ProcessRefund: lock payment %s: %w", paymentID, err)
	}
	defer unlock()

	original, err := s.Repo.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if original.Status != models.PaymentCompleted || original.RefundOf != "" {
		return nil, errs.Validation("payment %s is %s; only completed payments can be refunded", paymentID, original.Status)
	}

	refunded, err := s.Repo.RefundedTotal(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("ProcessRefund: %w", err)
	}
	remaining := original.Amount - refunded

	value := remaining
	if amount != nil {
		value = *amount
	}
	if value <= 0 || value > remaining {
		return nil, errs.InvalidAmount(value)
	}

	refundID := uuid.New().String()
	callCtx, cancel := context.WithTimeout(ctx, s.Options.CallTimeout)
	defer cancel()
	ref, gwErr := s.Gateway.Refund(callCtx, *original, value, refundID)
	if gwErr != nil {
		var declined *DeclinedError
		if errors.As(gwErr, &declined) {
			return nil, errs.PaymentDeclined(declined.Reason)
		}
		s.Logger.Error("gateway refund failed", zap.String("paymentId", paymentID), zap.Error(gwErr))
		return nil, errs.PaymentGatewayUnreachable(gwErr)
	}

	now := s.now().UTC()
	refund := &models.Payment{
		ID:            refundID,
		IntentID:      original.IntentID,
		BookingID:     original.BookingID,
		PayerID:       original.PayerID,
		Amount:        value,
		Currency:      original.Currency,
		Method:        original.Method,
		Status:        models.PaymentRefunded,
		TransactionID: ref,
		RefundOf:      original.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Repo.CreatePayment(ctx, refund); err != nil {
		return nil, fmt.Errorf("ProcessRefund: store refund: %w", err)
	}
	s.Logger.Info("payment refunded", zap.String("paymentId", paymentID), zap.String("refundId", refund.ID), zap.Int64("amount", value))

	// A partial refund leaves the booking paid.
	if value == remaining && original.BookingID != "" && s.Bookings != nil {
		if _, err := s.Bookings.SetPaymentStatus(ctx, original.BookingID, models.BookingPaymentRefunded); err != nil {
			s.Logger.Error("could not mark booking refunded",
				zap.String("bookingId", original.BookingID),
				zap.String("paymentId", paymentID),
				zap.Error(err),
			)
		}
	}
	return refund, nil
}

func (s *DefaultPaymentService) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	return s.Repo.GetPayment(ctx, id)
}

func (s *DefaultPaymentService) AttachBooking(ctx context.Context, paymentID, bookingID string) error {
	err := s.Repo.AttachBooking(ctx, paymentID, bookingID)
	if errors.Is(err, paymentRepo.ErrAlreadyAttached) {
		return errs.Validation("payment %s already belongs to another booking", paymentID)
	}
	return err
}

func (s *DefaultPaymentService) DetachBooking(ctx context.Context, paymentID, bookingID string) error {
	return s.Repo.DetachBooking(ctx, paymentID, bookingID)
}

func (s *DefaultPaymentService) ListPayments(ctx context.Context, bookingID string) ([]models.Payment, error) {
	if bookingID == "" {
		return nil, errs.Validation("bookingId is required")
	}
	return s.Repo.ListByBooking(ctx, bookingID)
}
