package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	paymentRepo "brandconnect/database/repository/payment"
	"brandconnect/models"
	"brandconnect/services/errs"
)

type PaymentRepo struct {
	mu       sync.Mutex
	intents  map[string]models.PaymentIntent
	payments map[string]models.Payment
}

func NewPaymentRepo() *PaymentRepo {
	return &PaymentRepo{
		intents:  make(map[string]models.PaymentIntent),
		payments: make(map[string]models.Payment),
	}
}

var _ paymentRepo.PaymentRepository = (*PaymentRepo)(nil)

func (r *PaymentRepo) CreateIntent(_ context.Context, intent *models.PaymentIntent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents[intent.ID] = *intent
	return nil
}

func (r *PaymentRepo) GetIntent(_ context.Context, id string) (*models.PaymentIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	intent, ok := r.intents[id]
	if !ok {
		return nil, errs.NotFound("payment intent", id)
	}
	return &intent, nil
}

func (r *PaymentRepo) SetIntentStatus(_ context.Context, id string, status models.IntentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	intent, ok := r.intents[id]
	if !ok {
		return errs.NotFound("payment intent", id)
	}
	if intent.PaymentID != "" {
		return paymentRepo.ErrIntentFinalized
	}
	intent.Status = status
	intent.UpdatedAt = time.Now().UTC()
	r.intents[id] = intent
	return nil
}

func (r *PaymentRepo) FinalizeIntent(_ context.Context, intentID string, status models.IntentStatus, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	intent, ok := r.intents[intentID]
	if !ok {
		return errs.NotFound("payment intent", intentID)
	}
	if intent.PaymentID != "" {
		return paymentRepo.ErrIntentFinalized
	}
	intent.Status = status
	intent.PaymentID = payment.ID
	intent.UpdatedAt = time.Now().UTC()
	r.intents[intentID] = intent
	r.payments[payment.ID] = *payment
	return nil
}

func (r *PaymentRepo) CreatePayment(_ context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[payment.ID] = *payment
	return nil
}

func (r *PaymentRepo) GetPayment(_ context.Context, id string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[id]
	if !ok {
		return nil, errs.NotFound("payment", id)
	}
	return &p, nil
}

func (r *PaymentRepo) ListByBooking(_ context.Context, bookingID string) ([]models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.Payment{}
	for _, p := range r.payments {
		if p.BookingID == bookingID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *PaymentRepo) RefundedTotal(_ context.Context, paymentID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total int64
	for _, p := range r.payments {
		if p.RefundOf == paymentID {
			total += p.Amount
		}
	}
	return total, nil
}

func (r *PaymentRepo) AttachBooking(_ context.Context, paymentID, bookingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[paymentID]
	if !ok {
		return errs.NotFound("payment", paymentID)
	}
	if p.BookingID != "" && p.BookingID != bookingID {
		return paymentRepo.ErrAlreadyAttached
	}
	p.BookingID = bookingID
	p.UpdatedAt = time.Now().UTC()
	r.payments[paymentID] = p
	return nil
}

func (r *PaymentRepo) DetachBooking(_ context.Context, paymentID, bookingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[paymentID]
	if !ok || p.BookingID != bookingID {
		return nil
	}
	p.BookingID = ""
	p.UpdatedAt = time.Now().UTC()
	r.payments[paymentID] = p
	return nil
}
