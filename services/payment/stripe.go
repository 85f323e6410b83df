package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"brandconnect/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// zeroDecimal lists currencies Stripe takes in whole units.
var zeroDecimal = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "JPY": true, "KMF": true, "KRW": true,
	"MGA": true, "PYG": true, "RWF": true, "UGX": true, "VND": true, "VUV": true, "XAF": true,
	"XOF": true, "XPF": true,
}

func minorUnits(amount int64, currency string) int64 {
	if zeroDecimal[strings.ToUpper(currency)] {
		return amount
	}
	return amount * 100
}

// StripeGateway implements PaymentGateway on Stripe PaymentIntents.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(key string) *StripeGateway {
	return &StripeGateway{api: client.New(key, nil)}
}

// classify separates definitive rejections from unknown outcomes.
func classify(err error) error {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return err
	}
	switch se.Type {
	case stripe.ErrorTypeCard:
		reason := string(se.DeclineCode)
		if reason == "" {
			reason = string(se.Code)
		}
		if reason == "" {
			reason = se.Msg
		}
		return &DeclinedError{Reason: reason}
	case stripe.ErrorTypeInvalidRequest:
		return &DeclinedError{Reason: se.Msg}
	default:
		return err
	}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, intentID string, amount int64, currency string) (GatewayIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(minorUnits(amount, currency)),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey("create-" + intentID)
	params.AddMetadata("intent_id", intentID)

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return GatewayIntent{}, classify(err)
	}
	return GatewayIntent{Ref: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *StripeGateway) ConfirmIntent(ctx context.Context, intent models.PaymentIntent, method models.PaymentMethod) (string, error) {
	if method.GatewayToken == "" {
		return "", ErrMethodTokenRequired
	}
	if intent.GatewayRef == "" {
		return "", fmt.Errorf("intent %s has no gateway reference", intent.ID)
	}

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(method.GatewayToken),
	}
	params.Context = ctx
	params.SetIdempotencyKey("confirm-" + intent.ID)

	pi, err := g.api.PaymentIntents.Confirm(intent.GatewayRef, params)
	if err != nil {
		return "", classify(err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		if pi.LatestCharge != nil && pi.LatestCharge.ID != "" {
			return pi.LatestCharge.ID, nil
		}
		return pi.ID, nil
	case stripe.PaymentIntentStatusRequiresPaymentMethod, stripe.PaymentIntentStatusCanceled:
		return "", &DeclinedError{Reason: string(pi.Status)}
	case stripe.PaymentIntentStatusRequiresAction:
		return "", &DeclinedError{Reason: "authentication_required"}
	default:
		return "", fmt.Errorf("intent %s is %s", pi.ID, pi.Status)
	}
}

func (g *StripeGateway) Refund(ctx context.Context, original models.Payment, amount int64, idempotencyKey string) (string, error) {
	params := &stripe.RefundParams{
		Charge: stripe.String(original.TransactionID),
		Amount: stripe.Int64(minorUnits(amount, original.Currency)),
	}
	params.Context = ctx
	params.SetIdempotencyKey("refund-" + idempotencyKey)
	params.AddMetadata("payment_id", original.ID)

	r, err := g.api.Refunds.New(params)
	if err != nil {
		return "", classify(err)
	}
	return r.ID, nil
}
