// Package payments adapts the third-party payment provider to the narrow
// session contract the checkout flow needs.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"
)

// IntentRecorder stores the provider's intent id on the order so webhook
// callbacks can be resolved back to it.
type IntentRecorder interface {
	SetPaymentIntent(ctx context.Context, orderID uint, intentID string) error
}

type Stripe struct {
	webhookSecret string
	recorder      IntentRecorder
}

func NewStripe(apiKey, webhookSecret string, recorder IntentRecorder) *Stripe {
	stripe.Key = apiKey
	return &Stripe{webhookSecret: webhookSecret, recorder: recorder}
}

// CreateSession opens a payment intent for the payable total and returns
// the client secret the payment widget consumes. Amount is in cents.
func (s *Stripe) CreateSession(ctx context.Context, orderID uint, total decimal.Decimal) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
	}
	params.Context = ctx
	params.AddMetadata("order_id", strconv.FormatUint(uint64(orderID), 10))

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create payment intent: %w", err)
	}
	if err := s.recorder.SetPaymentIntent(ctx, orderID, pi.ID); err != nil {
		return "", err
	}
	return pi.ClientSecret, nil
}

// Outcome is a terminal provider signal mapped to the order vocabulary.
type Outcome struct {
	OrderID uint
	Status  string
}

// ParseWebhook verifies the provider signature and maps the event to an
// outcome. ok is false for event types the flow does not care about.
func (s *Stripe) ParseWebhook(payload []byte, sigHeader string) (Outcome, bool, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
	if err != nil {
		return Outcome{}, false, fmt.Errorf("stripe: webhook verification: %w", err)
	}

	var status string
	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		status = "completed"
	case stripe.EventTypePaymentIntentPaymentFailed:
		status = "failed"
	default:
		return Outcome{}, false, nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return Outcome{}, false, fmt.Errorf("stripe: decode payment intent: %w", err)
	}
	orderID, err := strconv.ParseUint(intent.Metadata["order_id"], 10, 64)
	if err != nil {
		return Outcome{}, false, fmt.Errorf("stripe: order_id metadata: %w", err)
	}
	return Outcome{OrderID: uint(orderID), Status: status}, true, nil
}
