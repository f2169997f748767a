// Package checkout drives the order submission and payment session flow.
// The cart is cleared only after the payment provider reports a terminal
// success, any failure leaves it untouched for a user-initiated retry.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/kuldeepsaindane/BiteBuddy-New/internal/cart"
)

var (
	ErrInFlight        = errors.New("checkout: checkout already in flight")
	ErrOrderSubmission = errors.New("checkout: order submission failed")
	ErrPaymentFailed   = errors.New("checkout: payment failed")
	ErrOrderNotFound   = errors.New("checkout: order not found")
)

// OrderDraft is the immutable snapshot handed to the submitter.
type OrderDraft struct {
	UserID       uint
	RestaurantID uint
	Items        []cart.LineItem
	Total        decimal.Decimal
}

// OrderSubmitter persists a draft as an order record and returns its id.
type OrderSubmitter interface {
	Submit(ctx context.Context, draft OrderDraft) (uint, error)
}

// OrderStatuses guards payment-state transitions. SetPaymentStatus returns
// the previous status so callbacks firing twice can be detected.
type OrderStatuses interface {
	PaymentStatus(ctx context.Context, orderID uint) (string, error)
	SetPaymentStatus(ctx context.Context, orderID uint, status string) (previous string, err error)
}

// PaymentProvider opens a client-side payment session for an order.
type PaymentProvider interface {
	CreateSession(ctx context.Context, orderID uint, total decimal.Decimal) (string, error)
}

// Notifier broadcasts order lifecycle events to the owning restaurant's
// channel. Delivery is best-effort, implementations must not block the flow.
type Notifier interface {
	OrderCreated(ctx context.Context, orderID, restaurantID uint)
	OrderStatusChanged(ctx context.Context, orderID, restaurantID uint, status string)
}

type Service struct {
	Carts    *cart.Manager
	Orders   OrderSubmitter
	Statuses OrderStatuses
	Payments PaymentProvider
	Notify   Notifier
	Log      *slog.Logger

	mu       sync.Mutex
	inFlight map[uint]bool
}

func NewService(carts *cart.Manager, orders OrderSubmitter, statuses OrderStatuses, payments PaymentProvider, notify Notifier, log *slog.Logger) *Service {
	return &Service{
		Carts:    carts,
		Orders:   orders,
		Statuses: statuses,
		Payments: payments,
		Notify:   notify,
		Log:      log,
		inFlight: make(map[uint]bool),
	}
}

// Result is what the payment UI widget needs to collect payment.
type Result struct {
	OrderID       uint         `json:"orderId"`
	Summary       cart.Summary `json:"summary"`
	SessionSecret string       `json:"sessionSecret"`
}

// Begin submits the current cart as an order and opens a payment session.
// The cart is deliberately NOT cleared here: it survives until
// CompletePayment observes a terminal success. A second Begin for the same
// user while one is running is rejected rather than queued.
func (s *Service) Begin(ctx context.Context, userID uint) (Result, error) {
	s.mu.Lock()
	if s.inFlight[userID] {
		s.mu.Unlock()
		return Result{}, ErrInFlight
	}
	s.inFlight[userID] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.inFlight, userID)
		s.mu.Unlock()
	}()

	// One critical section: the summary, restaurant and items of the draft
	// must come from the same cart generation.
	var (
		summary      cart.Summary
		restaurantID uint
		items        []cart.LineItem
	)
	if err := s.Carts.View(ctx, userID, func(a *cart.Aggregate) error {
		var err error
		summary, err = s.Carts.Pricing().ComputeSummary(a)
		if err != nil {
			return err
		}
		restaurantID, _ = a.RestaurantID()
		items = a.Items()
		return nil
	}); err != nil {
		return Result{}, err
	}

	orderID, err := s.Orders.Submit(ctx, OrderDraft{
		UserID:       userID,
		RestaurantID: restaurantID,
		Items:        items,
		Total:        summary.Total,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrOrderSubmission, err)
	}
	s.Notify.OrderCreated(ctx, orderID, restaurantID)

	secret, err := s.Payments.CreateSession(ctx, orderID, summary.Total)
	if err != nil {
		// Order stays on record for a retry-payment flow, cart untouched.
		return Result{}, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	return Result{OrderID: orderID, Summary: summary, SessionSecret: secret}, nil
}

// CompletePayment handles a terminal success signal. Idempotent: the guard
// is the stored order status, not cart state, so a callback firing twice
// cannot double-apply. Only the first transition clears the cart.
func (s *Service) CompletePayment(ctx context.Context, userID, orderID uint) error {
	prev, err := s.Statuses.SetPaymentStatus(ctx, orderID, "completed")
	if err != nil {
		return err
	}
	if prev == "completed" {
		s.Log.Debug("duplicate payment success ignored", "order_id", orderID)
		return nil
	}

	if _, err := s.Carts.Mutate(ctx, userID, func(a *cart.Aggregate) error {
		a.Clear()
		return nil
	}); err != nil {
		return err
	}
	return nil
}

// FailPayment records a terminal failure. The order is marked, never
// deleted, and the cart is preserved so the user can retry.
func (s *Service) FailPayment(ctx context.Context, orderID uint) error {
	if _, err := s.Statuses.SetPaymentStatus(ctx, orderID, "failed"); err != nil {
		return err
	}
	return nil
}
