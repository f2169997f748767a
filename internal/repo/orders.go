package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kuldeepsaindane/BiteBuddy-New/internal/checkout"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/models"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
)

// GormOrders persists order snapshots and guards payment-state transitions.
type GormOrders struct {
	DB *gorm.DB
}

func (r *GormOrders) Submit(ctx context.Context, draft checkout.OrderDraft) (uint, error) {
	if len(draft.Items) == 0 {
		return 0, fmt.Errorf("%w: items required", ErrValidation)
	}
	if draft.RestaurantID == 0 {
		return 0, fmt.Errorf("%w: restaurant_id required", ErrValidation)
	}

	items, err := json.Marshal(draft.Items)
	if err != nil {
		return 0, fmt.Errorf("marshal order items: %w", err)
	}

	order := models.Order{
		UserID:        draft.UserID,
		RestaurantID:  draft.RestaurantID,
		Items:         string(items),
		Total:         draft.Total.StringFixed(2),
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}
	if err := r.DB.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (r *GormOrders) PaymentStatus(ctx context.Context, orderID uint) (string, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("order %d: %w", orderID, ErrNotFound)
		}
		return "", err
	}
	return order.PaymentStatus, nil
}

// SetPaymentStatus transitions the payment state and reports the previous
// one. Runs under a row lock so a success callback firing twice observes
// "completed" the second time instead of applying again.
func (r *GormOrders) SetPaymentStatus(ctx context.Context, orderID uint, status string) (string, error) {
	switch status {
	case models.PaymentStatusPending, models.PaymentStatusCompleted, models.PaymentStatusFailed:
	default:
		return "", fmt.Errorf("%w: payment status %q", ErrValidation, status)
	}

	var previous string
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
			}
			return err
		}
		previous = order.PaymentStatus
		if previous == status {
			return nil
		}
		return tx.Model(&order).Update("payment_status", status).Error
	})
	if err != nil {
		return "", err
	}
	return previous, nil
}

func (r *GormOrders) SetPaymentIntent(ctx context.Context, orderID uint, intentID string) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("payment_intent_id", intentID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	return nil
}

// ByPaymentIntent resolves the order a provider callback refers to.
func (r *GormOrders) ByPaymentIntent(ctx context.Context, intentID string) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).First(&order, "payment_intent_id = ?", intentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment intent %s: %w", intentID, ErrNotFound)
		}
		return nil, err
	}
	return &order, nil
}
