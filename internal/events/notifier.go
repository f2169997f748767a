package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	TopicOrders = "order_events"

	publishTimeout = 5 * time.Second
)

// OrderNotifier broadcasts order lifecycle events to restaurant-scoped keys.
// Fire and forget: no acknowledgement, no retry, no cross-subscriber
// ordering guarantee. Publish errors are logged and dropped.
type OrderNotifier struct {
	Pub Publisher
	Log *slog.Logger
}

func (n *OrderNotifier) publish(ctx context.Context, restaurantID uint, event map[string]any) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	key := fmt.Sprintf("restaurant_%d", restaurantID)
	if err := n.Pub.Publish(ctx, TopicOrders, key, event); err != nil {
		n.Log.Error("order event publish failed", "key", key, "error", err)
	}
}

func (n *OrderNotifier) OrderCreated(ctx context.Context, orderID, restaurantID uint) {
	n.publish(ctx, restaurantID, map[string]any{
		"type":         "order_received",
		"orderId":      orderID,
		"restaurantId": restaurantID,
	})
}

func (n *OrderNotifier) OrderStatusChanged(ctx context.Context, orderID, restaurantID uint, status string) {
	n.publish(ctx, restaurantID, map[string]any{
		"type":    "order_updated",
		"orderId": orderID,
		"status":  status,
	})
}
