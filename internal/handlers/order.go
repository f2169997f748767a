package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kuldeepsaindane/BiteBuddy-New/internal/cart"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/checkout"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/models"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/service/token"
)

type OrderHandler struct {
	DB       *gorm.DB
	Checkout *checkout.Service
	Notify   checkout.Notifier
}

// Create submits the user's cart as an order and opens a payment session.
// The cart survives until the payment reaches a terminal success.
func (h *OrderHandler) Create(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	result, err := h.Checkout.Begin(c.Request().Context(), userID)
	switch {
	case err == nil:
	case errors.Is(err, cart.ErrEmptyCart):
		return echo.NewHTTPError(http.StatusBadRequest, "no items in cart")
	case errors.Is(err, checkout.ErrInFlight):
		return echo.NewHTTPError(http.StatusConflict, "checkout already in progress")
	case errors.Is(err, checkout.ErrPaymentFailed):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"orderId":      result.OrderID,
		"summary":      result.Summary,
		"clientSecret": result.SessionSecret,
	})
}

type orderView struct {
	models.Order
	ItemList []cart.LineItem `json:"itemList"`
}

func withItems(o models.Order) orderView {
	v := orderView{Order: o}
	_ = json.Unmarshal([]byte(o.Items), &v.ItemList)
	return v
}

func (h *OrderHandler) UserOrders(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var orders []models.Order
	if err := h.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, withItems(o))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) RestaurantOrders(c echo.Context) error {
	id, err := ownedRestaurant(c)
	if err != nil {
		return err
	}

	var orders []models.Order
	if err := h.DB.Where("restaurant_id = ?", id).Order("created_at DESC").Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, withItems(o))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) Get(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, withItems(order))
}

// UpdateStatus moves the fulfilment status and broadcasts the change to the
// restaurant channel.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "status required")
	}

	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if owned, ok := token.OwnedRestaurant(c); !ok || owned != order.RestaurantID {
		return echo.NewHTTPError(http.StatusForbidden, "not authorized for this restaurant")
	}

	if err := h.DB.Model(&order).Update("status", req.Status).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.Notify.OrderStatusChanged(c.Request().Context(), order.ID, order.RestaurantID, req.Status)
	return c.JSON(http.StatusOK, echo.Map{"message": "order status updated"})
}

// RetryPayment opens a fresh payment session against an existing order, the
// retry affordance after a terminal payment failure.
func (h *OrderHandler) RetryPayment(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if order.PaymentStatus == models.PaymentStatusCompleted {
		return echo.NewHTTPError(http.StatusConflict, "order already paid")
	}

	total, err := decimal.NewFromString(order.Total)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "corrupt order total")
	}

	secret, err := h.Checkout.Payments.CreateSession(c.Request().Context(), order.ID, total)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"clientSecret": secret})
}

// UpdatePaymentStatus applies a terminal payment signal reported by the
// client. Completion is idempotent and is what finally clears the cart.
func (h *OrderHandler) UpdatePaymentStatus(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ctx := c.Request().Context()
	switch req.Status {
	case models.PaymentStatusCompleted:
		err = h.Checkout.CompletePayment(ctx, order.UserID, order.ID)
	case models.PaymentStatusFailed:
		err = h.Checkout.FailPayment(ctx, order.ID)
	case models.PaymentStatusPending:
		_, err = h.Checkout.Statuses.SetPaymentStatus(ctx, order.ID, req.Status)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payment status")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "payment status updated"})
}
