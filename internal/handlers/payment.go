package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kuldeepsaindane/BiteBuddy-New/internal/checkout"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/logging"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/models"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/payments"
)

type PaymentHandler struct {
	DB       *gorm.DB
	Stripe   *payments.Stripe
	Checkout *checkout.Service
}

// Webhook receives the provider's asynchronous outcome. Signature is
// verified against the raw body. Duplicate success events are absorbed by
// the order-status guard in the checkout service.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read body")
	}

	outcome, ok, err := h.Stripe.ParseWebhook(payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !ok {
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	var order models.Order
	if err := h.DB.First(&order, outcome.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ctx := c.Request().Context()
	log := logging.FromContext(ctx)
	switch outcome.Status {
	case models.PaymentStatusCompleted:
		err = h.Checkout.CompletePayment(ctx, order.UserID, order.ID)
	case models.PaymentStatusFailed:
		err = h.Checkout.FailPayment(ctx, order.ID)
	}
	if err == nil {
		log.Info("payment outcome applied", "order_id", order.ID, "status", outcome.Status)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"received": true})
}
