package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kuldeepsaindane/BiteBuddy-New/internal/cart"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/events"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/models"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/service/token"
)

type CartHandler struct {
	DB    *gorm.DB
	Carts *cart.Manager
	Pub   events.Publisher
}

const topicCartEvents = "cart_events"

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	snap, err := h.Carts.Snapshot(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, snap)
}

// AddToCart captures name and price from the menu catalog at add time and
// merges the item into the user's aggregate.
func (h *CartHandler) AddToCart(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		ItemID   uint `json:"item_id"`
		Quantity uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	var item models.MenuItem
	if err := h.DB.First(&item, req.ItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "menu item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	snap, err := h.Carts.Mutate(c.Request().Context(), userID, func(a *cart.Aggregate) error {
		return a.AddItem(cart.Candidate{
			ItemID:       item.ID,
			RestaurantID: item.RestaurantID,
			Name:         item.Name,
			UnitPrice:    item.Price,
		}, req.Quantity)
	})
	if err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Pub, topicCartEvents, fmt.Sprint(userID), map[string]any{
		"type":     "cart_item_added",
		"userID":   userID,
		"itemID":   item.ID,
		"quantity": req.Quantity,
	})
	return c.JSON(http.StatusOK, snap)
}

// UpdateQuantity sets an absolute quantity. Zero is rejected, removal goes
// through the remove route so a zero quantity is never stored.
func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		ItemID   uint `json:"item_id"`
		Quantity uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	snap, err := h.Carts.Mutate(c.Request().Context(), userID, func(a *cart.Aggregate) error {
		return a.SetQuantity(req.ItemID, req.Quantity)
	})
	if err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Pub, topicCartEvents, fmt.Sprint(userID), map[string]any{
		"type":     "cart_quantity_updated",
		"userID":   userID,
		"itemID":   req.ItemID,
		"quantity": req.Quantity,
	})
	return c.JSON(http.StatusOK, snap)
}

// DeleteOneFromCart lowers the item's quantity by one, dropping the line at
// zero. Absent items are a no-op.
func (h *CartHandler) DeleteOneFromCart(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	snap, err := h.Carts.Mutate(c.Request().Context(), userID, func(a *cart.Aggregate) error {
		a.DecrementItem(uint(id))
		return nil
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Pub, topicCartEvents, fmt.Sprint(userID), map[string]any{
		"type":   "cart_item_decremented",
		"userID": userID,
		"itemID": id,
	})
	return c.JSON(http.StatusOK, snap)
}

// DeleteAllFromCart removes the line entirely regardless of quantity.
func (h *CartHandler) DeleteAllFromCart(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	snap, err := h.Carts.Mutate(c.Request().Context(), userID, func(a *cart.Aggregate) error {
		a.RemoveItem(uint(id))
		return nil
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Pub, topicCartEvents, fmt.Sprint(userID), map[string]any{
		"type":   "cart_item_removed",
		"userID": userID,
		"itemID": id,
	})
	return c.JSON(http.StatusOK, snap)
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	snap, err := h.Carts.Mutate(c.Request().Context(), userID, func(a *cart.Aggregate) error {
		a.Clear()
		return nil
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Pub, topicCartEvents, fmt.Sprint(userID), map[string]any{
		"type":   "cart_cleared",
		"userID": userID,
	})
	return c.JSON(http.StatusOK, snap)
}

// Summary exposes the checkout pricing breakdown without starting checkout.
func (h *CartHandler) Summary(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var summary cart.Summary
	err = h.Carts.View(c.Request().Context(), userID, func(a *cart.Aggregate) error {
		var cerr error
		summary, cerr = h.Carts.Pricing().ComputeSummary(a)
		return cerr
	})
	if err != nil {
		if errors.Is(err, cart.ErrEmptyCart) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}
