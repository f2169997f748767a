package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kuldeepsaindane/BiteBuddy-New/internal/models"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/service/token"
)

type SupportHandler struct {
	DB *gorm.DB
}

func (h *SupportHandler) Create(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		RestaurantID uint   `json:"restaurantId"`
		Subject      string `json:"subject"`
		Message      string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if req.Subject == "" || req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "subject and message are required")
	}

	ticket := models.SupportTicket{
		Reference:    uuid.NewString(),
		UserID:       userID,
		RestaurantID: req.RestaurantID,
		Subject:      req.Subject,
		Message:      req.Message,
	}
	if err := h.DB.Create(&ticket).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "support ticket created", "reference": ticket.Reference})
}

// RestaurantTickets lists tickets raised against the owner's restaurant.
func (h *SupportHandler) RestaurantTickets(c echo.Context) error {
	restaurantID, ok := token.OwnedRestaurant(c)
	if !ok {
		return echo.NewHTTPError(http.StatusForbidden, "not a restaurant account")
	}

	var tickets []models.SupportTicket
	if err := h.DB.Where("restaurant_id = ?", restaurantID).Order("created_at DESC").Find(&tickets).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, tickets)
}
