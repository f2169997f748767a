package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kuldeepsaindane/BiteBuddy-New/internal/models"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/service/token"
)

type ReservationHandler struct {
	DB *gorm.DB
}

func (h *ReservationHandler) Create(c echo.Context) error {
	if _, err := token.UserID(c); err != nil {
		return err
	}

	var req struct {
		RestaurantID    uint   `json:"restaurantId"`
		Date            string `json:"date"`
		Time            string `json:"time"`
		Guests          uint   `json:"guests"`
		Occasion        string `json:"occasion"`
		SpecialRequests string `json:"specialRequests"`
		CustomerName    string `json:"customerName"`
		CustomerEmail   string `json:"customerEmail"`
		CustomerPhone   string `json:"customerPhone"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if req.RestaurantID == 0 || req.Date == "" || req.Time == "" || req.Guests == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "restaurantId, date, time and guests are required")
	}

	reservation := models.Reservation{
		RestaurantID:    req.RestaurantID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		Date:            req.Date,
		Time:            req.Time,
		Guests:          req.Guests,
		Occasion:        req.Occasion,
		SpecialRequests: req.SpecialRequests,
		Status:          "pending",
	}
	if err := h.DB.Create(&reservation).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"reservationId": reservation.ID})
}

// UserReservations lists by the account's email, reservations are keyed by
// customer contact rather than user id.
func (h *ReservationHandler) UserReservations(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}

	var reservations []models.Reservation
	if err := h.DB.Where("customer_email = ?", user.Email).Order("date, time").Find(&reservations).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, reservations)
}

func (h *ReservationHandler) RestaurantReservations(c echo.Context) error {
	id, err := ownedRestaurant(c)
	if err != nil {
		return err
	}

	var reservations []models.Reservation
	if err := h.DB.Where("restaurant_id = ?", id).Order("date, time").Find(&reservations).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, reservations)
}

func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
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

	res := h.DB.Model(&models.Reservation{}).Where("id = ?", id).Update("status", req.Status)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "reservation not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reservation status updated"})
}
