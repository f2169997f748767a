package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kuldeepsaindane/BiteBuddy-New/internal/models"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/service/token"
)

type RatingHandler struct {
	DB *gorm.DB
}

// Create records a rating and refreshes the restaurant's average.
func (h *RatingHandler) Create(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		RestaurantID uint   `json:"restaurantId"`
		Rating       uint   `json:"rating"`
		Comment      string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if req.RestaurantID == 0 || req.Rating == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "restaurantId and rating are required")
	}
	if req.Rating > 5 {
		return echo.NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}

	rating := models.Rating{
		UserID:       userID,
		RestaurantID: req.RestaurantID,
		Rating:       req.Rating,
		Comment:      req.Comment,
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rating).Error; err != nil {
			return err
		}
		var avg float64
		if err := tx.Model(&models.Rating{}).
			Where("restaurant_id = ?", req.RestaurantID).
			Select("AVG(rating)").Scan(&avg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Restaurant{}).
			Where("id = ?", req.RestaurantID).
			Update("avg_rating", avg).Error
	})
	if txErr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "rating submitted"})
}
