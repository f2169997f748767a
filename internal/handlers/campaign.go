package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kuldeepsaindane/BiteBuddy-New/internal/models"
)

type CampaignHandler struct {
	DB *gorm.DB
}

func (h *CampaignHandler) RestaurantCampaigns(c echo.Context) error {
	id, err := ownedRestaurant(c)
	if err != nil {
		return err
	}

	var campaigns []models.Campaign
	if err := h.DB.Where("restaurant_id = ?", id).Order("id DESC").Find(&campaigns).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, campaigns)
}
