package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kuldeepsaindane/BiteBuddy-New/internal/events"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/models"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/service/token"
)

type RestaurantHandler struct {
	DB  *gorm.DB
	Pub events.Publisher
}

const topicMenuEvents = "menu_events"

type restaurantSummary struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	Cuisine      string  `json:"cuisine"`
	Rating       float64 `json:"rating"`
	PriceRange   string  `json:"priceRange"`
	DeliveryTime int     `json:"deliveryTime"`
	Promoted     bool    `json:"promoted"`
	Image        string  `json:"image"`
}

func priceRange(costForTwo int64) string {
	n := int(math.Ceil(float64(costForTwo) / 15000))
	if n < 1 {
		n = 1
	}
	return strings.Repeat("$", n)
}

func (h *RestaurantHandler) List(c echo.Context) error {
	var restaurants []models.Restaurant
	if err := h.DB.Order("id ASC").Find(&restaurants).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	out := make([]restaurantSummary, 0, len(restaurants))
	for _, r := range restaurants {
		out = append(out, restaurantSummary{
			ID:           r.ID,
			Name:         r.Name,
			Address:      r.Address,
			Cuisine:      r.Cuisines,
			Rating:       r.AvgRating,
			PriceRange:   priceRange(r.CostForTwo),
			DeliveryTime: r.DeliveryTime,
			Promoted:     r.Promoted,
			Image:        r.CloudinaryImageID,
		})
	}
	return c.JSON(http.StatusOK, out)
}

type menuCategory struct {
	Category string            `json:"category"`
	Items    []models.MenuItem `json:"items"`
}

func groupMenu(items []models.MenuItem) []menuCategory {
	var order []string
	byCategory := map[string][]models.MenuItem{}
	for _, it := range items {
		if _, seen := byCategory[it.Category]; !seen {
			order = append(order, it.Category)
		}
		byCategory[it.Category] = append(byCategory[it.Category], it)
	}
	out := make([]menuCategory, 0, len(order))
	for _, cat := range order {
		out = append(out, menuCategory{Category: cat, Items: byCategory[cat]})
	}
	return out
}

// Get returns the restaurant with its menu grouped by category.
func (h *RestaurantHandler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var restaurant models.Restaurant
	if err := h.DB.First(&restaurant, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "restaurant not found")
	}

	var items []models.MenuItem
	if err := h.DB.Where("restaurant_id = ?", id).Order("category").Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":                restaurant.ID,
		"name":              restaurant.Name,
		"address":           restaurant.Address,
		"city":              restaurant.City,
		"area":              restaurant.Area,
		"cuisines":          restaurant.Cuisines,
		"costForTwo":        restaurant.CostForTwo,
		"deliveryTime":      restaurant.DeliveryTime,
		"avgRating":         restaurant.AvgRating,
		"cloudinaryImageId": restaurant.CloudinaryImageID,
		"menu":              groupMenu(items),
	})
}

// ownedRestaurant authorizes the path restaurant against the owner claims.
func ownedRestaurant(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	owned, ok := token.OwnedRestaurant(c)
	if !ok || owned != uint(id) {
		return 0, echo.NewHTTPError(http.StatusForbidden, "not authorized for this restaurant")
	}
	return uint(id), nil
}

// Profile is the owner dashboard payload: restaurant, menu, recent orders
// and reservations.
func (h *RestaurantHandler) Profile(c echo.Context) error {
	id, err := ownedRestaurant(c)
	if err != nil {
		return err
	}

	var restaurant models.Restaurant
	if err := h.DB.First(&restaurant, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "restaurant not found")
	}

	var items []models.MenuItem
	if err := h.DB.Where("restaurant_id = ?", id).Order("category").Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var orders []models.Order
	if err := h.DB.Where("restaurant_id = ?", id).Order("created_at DESC").Limit(5).Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var reservations []models.Reservation
	if err := h.DB.Where("restaurant_id = ?", id).Order("date DESC, time DESC").Limit(5).Find(&reservations).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"restaurant":         restaurant,
		"menuItems":          items,
		"recentOrders":       orders,
		"recentReservations": reservations,
	})
}

func (h *RestaurantHandler) UpdateProfile(c echo.Context) error {
	id, err := ownedRestaurant(c)
	if err != nil {
		return err
	}

	var req struct {
		Name         string `json:"name"`
		Address      string `json:"address"`
		Cuisines     string `json:"cuisines"`
		CostForTwo   int64  `json:"costForTwo"`
		City         string `json:"city"`
		Area         string `json:"area"`
		DeliveryTime int    `json:"deliveryTime"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	var restaurant models.Restaurant
	if err := h.DB.First(&restaurant, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "restaurant not found")
	}

	restaurant.Name = req.Name
	restaurant.Address = req.Address
	restaurant.Cuisines = req.Cuisines
	restaurant.CostForTwo = req.CostForTwo
	restaurant.City = req.City
	restaurant.Area = req.Area
	restaurant.DeliveryTime = req.DeliveryTime

	if err := h.DB.Save(&restaurant).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, restaurant)
}

func (h *RestaurantHandler) GetMenu(c echo.Context) error {
	id, err := ownedRestaurant(c)
	if err != nil {
		return err
	}
	var items []models.MenuItem
	if err := h.DB.Where("restaurant_id = ?", id).Order("category").Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *RestaurantHandler) AddMenuItem(c echo.Context) error {
	id, err := ownedRestaurant(c)
	if err != nil {
		return err
	}

	var req struct {
		Name        string `json:"name"`
		Price       int64  `json:"price"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if req.Name == "" || req.Price < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "name and a non-negative price are required")
	}

	item := models.MenuItem{
		RestaurantID: id,
		Name:         req.Name,
		Price:        req.Price,
		Description:  req.Description,
		Category:     req.Category,
	}
	if err := h.DB.Create(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Pub, topicMenuEvents, fmt.Sprint(id), map[string]any{
		"type":         "menu_item_created",
		"restaurantID": id,
		"itemID":       item.ID,
		"name":         item.Name,
	})
	return c.JSON(http.StatusCreated, item)
}

func (h *RestaurantHandler) UpdateMenuItem(c echo.Context) error {
	id, err := ownedRestaurant(c)
	if err != nil {
		return err
	}
	itemID, err := strconv.Atoi(c.Param("itemId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	var req struct {
		Name        string `json:"name"`
		Price       int64  `json:"price"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	var item models.MenuItem
	if err := h.DB.Where("id = ? AND restaurant_id = ?", itemID, id).First(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "menu item not found")
	}

	item.Name = req.Name
	item.Price = req.Price
	item.Description = req.Description
	item.Category = req.Category
	if err := h.DB.Save(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Pub, topicMenuEvents, fmt.Sprint(id), map[string]any{
		"type":         "menu_item_updated",
		"restaurantID": id,
		"itemID":       item.ID,
		"name":         item.Name,
	})
	return c.JSON(http.StatusOK, item)
}

func (h *RestaurantHandler) DeleteMenuItem(c echo.Context) error {
	id, err := ownedRestaurant(c)
	if err != nil {
		return err
	}
	itemID, err := strconv.Atoi(c.Param("itemId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	if err := h.DB.Where("id = ? AND restaurant_id = ?", itemID, id).Delete(&models.MenuItem{}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Pub, topicMenuEvents, fmt.Sprint(id), map[string]any{
		"type":         "menu_item_deleted",
		"restaurantID": id,
		"itemID":       itemID,
	})
	return c.NoContent(http.StatusNoContent)
}
