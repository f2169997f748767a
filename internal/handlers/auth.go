package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kuldeepsaindane/BiteBuddy-New/internal/events"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/hash"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/models"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/service/token"
)

type AuthHandler struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
	Pub           events.Publisher
}

const topicUserEvents = "user_events"

// Register creates a diner or a restaurant-owner account. Owner
// registration also creates the restaurant row and binds it to the user.
func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Email             string `json:"email"`
		Password          string `json:"password"`
		ConfirmPassword   string `json:"confirmPassword"`
		Role              string `json:"role"`
		FullName          string `json:"fullName"`
		RestaurantName    string `json:"restaurantName"`
		RestaurantAddress string `json:"restaurantAddress"`
		RestaurantPhone   string `json:"restaurantPhone"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	if req.Email == "" || req.Password == "" || req.Role == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email, password and role are required")
	}
	if req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		return echo.NewHTTPError(http.StatusBadRequest, "passwords do not match")
	}
	if req.Role == "restaurant" && (req.RestaurantName == "" || req.RestaurantAddress == "") {
		return echo.NewHTTPError(http.StatusBadRequest, "restaurant name and address are required for restaurant users")
	}

	var existing models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusBadRequest, "user already exists")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: pwHash,
		FullName:     req.FullName,
		Role:         req.Role,
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if req.Role != "restaurant" {
			return nil
		}
		restaurant := models.Restaurant{
			Name:              req.RestaurantName,
			Address:           req.RestaurantAddress,
			CloudinaryImageID: "default-image",
			CostForTwo:        30000,
			DeliveryTime:      30,
			AvgRating:         4.0,
			Cuisines:          "Various Cuisines",
			City:              "Bangalore",
			Area:              "Local Area",
		}
		if err := tx.Create(&restaurant).Error; err != nil {
			return err
		}
		user.RestaurantID = &restaurant.ID
		return tx.Model(&user).Update("restaurant_id", restaurant.ID).Error
	})
	if txErr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	publish(c, h.Pub, topicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
		"role":   user.Role,
	})

	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err)
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	accessToken, err := token.SignAccessToken(&user, h.JWTSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create access token")
	}
	refreshToken, err := token.SignRefreshToken(&user, h.RefreshSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create refresh token")
	}
	if err := token.SaveRefreshToken(h.DB, refreshToken, &user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	c.SetCookie(token.CreateCookie("accessToken", accessToken, "/", time.Now().Add(token.AccessTTL)))
	c.SetCookie(token.CreateCookie("refreshToken", refreshToken, "/", time.Now().Add(token.RefreshTTL)))

	publish(c, h.Pub, topicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
		"email":  user.Email,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"role":          user.Role,
		"restaurant_id": user.RestaurantID,
	})
}

func (h *AuthHandler) LogOut(c echo.Context) error {
	refreshCookie, err := c.Cookie("refreshToken")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "refresh token missing")
	}

	if err := h.DB.Model(&models.RefreshToken{}).
		Where("token = ?", refreshCookie.Value).
		Update("revoked", true).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(token.CreateCookie("accessToken", "", "/", expired))
	c.SetCookie(token.CreateCookie("refreshToken", "", "/", expired))

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
