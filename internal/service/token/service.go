package token

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kuldeepsaindane/BiteBuddy-New/internal/models"
)

type Service struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
}

func (t *Service) RotateToken(rawToken string) (string, string, error) {
	claims, err := ValidateRefresh(rawToken, t.RefreshSecret, t.DB)
	if err != nil {
		return "", "", err
	}

	user := userFromClaims(claims)

	newAccess, err := SignAccessToken(user, t.JWTSecret)
	if err != nil {
		return "", "", err
	}
	newRefresh, err := SignRefreshToken(user, t.RefreshSecret)
	if err != nil {
		return "", "", err
	}
	if err := SaveRefreshToken(t.DB, newRefresh, user); err != nil {
		return "", "", err
	}

	return newAccess, newRefresh, nil
}

func (t *Service) RevokeRefresh(token string) error {
	if err := t.DB.Model(&models.RefreshToken{}).
		Where("token = ?", token).
		Update("revoked", true).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// AutoRefreshMiddleware authenticates with the access cookie and falls back
// to rotating the refresh token when the access token has expired.
func (t *Service) AutoRefreshMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		asCookie, err := c.Cookie("accessToken")
		if err == nil {
			token, err := jwt.Parse(asCookie.Value, func(j *jwt.Token) (interface{}, error) {
				return t.JWTSecret, nil
			})
			if err == nil && token.Valid {
				setUserContext(c, token.Claims.(jwt.MapClaims))
				return next(c)
			}
			if !errors.Is(err, jwt.ErrTokenExpired) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}
		}

		rfCookie, err := c.Cookie("refreshToken")
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
		}
		newAccess, newRefresh, err := t.RotateToken(rfCookie.Value)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "cannot rotate token: "+err.Error())
		}

		c.SetCookie(CreateCookie("accessToken", newAccess, "/", time.Now().Add(AccessTTL)))
		c.SetCookie(CreateCookie("refreshToken", newRefresh, "/", time.Now().Add(RefreshTTL)))

		token, _ := jwt.Parse(newAccess, func(j *jwt.Token) (interface{}, error) { return t.JWTSecret, nil })
		setUserContext(c, token.Claims.(jwt.MapClaims))
		return next(c)
	}
}

// RequireOwner allows only restaurant-owner accounts through. Must run
// after AutoRefreshMiddleware.
func (t *Service) RequireOwner(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if Role(c) != "restaurant" {
			return echo.NewHTTPError(http.StatusForbidden, "restaurant account required")
		}
		return next(c)
	}
}

func setUserContext(c echo.Context, claims jwt.MapClaims) {
	c.Set("userID", uint(claims["sub"].(float64)))
	c.Set("role", claims["role"].(string))
	if rid, ok := claims["rid"].(float64); ok {
		c.Set("restaurantID", uint(rid))
	}
}

func userFromClaims(claims jwt.MapClaims) *models.User {
	user := &models.User{
		ID:   uint(claims["sub"].(float64)),
		Role: claims["role"].(string),
	}
	if rid, ok := claims["rid"].(float64); ok {
		id := uint(rid)
		user.RestaurantID = &id
	}
	return user
}

// UserID reads the authenticated user id set by the middleware.
func UserID(c echo.Context) (uint, error) {
	id, ok := c.Get("userID").(uint)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return id, nil
}

func Role(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

// OwnedRestaurant reports the restaurant bound to an owner account.
func OwnedRestaurant(c echo.Context) (uint, bool) {
	id, ok := c.Get("restaurantID").(uint)
	return id, ok
}
