package token

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/kuldeepsaindane/BiteBuddy-New/internal/models"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
)

func CreateCookie(name, value, path string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// claims carry the restaurant id for owner accounts so owner-only routes
// can authorize without a user lookup.
func buildClaims(user *models.User, exp time.Time) jwt.MapClaims {
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"exp":  exp.Unix(),
	}
	if user.RestaurantID != nil {
		claims["rid"] = *user.RestaurantID
	}
	return claims
}

func SignAccessToken(user *models.User, accessSecret []byte) (string, error) {
	claims := buildClaims(user, time.Now().Add(AccessTTL))
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(accessSecret)
}

func SignRefreshToken(user *models.User, refreshSecret []byte) (string, error) {
	claims := buildClaims(user, time.Now().Add(RefreshTTL))
	claims["typ"] = "refresh"
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(refreshSecret)
}

func SaveRefreshToken(db *gorm.DB, token string, user *models.User) error {
	rec := models.RefreshToken{
		Token:     token,
		UserID:    user.ID,
		Role:      user.Role,
		ExpiresAt: time.Now().Add(RefreshTTL).Unix(),
		Revoked:   false,
	}
	if err := db.Create(&rec).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func ValidateRefresh(rawToken string, refreshSecret []byte, db *gorm.DB) (jwt.MapClaims, error) {
	t, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return refreshSecret, nil
	})
	if err != nil || !t.Valid {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("cannot parse claims")
	}
	if typ, ok := claims["typ"]; !ok || typ != "refresh" {
		return nil, fmt.Errorf("not a refresh token")
	}

	var stored models.RefreshToken
	if err := db.Where("token = ?", rawToken).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("refresh token not found")
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if stored.Revoked {
		return nil, errors.New("refresh token revoked")
	}
	if time.Now().Unix() > stored.ExpiresAt {
		return nil, errors.New("refresh token expired")
	}

	return claims, nil
}
