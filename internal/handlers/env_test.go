package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kuldeepsaindane/BiteBuddy-New/internal/cart"
	"github.com/kuldeepsaindane/BiteBuddy-New/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Restaurant{},
		&models.MenuItem{},
		&models.CartRecord{},
		&models.Order{},
		&models.Reservation{},
		&models.Rating{},
		&models.SupportTicket{},
		&models.Campaign{},
	)
	if err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

type publishedEvent struct {
	Topic string
	Key   string
	Event any
}

// recordPub captures events instead of writing to a broker.
type recordPub struct {
	events []publishedEvent
}

func (p *recordPub) Publish(_ context.Context, topic, key string, event any) error {
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Event: event})
	return nil
}

func newCartManager(db *gorm.DB) *cart.Manager {
	return cart.NewManager(&cart.GormStore{DB: db}, cart.DefaultPricing(), slog.Default())
}

// jsonRequest builds an echo context carrying an authenticated user.
func jsonRequest(t *testing.T, method, target string, body any, userID uint) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	e := echo.New()
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("userID", userID)
	}
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return he.Code
}

func seedMenuItem(t *testing.T, db *gorm.DB, restaurantID uint, name string, price int64) models.MenuItem {
	t.Helper()
	item := models.MenuItem{RestaurantID: restaurantID, Name: name, Price: price, Category: "Mains"}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed menu item: %v", err)
	}
	return item
}
