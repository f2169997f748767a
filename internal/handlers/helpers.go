package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kuldeepsaindane/BiteBuddy-New/internal/events"
)

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func errorResponse(c echo.Context, code int, err error) error {
	return c.JSON(code, Response{
		Status:  "error",
		Message: err.Error(),
	})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// publish is fire and forget, errors go to the request logger only.
func publish(c echo.Context, pub events.Publisher, topic, key string, event map[string]any) {
	if pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := pub.Publish(ctx, topic, key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}
