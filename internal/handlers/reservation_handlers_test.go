package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kuldeepsaindane/BiteBuddy-New/internal/models"
)

func reservationBody(restaurantID uint) map[string]any {
	return map[string]any{
		"restaurantId":  restaurantID,
		"date":          "2026-09-15",
		"time":          "19:30",
		"guests":        4,
		"occasion":      "Birthday",
		"customerName":  "Test Diner",
		"customerEmail": "diner@example.com",
		"customerPhone": "555-0101",
	}
}

func TestCreateReservation(t *testing.T) {
	h := &ReservationHandler{DB: initTestDB(t)}

	c, rec := jsonRequest(t, http.MethodPost, "/api/reservations", reservationBody(7), 1)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]uint
	decodeBody(t, rec, &resp)
	require.NotZero(t, resp["reservationId"])

	var stored models.Reservation
	require.NoError(t, h.DB.First(&stored, resp["reservationId"]).Error)
	require.Equal(t, "pending", stored.Status)
	require.Equal(t, uint(4), stored.Guests)
}

func TestCreateReservationValidation(t *testing.T) {
	h := &ReservationHandler{DB: initTestDB(t)}

	body := reservationBody(7)
	body["guests"] = 0
	c, _ := jsonRequest(t, http.MethodPost, "/api/reservations", body, 1)
	require.Equal(t, http.StatusBadRequest, httpCode(t, h.Create(c)))

	body = reservationBody(0)
	c, _ = jsonRequest(t, http.MethodPost, "/api/reservations", body, 1)
	require.Equal(t, http.StatusBadRequest, httpCode(t, h.Create(c)))
}

func TestUserReservationsMatchesByEmail(t *testing.T) {
	h := &ReservationHandler{DB: initTestDB(t)}
	require.NoError(t, h.DB.Create(&models.User{Email: "diner@example.com", PasswordHash: "x", Role: "user"}).Error)

	c, _ := jsonRequest(t, http.MethodPost, "/api/reservations", reservationBody(7), 1)
	require.NoError(t, h.Create(c))

	other := reservationBody(7)
	other["customerEmail"] = "someone-else@example.com"
	c, _ = jsonRequest(t, http.MethodPost, "/api/reservations", other, 1)
	require.NoError(t, h.Create(c))

	c, rec := jsonRequest(t, http.MethodGet, "/api/reservations/user", nil, 1)
	require.NoError(t, h.UserReservations(c))

	var out []models.Reservation
	decodeBody(t, rec, &out)
	require.Len(t, out, 1)
	require.Equal(t, "diner@example.com", out[0].CustomerEmail)
}

func TestRestaurantReservationsRequireOwnership(t *testing.T) {
	h := &ReservationHandler{DB: initTestDB(t)}

	c, _ := jsonRequest(t, http.MethodGet, "/", nil, 1)
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.Equal(t, http.StatusForbidden, httpCode(t, h.RestaurantReservations(c)))

	c, rec := jsonRequest(t, http.MethodGet, "/", nil, 1)
	c.Set("restaurantID", uint(7))
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, h.RestaurantReservations(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateReservationStatus(t *testing.T) {
	h := &ReservationHandler{DB: initTestDB(t)}

	c, _ := jsonRequest(t, http.MethodPost, "/api/reservations", reservationBody(7), 1)
	require.NoError(t, h.Create(c))

	c, _ = jsonRequest(t, http.MethodPut, "/", map[string]string{"status": "confirmed"}, 1)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UpdateStatus(c))

	var stored models.Reservation
	require.NoError(t, h.DB.First(&stored, 1).Error)
	require.Equal(t, "confirmed", stored.Status)

	c, _ = jsonRequest(t, http.MethodPut, "/", map[string]string{"status": "confirmed"}, 1)
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.Equal(t, http.StatusNotFound, httpCode(t, h.UpdateStatus(c)))
}
