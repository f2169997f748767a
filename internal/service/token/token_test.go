package token

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kuldeepsaindane/BiteBuddy-New/internal/models"
)

var (
	testJWTSecret     = []byte("test-jwt-secret")
	testRefreshSecret = []byte("test-refresh-secret")
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.RefreshToken{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func testUser() *models.User {
	return &models.User{ID: 1, Email: "diner@example.com", Role: "user"}
}

func ownerUser() *models.User {
	rid := uint(7)
	return &models.User{ID: 2, Email: "owner@example.com", Role: "restaurant", RestaurantID: &rid}
}

func TestAccessTokenClaims(t *testing.T) {
	signed, err := SignAccessToken(ownerUser(), testJWTSecret)
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(*jwt.Token) (interface{}, error) { return testJWTSecret, nil })
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims := parsed.Claims.(jwt.MapClaims)
	require.Equal(t, float64(2), claims["sub"])
	require.Equal(t, "restaurant", claims["role"])
	require.Equal(t, float64(7), claims["rid"])
	_, hasTyp := claims["typ"]
	require.False(t, hasTyp)
}

func TestValidateRefresh(t *testing.T) {
	db := initTestDB(t)
	user := testUser()

	refresh, err := SignRefreshToken(user, testRefreshSecret)
	require.NoError(t, err)
	require.NoError(t, SaveRefreshToken(db, refresh, user))

	claims, err := ValidateRefresh(refresh, testRefreshSecret, db)
	require.NoError(t, err)
	require.Equal(t, "refresh", claims["typ"])

	// an access token must not pass as a refresh token
	access, err := SignAccessToken(user, testRefreshSecret)
	require.NoError(t, err)
	_, err = ValidateRefresh(access, testRefreshSecret, db)
	require.Error(t, err)

	// wrong secret
	_, err = ValidateRefresh(refresh, []byte("other"), db)
	require.Error(t, err)

	// unknown to the database
	orphan, err := SignRefreshToken(ownerUser(), testRefreshSecret)
	require.NoError(t, err)
	_, err = ValidateRefresh(orphan, testRefreshSecret, db)
	require.Error(t, err)
}

func TestValidateRefreshRevoked(t *testing.T) {
	db := initTestDB(t)
	user := testUser()
	svc := &Service{DB: db, JWTSecret: testJWTSecret, RefreshSecret: testRefreshSecret}

	refresh, err := SignRefreshToken(user, testRefreshSecret)
	require.NoError(t, err)
	require.NoError(t, SaveRefreshToken(db, refresh, user))

	require.NoError(t, svc.RevokeRefresh(refresh))
	_, err = ValidateRefresh(refresh, testRefreshSecret, db)
	require.Error(t, err)
}

func TestRotateToken(t *testing.T) {
	db := initTestDB(t)
	user := ownerUser()
	svc := &Service{DB: db, JWTSecret: testJWTSecret, RefreshSecret: testRefreshSecret}

	refresh, err := SignRefreshToken(user, testRefreshSecret)
	require.NoError(t, err)
	require.NoError(t, SaveRefreshToken(db, refresh, user))

	newAccess, newRefresh, err := svc.RotateToken(refresh)
	require.NoError(t, err)
	require.NotEmpty(t, newAccess)
	require.NotEqual(t, refresh, newRefresh)

	// the rotated refresh token is saved and valid
	claims, err := ValidateRefresh(newRefresh, testRefreshSecret, db)
	require.NoError(t, err)
	require.Equal(t, float64(2), claims["sub"])
	require.Equal(t, float64(7), claims["rid"])

	// garbage never rotates
	_, _, err = svc.RotateToken("not-a-token")
	require.Error(t, err)
}

func middlewareContext(cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAutoRefreshMiddlewareAccessCookie(t *testing.T) {
	svc := &Service{DB: initTestDB(t), JWTSecret: testJWTSecret, RefreshSecret: testRefreshSecret}

	access, err := SignAccessToken(ownerUser(), testJWTSecret)
	require.NoError(t, err)

	c, _ := middlewareContext(&http.Cookie{Name: "accessToken", Value: access})
	called := false
	h := svc.AutoRefreshMiddleware(func(c echo.Context) error {
		called = true
		return nil
	})
	require.NoError(t, h(c))
	require.True(t, called)

	id, err := UserID(c)
	require.NoError(t, err)
	require.Equal(t, uint(2), id)
	require.Equal(t, "restaurant", Role(c))

	rid, ok := OwnedRestaurant(c)
	require.True(t, ok)
	require.Equal(t, uint(7), rid)
}

func TestAutoRefreshMiddlewareRotates(t *testing.T) {
	db := initTestDB(t)
	svc := &Service{DB: db, JWTSecret: testJWTSecret, RefreshSecret: testRefreshSecret}
	user := testUser()

	refresh, err := SignRefreshToken(user, testRefreshSecret)
	require.NoError(t, err)
	require.NoError(t, SaveRefreshToken(db, refresh, user))

	// no access cookie at all, the refresh path must kick in
	c, rec := middlewareContext(&http.Cookie{Name: "refreshToken", Value: refresh})
	h := svc.AutoRefreshMiddleware(func(c echo.Context) error { return nil })
	require.NoError(t, h(c))

	id, err := UserID(c)
	require.NoError(t, err)
	require.Equal(t, uint(1), id)

	fresh := map[string]bool{}
	for _, ck := range rec.Result().Cookies() {
		fresh[ck.Name] = true
		require.True(t, ck.Expires.After(time.Now()))
	}
	require.True(t, fresh["accessToken"])
	require.True(t, fresh["refreshToken"])
}

func TestAutoRefreshMiddlewareRejectsAnonymous(t *testing.T) {
	svc := &Service{DB: initTestDB(t), JWTSecret: testJWTSecret, RefreshSecret: testRefreshSecret}

	c, _ := middlewareContext()
	h := svc.AutoRefreshMiddleware(func(c echo.Context) error { return nil })

	err := h(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireOwner(t *testing.T) {
	svc := &Service{}

	c, _ := middlewareContext()
	c.Set("role", "restaurant")
	require.NoError(t, svc.RequireOwner(func(c echo.Context) error { return nil })(c))

	c, _ = middlewareContext()
	c.Set("role", "user")
	err := svc.RequireOwner(func(c echo.Context) error { return nil })(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusForbidden, he.Code)
}
