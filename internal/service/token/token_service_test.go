package token

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mveljko/komoda-shop/internal/config"
	"github.com/mveljko/komoda-shop/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func TestAutoRefreshMiddlewareRotation(t *testing.T) {
	db := initTestDB(t)
	service := TokenService{
		DB:            db,
		RefreshSecret: []byte("refresh-secret"),
		JWTSecret:     []byte("access-secret"),
	}

	refresh, err := SignRefreshToken(7, "admin", service.RefreshSecret)
	require.NoError(t, err)
	require.NoError(t, SaveRefreshToken(db, refresh, 7, "admin"))

	e := echo.New()
	// no access cookie at all, the middleware must rotate from the refresh
	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := service.AutoRefreshMiddleware(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
	require.True(t, called)
	require.Equal(t, uint(7), c.Get("userID"))
	require.Equal(t, "admin", c.Get("role"))

	// old refresh token is revoked, a new one is stored
	var old models.RefreshToken
	require.NoError(t, db.Where("token = ?", refresh).First(&old).Error)
	require.True(t, old.Revoked)

	var live int64
	db.Model(&models.RefreshToken{}).Where("revoked = ?", false).Count(&live)
	require.Equal(t, int64(1), live)

	cookies := rec.Result().Cookies()
	names := make(map[string]bool, len(cookies))
	for _, ck := range cookies {
		names[ck.Name] = ck.Value != ""
	}
	require.True(t, names["accessToken"])
	require.True(t, names["refreshToken"])
}

func TestAutoRefreshMiddlewareRejectsRevoked(t *testing.T) {
	db := initTestDB(t)
	service := TokenService{
		DB:            db,
		RefreshSecret: []byte("refresh-secret"),
		JWTSecret:     []byte("access-secret"),
	}

	refresh, err := SignRefreshToken(7, "admin", service.RefreshSecret)
	require.NoError(t, err)
	require.NoError(t, SaveRefreshToken(db, refresh, 7, "admin"))
	require.NoError(t, service.RevokeRefresh(refresh))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := service.AutoRefreshMiddleware(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	err = handler(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestAutoRefreshMiddlewareAdminRole(t *testing.T) {
	db := initTestDB(t)
	service := TokenService{
		DB:            db,
		RefreshSecret: []byte("refresh-secret"),
		JWTSecret:     []byte("access-secret"),
	}

	refresh, err := SignRefreshToken(3, "user", service.RefreshSecret)
	require.NoError(t, err)
	require.NoError(t, SaveRefreshToken(db, refresh, 3, "user"))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := service.AutoRefreshMiddlewareAdmin(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	err = handler(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusForbidden, he.Code)
}
