package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mveljko/komoda-shop/internal/hash"
	"github.com/mveljko/komoda-shop/internal/models"
	"github.com/mveljko/komoda-shop/internal/mykafka"
)

func LoadConfig(t *testing.T) (*gorm.DB, []byte, []byte) {
	db := InitTestDB(t)

	jwt_secret := []byte(os.Getenv("JWT_SECRET"))
	refresh := []byte(os.Getenv("REFRESH_SECRET"))

	return db, jwt_secret, refresh
}

func TestRegister(t *testing.T) {
	db, jwt_secret, refresh := LoadConfig(t)

	e := echo.New()
	c, rec := newJSONContext(e, http.MethodPost, "/register", map[string]string{
		"username": "test_user",
		"password": "password",
	})

	AuthHandler := AuthHandler{
		DB:            db,
		JWTSecret:     jwt_secret,
		RefreshSecret: refresh,
		Producer:      &mykafka.Producer{},
	}

	require.NoError(t, AuthHandler.Register(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var valid_user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &valid_user))
	require.Equal(t, "test_user", valid_user.Username)
	require.Equal(t, "user", valid_user.Role)
	require.NotEmpty(t, valid_user.ID)

	c_invalid, _ := newJSONContext(e, http.MethodPost, "/register", map[string]string{
		"username": "test_user",
		"password": "password",
	})

	err := AuthHandler.Register(c_invalid)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestLogin(t *testing.T) {
	db, jwt_secret, refresh := LoadConfig(t)

	AuthHandler := AuthHandler{
		DB:            db,
		JWTSecret:     jwt_secret,
		RefreshSecret: refresh,
		Producer:      &mykafka.Producer{},
	}

	passwordHash, _ := hash.HashPassword("password")
	db.Create(&models.User{
		Username:     "test_user",
		PasswordHash: passwordHash,
		Role:         "admin",
	})

	e := echo.New()
	c, rec := newJSONContext(e, http.MethodPost, "/login", map[string]string{
		"username": "test_user",
		"password": "password",
	})

	require.NoError(t, AuthHandler.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var RespData map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &RespData))
	require.NotEmpty(t, RespData["access_token"])
	require.NotEmpty(t, RespData["refresh_token"])
	require.Equal(t, true, RespData["is_admin"])

	var stored models.RefreshToken
	require.NoError(t, db.Where("token = ?", RespData["refresh_token"]).First(&stored).Error)
	require.False(t, stored.Revoked)

	c_invalid, _ := newJSONContext(e, http.MethodPost, "/login", map[string]string{
		"username": "test_user",
		"password": "invalid_password",
	})

	err := AuthHandler.Login(c_invalid)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestLogOut(t *testing.T) {
	db, jwt_secret, refresh_secret := LoadConfig(t)
	AuthHandler := AuthHandler{
		DB:            db,
		JWTSecret:     jwt_secret,
		RefreshSecret: refresh_secret,
		Producer:      &mykafka.Producer{},
	}

	e := echo.New()
	load := map[string]string{
		"username": "test_user",
		"password": "password",
	}

	c_register, rec_register := newJSONContext(e, http.MethodPost, "/register", load)
	require.NoError(t, AuthHandler.Register(c_register))
	require.Equal(t, http.StatusOK, rec_register.Code)

	c_login, rec_login := newJSONContext(e, http.MethodPost, "/login", load)
	require.NoError(t, AuthHandler.Login(c_login))
	require.Equal(t, http.StatusOK, rec_login.Code)

	var RespData_login map[string]interface{}
	require.NoError(t, json.Unmarshal(rec_login.Body.Bytes(), &RespData_login))
	refresh_token := RespData_login["refresh_token"].(string)

	req_logout := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req_logout.AddCookie(&http.Cookie{
		Name:  "refreshToken",
		Value: refresh_token,
	})
	rec_logout := httptest.NewRecorder()
	c_logout := e.NewContext(req_logout, rec_logout)

	require.NoError(t, AuthHandler.LogOut(c_logout))
	require.Equal(t, http.StatusOK, rec_logout.Code)

	var stored models.RefreshToken
	require.NoError(t, db.Where("token = ?", refresh_token).First(&stored).Error)
	require.True(t, stored.Revoked)
}
