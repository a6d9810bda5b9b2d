package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mveljko/komoda-shop/internal/config"
	"github.com/mveljko/komoda-shop/internal/models"
)

func InitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
		return nil
	}

	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newJSONContext(e *echo.Echo, method, target string, body any) (echo.Context, *httptest.ResponseRecorder) {
	var reader *bytes.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		reader = bytes.NewReader(bodyBytes)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func seedCategory(t *testing.T, db *gorm.DB, naziv string) models.Category {
	category := models.Category{Name: naziv}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	return category
}

func seedProduct(t *testing.T, db *gorm.DB, categoryID uuid.UUID, naziv string, cena, nabavna float64) models.Product {
	product := models.Product{
		Name:       naziv,
		Price:      cena,
		CostBasis:  nabavna,
		Available:  true,
		CategoryID: categoryID,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return product
}

func seedOrder(t *testing.T, db *gorm.DB, status string, total float64, created time.Time) models.Order {
	customer := models.Customer{
		FirstName: "Petar",
		LastName:  "Petrović",
		Phone:     "0601234567",
		Address:   "Kneza Miloša 1",
		City:      "Beograd",
		CreatedAt: created,
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("failed to seed customer: %v", err)
	}
	order := models.Order{
		CustomerID: customer.ID,
		Status:     status,
		Total:      total,
		CreatedAt:  created,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
	return order
}
