package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/mveljko/komoda-shop/internal/models"
	"github.com/mveljko/komoda-shop/internal/mykafka"
	"github.com/mveljko/komoda-shop/internal/orderstatus"
)

func TestCreateOrder(t *testing.T) {
	db := InitTestDB(t)
	category := seedCategory(t, db, "Komode")
	product := seedProduct(t, db, category.ID, "Komoda Drina", 14990, 9000)

	handler := OrderHandler{DB: db, Producer: &mykafka.Producer{}}

	e := echo.New()
	c, rec := newJSONContext(e, http.MethodPost, "/orders", map[string]any{
		"ime_kupca":     "Mila",
		"prezime_kupca": "Jovanović",
		"telefon":       "0641112223",
		"email":         "mila@example.com",
		"adresa":        "Bulevar oslobođenja 12",
		"mesto":         "Novi Sad",
		"stavke": []map[string]any{
			{"id_proizvoda": product.ID, "kolicina": 2},
		},
	})

	require.NoError(t, handler.CreateOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var order models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	require.Equal(t, orderstatus.Nova, order.Status)
	// total is computed from the product row, whatever the client sent
	require.Equal(t, 29980.0, order.Total)
	require.Len(t, order.Items, 1)
	require.Equal(t, 14990.0, order.Items[0].UnitPrice)
	require.NotNil(t, order.Customer)
	require.Equal(t, "Mila", order.Customer.FirstName)
}

func TestCreateOrderRollsBackOnUnknownProduct(t *testing.T) {
	db := InitTestDB(t)
	category := seedCategory(t, db, "Komode")
	product := seedProduct(t, db, category.ID, "Komoda Drina", 14990, 9000)

	handler := OrderHandler{DB: db, Producer: &mykafka.Producer{}}

	e := echo.New()
	c, rec := newJSONContext(e, http.MethodPost, "/orders", map[string]any{
		"ime_kupca":     "Mila",
		"prezime_kupca": "Jovanović",
		"telefon":       "0641112223",
		"adresa":        "Bulevar oslobođenja 12",
		"mesto":         "Novi Sad",
		"stavke": []map[string]any{
			{"id_proizvoda": product.ID, "kolicina": 1},
			{"id_proizvoda": "2e9b1c55-0000-4000-8000-000000000000", "kolicina": 1},
		},
	})

	require.NoError(t, handler.CreateOrder(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// nothing from the failed checkout may survive
	var orders, items, customers int64
	db.Model(&models.Order{}).Count(&orders)
	db.Model(&models.OrderItem{}).Count(&items)
	db.Model(&models.Customer{}).Count(&customers)
	require.Zero(t, orders)
	require.Zero(t, items)
	require.Zero(t, customers)
}

func TestCreateOrderUnavailableProduct(t *testing.T) {
	db := InitTestDB(t)
	category := seedCategory(t, db, "Komode")
	product := seedProduct(t, db, category.ID, "Komoda Drina", 14990, 9000)
	require.NoError(t, db.Model(&product).Update("dostupnost", false).Error)

	handler := OrderHandler{DB: db, Producer: &mykafka.Producer{}}

	e := echo.New()
	c, rec := newJSONContext(e, http.MethodPost, "/orders", map[string]any{
		"ime_kupca":     "Mila",
		"prezime_kupca": "Jovanović",
		"telefon":       "0641112223",
		"adresa":        "Bulevar oslobođenja 12",
		"mesto":         "Novi Sad",
		"stavke": []map[string]any{
			{"id_proizvoda": product.ID, "kolicina": 1},
		},
	})

	require.NoError(t, handler.CreateOrder(c))
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateOrderValidation(t *testing.T) {
	db := InitTestDB(t)
	handler := OrderHandler{DB: db, Producer: &mykafka.Producer{}}
	e := echo.New()

	c, rec := newJSONContext(e, http.MethodPost, "/orders", map[string]any{
		"ime_kupca": "Mila",
	})
	require.NoError(t, handler.CreateOrder(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	c_email, rec_email := newJSONContext(e, http.MethodPost, "/orders", map[string]any{
		"ime_kupca":     "Mila",
		"prezime_kupca": "Jovanović",
		"telefon":       "0641112223",
		"email":         "not-an-email",
		"adresa":        "Bulevar oslobođenja 12",
		"mesto":         "Novi Sad",
		"stavke":        []map[string]any{{"id_proizvoda": "2e9b1c55-0000-4000-8000-000000000000", "kolicina": 1}},
	})
	require.NoError(t, handler.CreateOrder(c_email))
	require.Equal(t, http.StatusBadRequest, rec_email.Code)
}

func TestPatchOrderStatus(t *testing.T) {
	db := InitTestDB(t)
	order := seedOrder(t, db, orderstatus.Nova, 1000, time.Now().UTC())

	handler := OrderHandler{DB: db, Producer: &mykafka.Producer{}}
	e := echo.New()

	c, rec := newJSONContext(e, http.MethodPatch, "/orders/"+order.ID.String()+"/status", map[string]string{
		"status_porudzbine": orderstatus.Poslata,
	})
	c.SetParamNames("id")
	c.SetParamValues(order.ID.String())

	require.NoError(t, handler.PatchOrderStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
	require.Equal(t, orderstatus.Poslata, reloaded.Status)
}

func TestPatchOrderStatusTerminal(t *testing.T) {
	db := InitTestDB(t)
	order := seedOrder(t, db, orderstatus.Isporucena, 1000, time.Now().UTC())

	handler := OrderHandler{DB: db, Producer: &mykafka.Producer{}}
	e := echo.New()

	c, rec := newJSONContext(e, http.MethodPatch, "/orders/"+order.ID.String()+"/status", map[string]string{
		"status_porudzbine": orderstatus.Otkazana,
	})
	c.SetParamNames("id")
	c.SetParamValues(order.ID.String())

	require.NoError(t, handler.PatchOrderStatus(c))
	require.Equal(t, http.StatusConflict, rec.Code)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
	require.Equal(t, orderstatus.Isporucena, reloaded.Status)
}

func TestPatchOrderStatusUnknown(t *testing.T) {
	db := InitTestDB(t)
	order := seedOrder(t, db, orderstatus.Nova, 1000, time.Now().UTC())

	handler := OrderHandler{DB: db, Producer: &mykafka.Producer{}}
	e := echo.New()

	c, rec := newJSONContext(e, http.MethodPatch, "/orders/"+order.ID.String()+"/status", map[string]string{
		"status_porudzbine": "zavrsena",
	})
	c.SetParamNames("id")
	c.SetParamValues(order.ID.String())

	require.NoError(t, handler.PatchOrderStatus(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrders(t *testing.T) {
	db := InitTestDB(t)
	now := time.Now().UTC()
	seedOrder(t, db, orderstatus.Nova, 1000, now.Add(-2*time.Hour))
	newest := seedOrder(t, db, orderstatus.Poslata, 2000, now)

	handler := OrderHandler{DB: db, Producer: &mykafka.Producer{}}
	e := echo.New()

	c, rec := newJSONContext(e, http.MethodGet, "/orders", nil)
	require.NoError(t, handler.GetOrders(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.Order `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(2), resp.Meta.Total)
	require.Equal(t, newest.ID, resp.Data[0].ID)
	require.NotNil(t, resp.Data[0].Customer)

	c_filter, rec_filter := newJSONContext(e, http.MethodGet, "/orders?status="+orderstatus.Poslata, nil)
	require.NoError(t, handler.GetOrders(c_filter))
	var filtered struct {
		Data []models.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec_filter.Body.Bytes(), &filtered))
	require.Len(t, filtered.Data, 1)
	require.Equal(t, orderstatus.Poslata, filtered.Data[0].Status)
}

func TestExportOrders(t *testing.T) {
	db := InitTestDB(t)
	seedOrder(t, db, orderstatus.Isporucena, 14980, time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC))

	handler := OrderHandler{DB: db, Producer: &mykafka.Producer{}}
	e := echo.New()

	c, rec := newJSONContext(e, http.MethodGet, "/orders/export", nil)
	require.NoError(t, handler.ExportOrders(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "porudzbine-")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "Kupac")
	require.Contains(t, lines[1], "Isporučena")
	require.Contains(t, lines[1], "14980 RSD")
}
