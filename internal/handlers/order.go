package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mveljko/komoda-shop/internal/models"
	"github.com/mveljko/komoda-shop/internal/mykafka"
	"github.com/mveljko/komoda-shop/internal/orderstatus"
	"github.com/mveljko/komoda-shop/internal/report"
	"github.com/mveljko/komoda-shop/internal/util"
)

type OrderHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *OrderHandler) publish(c echo.Context, orderID uuid.UUID, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, mykafka.TopicOrderEvents, orderID.String(), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

type checkoutItem struct {
	ProductID uuid.UUID `json:"id_proizvoda"`
	Quantity  int       `json:"kolicina"`
}

type checkoutRequest struct {
	FirstName  string         `json:"ime_kupca"`
	LastName   string         `json:"prezime_kupca"`
	Phone      string         `json:"telefon"`
	Email      string         `json:"email"`
	Address    string         `json:"adresa"`
	City       string         `json:"mesto"`
	PostalCode string         `json:"id_post"`
	Items      []checkoutItem `json:"stavke"`
}

func (r *checkoutRequest) validate() error {
	switch {
	case r.FirstName == "":
		return errors.New("ime_kupca required")
	case r.LastName == "":
		return errors.New("prezime_kupca required")
	case r.Phone == "":
		return errors.New("telefon required")
	case r.Address == "":
		return errors.New("adresa required")
	case r.City == "":
		return errors.New("mesto required")
	case len(r.Items) == 0:
		return errors.New("stavke required")
	}
	if r.Email != "" && !validEmail(r.Email) {
		return errors.New("invalid email")
	}
	for _, it := range r.Items {
		if it.ProductID == uuid.Nil {
			return errors.New("id_proizvoda required")
		}
		if it.Quantity <= 0 {
			return errors.New("kolicina must be > 0")
		}
	}
	return nil
}

// CreateOrder is the public checkout. The customer, the order and its line
// items are written in one transaction, so a failed item never leaves a
// half-created order behind. Unit prices are snapshotted from the product
// rows and the order total is computed server-side; client-sent amounts are
// never trusted.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if err := req.validate(); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var order models.Order
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		customer := models.Customer{
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Phone:      req.Phone,
			Email:      req.Email,
			Address:    req.Address,
			City:       req.City,
			PostalCode: req.PostalCode,
		}
		if err := tx.Create(&customer).Error; err != nil {
			return err
		}

		order = models.Order{
			CustomerID: customer.ID,
			Status:     orderstatus.Nova,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		var total float64
		for _, it := range req.Items {
			var product models.Product
			if err := tx.First(&product, "id = ?", it.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return echo.NewHTTPError(http.StatusBadRequest,
						fmt.Sprintf("unknown product %s", it.ProductID))
				}
				return err
			}
			if !product.Available {
				return echo.NewHTTPError(http.StatusConflict,
					fmt.Sprintf("product %s is not available", product.Name))
			}

			item := models.OrderItem{
				OrderID:   order.ID,
				ProductID: product.ID,
				Quantity:  it.Quantity,
				UnitPrice: product.Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			total += product.Price * float64(it.Quantity)
		}

		order.Total = total
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("cena_ukupno", total).Error
	})
	if txErr != nil {
		var httpErr *echo.HTTPError
		if errors.As(txErr, &httpErr) {
			return errorResponse(c, httpErr.Code, fmt.Errorf("%v", httpErr.Message))
		}
		return errorResponse(c, http.StatusInternalServerError, txErr)
	}

	h.publish(c, order.ID, map[string]any{
		"type":    "order_created",
		"orderID": order.ID,
		"total":   order.Total,
	})

	if err := h.DB.Preload("Customer").Preload("Items").First(&order, "id = ?", order.ID).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) GetOrders(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.Order{})
	if status := c.QueryParam("status"); status != "" {
		if !orderstatus.Valid(status) {
			return errorResponse(c, http.StatusBadRequest, fmt.Errorf("unknown status %q", status))
		}
		q = q.Where("status_porudzbine = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var orders []models.Order
	if err := q.Preload("Customer").Order("kreirano DESC").
		Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": orders,
		"meta": map[string]any{
			"page":  page,
			"size":  limit,
			"total": total,
		},
	})
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var order models.Order
	if err := h.DB.Preload("Customer").Preload("Items.Product").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, err)
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, order)
}

// PatchOrderStatus moves an order to another status. Delivered and cancelled
// orders are frozen; asking to move one is a conflict, not a server error.
func (h *OrderHandler) PatchOrderStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		Status string `json:"status_porudzbine"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var order models.Order
	if err := h.DB.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, err)
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	if err := orderstatus.Transition(order.Status, req.Status); err != nil {
		if errors.Is(err, orderstatus.ErrTerminal) {
			return errorResponse(c, http.StatusConflict, err)
		}
		return errorResponse(c, http.StatusBadRequest, err)
	}

	previous := order.Status
	order.Status = req.Status
	if err := h.DB.Model(&order).Update("status_porudzbine", req.Status).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.publish(c, order.ID, map[string]any{
		"type":    "order_status_changed",
		"orderID": order.ID,
		"from":    previous,
		"to":      order.Status,
	})

	return c.JSON(http.StatusOK, order)
}

// ExportOrders streams the current order book as CSV. A failed fetch aborts
// the export; a partial file is worse than no file.
func (h *OrderHandler) ExportOrders(c echo.Context) error {
	q := h.DB.Model(&models.Order{})
	if status := c.QueryParam("status"); status != "" {
		if !orderstatus.Valid(status) {
			return errorResponse(c, http.StatusBadRequest, fmt.Errorf("unknown status %q", status))
		}
		q = q.Where("status_porudzbine = ?", status)
	}

	var orders []models.Order
	if err := q.Preload("Customer").Order("kreirano DESC").Find(&orders).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	data, err := report.OrdersCSV(orders)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	filename := report.Filename("porudzbine", time.Now().UTC())
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}
