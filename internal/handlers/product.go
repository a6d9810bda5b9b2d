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
	"github.com/mveljko/komoda-shop/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, mykafka.TopicProductEvents, fmt.Sprint(event["productID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var product models.Product
	if err := h.DB.Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, err)
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.Product{})

	if kat := c.QueryParam("kategorija"); kat != "" {
		katID, err := uuid.Parse(kat)
		if err != nil {
			return errorResponse(c, http.StatusBadRequest, err)
		}
		q = q.Where("id_kategorije = ?", katID)
	}
	if c.QueryParam("novi") == "true" {
		q = q.Where("novi_proizvod = ?", true)
	}
	if c.QueryParam("najprodavaniji") == "true" {
		q = q.Where("najprodavaniji_proizvod = ?", true)
	}
	if c.QueryParam("dostupni") == "true" {
		q = q.Where("dostupnost = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var items []models.Product
	if err := q.Preload("Category").Order("kreirano DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

type productRequest struct {
	SKU         *string    `json:"sku"`
	Name        *string    `json:"naziv_proizvoda"`
	Description *string    `json:"opis"`
	Price       *float64   `json:"cena"`
	CostBasis   *float64   `json:"nabavna_cena"`
	Available   *bool      `json:"dostupnost"`
	IsNew       *bool      `json:"novi_proizvod"`
	BestSeller  *bool      `json:"najprodavaniji_proizvod"`
	CategoryID  *uuid.UUID `json:"id_kategorije"`
	ImageURL    *string    `json:"img_url"`
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if req.Name == nil || *req.Name == "" {
		return errorResponse(c, http.StatusBadRequest, errors.New("naziv_proizvoda required"))
	}
	if req.Price == nil || *req.Price < 0 {
		return errorResponse(c, http.StatusBadRequest, errors.New("cena must be >= 0"))
	}
	if req.CostBasis != nil && *req.CostBasis < 0 {
		return errorResponse(c, http.StatusBadRequest, errors.New("nabavna_cena must be >= 0"))
	}
	if req.CategoryID == nil || *req.CategoryID == uuid.Nil {
		return errorResponse(c, http.StatusBadRequest, errors.New("id_kategorije required"))
	}

	var category models.Category
	if err := h.DB.First(&category, "id = ?", *req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusBadRequest, errors.New("unknown id_kategorije"))
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	prod := models.Product{
		Name:       *req.Name,
		Price:      *req.Price,
		CategoryID: *req.CategoryID,
		Available:  true,
	}
	if req.SKU != nil {
		prod.SKU = *req.SKU
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.CostBasis != nil {
		prod.CostBasis = *req.CostBasis
	}
	if req.Available != nil {
		prod.Available = *req.Available
	}
	if req.IsNew != nil {
		prod.IsNew = *req.IsNew
	}
	if req.BestSeller != nil {
		prod.BestSeller = *req.BestSeller
	}
	if req.ImageURL != nil {
		prod.ImageURL = *req.ImageURL
	}

	if err := h.DB.Create(&prod).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.publish(c, map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	})

	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var prod models.Product
	if err := h.DB.First(&prod, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, err)
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	if req.Name != nil {
		if *req.Name == "" {
			return errorResponse(c, http.StatusBadRequest, errors.New("naziv_proizvoda cannot be empty"))
		}
		prod.Name = *req.Name
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return errorResponse(c, http.StatusBadRequest, errors.New("cena must be >= 0"))
		}
		prod.Price = *req.Price
	}
	if req.CostBasis != nil {
		if *req.CostBasis < 0 {
			return errorResponse(c, http.StatusBadRequest, errors.New("nabavna_cena must be >= 0"))
		}
		prod.CostBasis = *req.CostBasis
	}
	if req.CategoryID != nil {
		var category models.Category
		if err := h.DB.First(&category, "id = ?", *req.CategoryID).Error; err != nil {
			return errorResponse(c, http.StatusBadRequest, errors.New("unknown id_kategorije"))
		}
		prod.CategoryID = *req.CategoryID
	}
	if req.SKU != nil {
		prod.SKU = *req.SKU
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.Available != nil {
		prod.Available = *req.Available
	}
	if req.IsNew != nil {
		prod.IsNew = *req.IsNew
	}
	if req.BestSeller != nil {
		prod.BestSeller = *req.BestSeller
	}
	if req.ImageURL != nil {
		prod.ImageURL = *req.ImageURL
	}

	if err := h.DB.Save(&prod).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	h.publish(c, map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
	})

	return c.JSON(http.StatusOK, prod)
}

// DeleteProduct hard-deletes the row. Historical order line items keep their
// captured price and are skipped by revenue aggregation from then on.
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	res := h.DB.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return errorResponse(c, http.StatusInternalServerError, res.Error)
	}
	if res.RowsAffected == 0 {
		return errorResponse(c, http.StatusNotFound, gorm.ErrRecordNotFound)
	}

	h.publish(c, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})

	return c.NoContent(http.StatusNoContent)
}
