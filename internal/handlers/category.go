package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mveljko/komoda-shop/internal/models"
)

type CategoryHandler struct {
	DB *gorm.DB
}

func (h *CategoryHandler) GetCategories(c echo.Context) error {
	var items []models.Category
	if err := h.DB.Order("naziv_kategorije ASC").Find(&items).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CategoryHandler) GetCategory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var category models.Category
	if err := h.DB.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, err)
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, category)
}

type categoryRequest struct {
	Name        *string `json:"naziv_kategorije"`
	Description *string `json:"opis_kategorije"`
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.Name == nil || *req.Name == "" {
		return errorResponse(c, http.StatusBadRequest, errors.New("naziv_kategorije required"))
	}

	category := models.Category{Name: *req.Name}
	if req.Description != nil {
		category.Description = *req.Description
	}

	if err := h.DB.Create(&category).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusCreated, category)
}

func (h *CategoryHandler) PatchCategory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var category models.Category
	if err := h.DB.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, err)
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	if req.Name != nil {
		if *req.Name == "" {
			return errorResponse(c, http.StatusBadRequest, errors.New("naziv_kategorije cannot be empty"))
		}
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}

	if err := h.DB.Save(&category).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory refuses while products still reference the category.
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var inUse int64
	if err := h.DB.Model(&models.Product{}).Where("id_kategorije = ?", id).Count(&inUse).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	if inUse > 0 {
		return errorResponse(c, http.StatusConflict, errors.New("category still has products"))
	}

	res := h.DB.Delete(&models.Category{}, "id = ?", id)
	if res.Error != nil {
		return errorResponse(c, http.StatusInternalServerError, res.Error)
	}
	if res.RowsAffected == 0 {
		return errorResponse(c, http.StatusNotFound, gorm.ErrRecordNotFound)
	}
	return c.NoContent(http.StatusNoContent)
}
