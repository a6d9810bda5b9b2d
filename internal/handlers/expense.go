package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mveljko/komoda-shop/internal/models"
	"github.com/mveljko/komoda-shop/internal/revenue"
	"github.com/mveljko/komoda-shop/internal/util"
)

type ExpenseHandler struct {
	DB *gorm.DB
}

func (h *ExpenseHandler) GetExpenseCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, models.ExpenseCategories())
}

func (h *ExpenseHandler) GetExpenses(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	start, end := dateRangeParams(c)
	from, toExclusive, err := revenue.Range(start, end)
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	kat := c.QueryParam("kategorija")
	if kat != "" && !models.ValidExpenseCategory(kat) {
		return errorResponse(c, http.StatusBadRequest, fmt.Errorf("unknown kategorija %q", kat))
	}
	search := strings.TrimSpace(c.QueryParam("q"))

	filtered := func() *gorm.DB {
		q := h.DB.Model(&models.Expense{}).
			Where("datum >= ? AND datum < ?", from, toExclusive)
		if kat != "" {
			q = q.Where("kategorija = ?", kat)
		}
		if search != "" {
			pattern := "%" + strings.ToLower(search) + "%"
			q = q.Where("LOWER(naziv) LIKE ? OR LOWER(opis) LIKE ?", pattern, pattern)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var sum float64
	if err := filtered().Select("COALESCE(SUM(iznos), 0)").Scan(&sum).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var items []models.Expense
	if err := filtered().Order("datum DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":  page,
			"size":  limit,
			"total": total,
			"iznos": sum,
		},
	})
}

func (h *ExpenseHandler) GetExpense(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var expense models.Expense
	if err := h.DB.First(&expense, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, err)
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, expense)
}

type expenseRequest struct {
	Name     *string  `json:"naziv"`
	Note     *string  `json:"opis"`
	Amount   *float64 `json:"iznos"`
	Category *string  `json:"kategorija"`
	Date     *string  `json:"datum"`
}

func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	var req expenseRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if req.Name == nil || *req.Name == "" {
		return errorResponse(c, http.StatusBadRequest, errors.New("naziv required"))
	}
	if req.Amount == nil || *req.Amount < 0 {
		return errorResponse(c, http.StatusBadRequest, errors.New("iznos must be >= 0"))
	}
	if req.Category == nil || !models.ValidExpenseCategory(*req.Category) {
		return errorResponse(c, http.StatusBadRequest, errors.New("unknown kategorija"))
	}

	datum := time.Now().UTC()
	if req.Date != nil && *req.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", *req.Date, time.UTC)
		if err != nil {
			return errorResponse(c, http.StatusBadRequest, fmt.Errorf("invalid datum %q", *req.Date))
		}
		datum = parsed
	}

	expense := models.Expense{
		Name:     *req.Name,
		Amount:   *req.Amount,
		Category: *req.Category,
		Date:     datum,
	}
	if req.Note != nil {
		expense.Note = *req.Note
	}

	if err := h.DB.Create(&expense).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusCreated, expense)
}

func (h *ExpenseHandler) PatchExpense(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req expenseRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var expense models.Expense
	if err := h.DB.First(&expense, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, err)
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	if req.Name != nil {
		if *req.Name == "" {
			return errorResponse(c, http.StatusBadRequest, errors.New("naziv cannot be empty"))
		}
		expense.Name = *req.Name
	}
	if req.Amount != nil {
		if *req.Amount < 0 {
			return errorResponse(c, http.StatusBadRequest, errors.New("iznos must be >= 0"))
		}
		expense.Amount = *req.Amount
	}
	if req.Category != nil {
		if !models.ValidExpenseCategory(*req.Category) {
			return errorResponse(c, http.StatusBadRequest, errors.New("unknown kategorija"))
		}
		expense.Category = *req.Category
	}
	if req.Date != nil {
		parsed, err := time.ParseInLocation("2006-01-02", *req.Date, time.UTC)
		if err != nil {
			return errorResponse(c, http.StatusBadRequest, fmt.Errorf("invalid datum %q", *req.Date))
		}
		expense.Date = parsed
	}
	if req.Note != nil {
		expense.Note = *req.Note
	}

	if err := h.DB.Save(&expense).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, expense)
}

func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	res := h.DB.Delete(&models.Expense{}, "id = ?", id)
	if res.Error != nil {
		return errorResponse(c, http.StatusInternalServerError, res.Error)
	}
	if res.RowsAffected == 0 {
		return errorResponse(c, http.StatusNotFound, gorm.ErrRecordNotFound)
	}
	return c.NoContent(http.StatusNoContent)
}
