package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mveljko/komoda-shop/internal/models"
	"github.com/mveljko/komoda-shop/internal/orderstatus"
	"github.com/mveljko/komoda-shop/internal/report"
	"github.com/mveljko/komoda-shop/internal/revenue"
)

type ReportHandler struct {
	DB *gorm.DB
}

func (h *ReportHandler) aggregate(c echo.Context) (*revenue.Report, error) {
	start, end := dateRangeParams(c)
	from, toExclusive, err := revenue.Range(start, end)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	agg := revenue.Aggregator{DB: h.DB}
	rep, err := agg.Aggregate(c.Request().Context(), from, toExclusive)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return rep, nil
}

// GetRevenue returns the revenue table and its totals. The q filter narrows
// the visible rows by product name or SKU; totals stay whole-range, so the
// numbers do not jump around while typing in the search box.
func (h *ReportHandler) GetRevenue(c echo.Context) error {
	rep, err := h.aggregate(c)
	if err != nil {
		return err
	}

	if search := strings.TrimSpace(c.QueryParam("q")); search != "" {
		needle := strings.ToLower(search)
		filtered := make([]revenue.Record, 0, len(rep.Stavke))
		for _, r := range rep.Stavke {
			if strings.Contains(strings.ToLower(r.NazivProizvoda), needle) ||
				strings.Contains(strings.ToLower(r.SifraProizvoda), needle) {
				filtered = append(filtered, r)
			}
		}
		rep.Stavke = filtered
	}

	return c.JSON(http.StatusOK, rep)
}

// ExportRevenue writes the revenue table as CSV. Any aggregation failure
// aborts the download instead of producing a half-empty file.
func (h *ReportHandler) ExportRevenue(c echo.Context) error {
	rep, err := h.aggregate(c)
	if err != nil {
		return err
	}

	data, err := report.RevenueCSV(rep.Stavke)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	filename := report.Filename("prihodi", time.Now().UTC())
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

// GetStatistics backs the admin dashboard landing page: the headline card
// figures (orders, customers and gross revenue in range, product count
// overall), profit totals for the range, a per-day gross revenue series and
// the five newest orders of the range.
func (h *ReportHandler) GetStatistics(c echo.Context) error {
	rep, err := h.aggregate(c)
	if err != nil {
		return err
	}

	start, end := dateRangeParams(c)
	from, toExclusive, err := revenue.Range(start, end)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var orders []models.Order
	if err := h.DB.
		Where("kreirano >= ? AND kreirano < ?", from, toExclusive).
		Find(&orders).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var customerCount int64
	if err := h.DB.Model(&models.Customer{}).
		Where("kreirano >= ? AND kreirano < ?", from, toExclusive).
		Count(&customerCount).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	// product count is deliberately not range-filtered, the card shows the
	// whole catalog
	var productCount int64
	if err := h.DB.Model(&models.Product{}).Count(&productCount).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	// gross revenue is Σ cena_ukupno over every order in range, regardless
	// of status; profit figures for delivered orders live in "ukupno"
	var grossRevenue float64
	byDay := map[string]float64{}
	for _, o := range orders {
		grossRevenue += o.Total
		byDay[o.CreatedAt.Format("2006-01-02")] += o.Total
	}

	type dailyBucket struct {
		Datum  string  `json:"datum"`
		Prihod float64 `json:"prihod"`
	}
	days := make([]dailyBucket, 0)
	for d := from; d.Before(toExclusive); d = d.AddDate(0, 0, 1) {
		datum := d.Format("2006-01-02")
		days = append(days, dailyBucket{Datum: datum, Prihod: byDay[datum]})
	}

	var counts []struct {
		Status string
		Broj   int64
	}
	if err := h.DB.Model(&models.Order{}).
		Select("status_porudzbine AS status, COUNT(*) AS broj").
		Group("status_porudzbine").
		Scan(&counts).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	statusCounts := map[string]int64{}
	for _, s := range orderstatus.All() {
		statusCounts[s] = 0
	}
	for _, row := range counts {
		statusCounts[row.Status] = row.Broj
	}

	var recent []models.Order
	if err := h.DB.Preload("Customer").
		Where("kreirano >= ? AND kreirano < ?", from, toExclusive).
		Order("kreirano DESC").Limit(5).Find(&recent).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"broj_porudzbina":      len(orders),
		"broj_kupaca":          customerCount,
		"broj_proizvoda":       productCount,
		"ukupan_prihod":        grossRevenue,
		"ukupno":               rep.Ukupno,
		"prihod_po_danima":     days,
		"porudzbine_status":    statusCounts,
		"poslednje_porudzbine": recent,
	})
}
