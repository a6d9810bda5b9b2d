package revenue

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mveljko/komoda-shop/internal/logging"
	"github.com/mveljko/komoda-shop/internal/models"
	"github.com/mveljko/komoda-shop/internal/orderstatus"
)

// Record is one delivered line item with its profit figure. Prodajna cena is
// the price captured on the line item at checkout, nabavna cena comes from
// the product row at aggregation time.
type Record struct {
	ID             uuid.UUID `json:"id"`
	NazivProizvoda string    `json:"naziv_proizvoda"`
	SifraProizvoda string    `json:"sifra_proizvoda"`
	Kolicina       int       `json:"kolicina"`
	NabavnaCena    float64   `json:"nabavna_cena"`
	ProdajnaCena   float64   `json:"prodajna_cena"`
	UkupnaZarada   float64   `json:"ukupna_zarada"`
	DatumProdaje   time.Time `json:"datum_prodaje"`
}

type Totals struct {
	UkupnaZarada    float64 `json:"ukupna_zarada"`
	UkupnaProdaja   float64 `json:"ukupna_prodaja"`
	UkupnaNabavka   float64 `json:"ukupna_nabavka"`
	UkupnaLogistika float64 `json:"ukupna_logistika"`
	Dostava         float64 `json:"dostava"`
	Pakovanje       float64 `json:"pakovanje"`
}

type Report struct {
	Stavke []Record `json:"stavke"`
	Ukupno Totals   `json:"ukupno"`
}

// Range parses a [start, end] calendar-day pair into a half-open UTC
// interval; end is inclusive through the end of that day.
func Range(start, end string) (time.Time, time.Time, error) {
	from, err := time.ParseInLocation("2006-01-02", start, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q", start)
	}
	to, err := time.ParseInLocation("2006-01-02", end, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q", end)
	}
	toExclusive := to.AddDate(0, 0, 1)
	if !from.Before(toExclusive) {
		return time.Time{}, time.Time{}, fmt.Errorf("start date %q after end date %q", start, end)
	}
	return from, toExclusive, nil
}

type Aggregator struct {
	DB *gorm.DB
}

// Aggregate computes per-line-item profit for delivered orders created in
// [from, toExclusive), with Dostava/Pakovanje expenses of the same period
// split evenly across all delivered units. Line items whose product row no
// longer exists are skipped with a warning and excluded from every figure.
func (a *Aggregator) Aggregate(ctx context.Context, from, toExclusive time.Time) (*Report, error) {
	l := logging.FromContext(ctx)

	var orders []models.Order
	if err := a.DB.WithContext(ctx).
		Where("status_porudzbine = ? AND kreirano >= ? AND kreirano < ?", orderstatus.Isporucena, from, toExclusive).
		Order("kreirano DESC").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("fetch delivered orders: %w", err)
	}

	dostava, pakovanje, err := a.logisticsSums(ctx, from, toExclusive)
	if err != nil {
		return nil, err
	}

	// UkupnaLogistika is the logistics cost attributed to delivered units:
	// the full Dostava+Pakovanje sum once anything was delivered, zero
	// otherwise. Dostava/Pakovanje always carry the raw period sums.
	report := &Report{
		Stavke: []Record{},
		Ukupno: Totals{
			Dostava:   dostava,
			Pakovanje: pakovanje,
		},
	}
	if len(orders) == 0 {
		return report, nil
	}

	orderIDs := make([]uuid.UUID, len(orders))
	createdAt := make(map[uuid.UUID]time.Time, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
		createdAt[o.ID] = o.CreatedAt
	}

	var items []models.OrderItem
	if err := a.DB.WithContext(ctx).
		Preload("Product").
		Where("id_porudzbine IN ?", orderIDs).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("fetch order items: %w", err)
	}

	kept := make([]models.OrderItem, 0, len(items))
	totalUnits := 0
	for _, item := range items {
		if item.Product == nil {
			l.Warn("line item references missing product, excluded from revenue",
				"item_id", item.ID, "product_id", item.ProductID)
			continue
		}
		kept = append(kept, item)
		totalUnits += item.Quantity
	}

	var logisticsPerUnit float64
	if totalUnits > 0 {
		logisticsPerUnit = (dostava + pakovanje) / float64(totalUnits)
	}

	for _, item := range kept {
		qty := float64(item.Quantity)
		zarada := (item.UnitPrice-item.Product.CostBasis)*qty - logisticsPerUnit*qty

		sifra := item.Product.SKU
		if sifra == "" {
			sifra = "N/A"
		}

		report.Stavke = append(report.Stavke, Record{
			ID:             item.ID,
			NazivProizvoda: item.Product.Name,
			SifraProizvoda: sifra,
			Kolicina:       item.Quantity,
			NabavnaCena:    item.Product.CostBasis,
			ProdajnaCena:   item.UnitPrice,
			UkupnaZarada:   zarada,
			DatumProdaje:   createdAt[item.OrderID],
		})

		report.Ukupno.UkupnaZarada += zarada
		report.Ukupno.UkupnaProdaja += item.UnitPrice * qty
		report.Ukupno.UkupnaNabavka += item.Product.CostBasis * qty
		report.Ukupno.UkupnaLogistika += logisticsPerUnit * qty
	}

	sort.SliceStable(report.Stavke, func(i, j int) bool {
		return report.Stavke[i].DatumProdaje.After(report.Stavke[j].DatumProdaje)
	})

	return report, nil
}

func (a *Aggregator) logisticsSums(ctx context.Context, from, toExclusive time.Time) (dostava, pakovanje float64, err error) {
	var rows []struct {
		Kategorija string
		Iznos      float64
	}
	if err := a.DB.WithContext(ctx).
		Model(&models.Expense{}).
		Select("kategorija, SUM(iznos) AS iznos").
		Where("kategorija IN ? AND datum >= ? AND datum < ?",
			[]string{models.ExpenseDelivery, models.ExpensePackaging}, from, toExclusive).
		Group("kategorija").
		Scan(&rows).Error; err != nil {
		return 0, 0, fmt.Errorf("fetch logistics expenses: %w", err)
	}

	for _, r := range rows {
		switch r.Kategorija {
		case models.ExpenseDelivery:
			dostava = r.Iznos
		case models.ExpensePackaging:
			pakovanje = r.Iznos
		}
	}
	return dostava, pakovanje, nil
}
