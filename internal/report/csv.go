package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/mveljko/komoda-shop/internal/models"
	"github.com/mveljko/komoda-shop/internal/orderstatus"
	"github.com/mveljko/komoda-shop/internal/revenue"
)

// Header rows are localized; the dashboard opens these files directly.

var revenueHeader = []string{
	"ID",
	"Naziv proizvoda",
	"Šifra proizvoda",
	"Količina",
	"Nabavna cena",
	"Prodajna cena",
	"Ukupna zarada",
	"Datum prodaje",
}

var ordersHeader = []string{
	"ID",
	"Kupac",
	"Email kupca",
	"Status",
	"Ukupan iznos",
	"Datum kreiranja",
}

func RevenueCSV(records []revenue.Record) ([]byte, error) {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, revenueHeader)
	for _, r := range records {
		rows = append(rows, []string{
			r.ID.String(),
			r.NazivProizvoda,
			r.SifraProizvoda,
			strconv.Itoa(r.Kolicina),
			formatAmount(r.NabavnaCena),
			formatAmount(r.ProdajnaCena),
			formatAmount(r.UkupnaZarada),
			r.DatumProdaje.Format("02.01.2006."),
		})
	}
	return write(rows)
}

func OrdersCSV(orders []models.Order) ([]byte, error) {
	rows := make([][]string, 0, len(orders)+1)
	rows = append(rows, ordersHeader)
	for _, o := range orders {
		var kupac, email string
		if o.Customer != nil {
			kupac = o.Customer.FirstName + " " + o.Customer.LastName
			email = o.Customer.Email
		}
		rows = append(rows, []string{
			o.ID.String(),
			kupac,
			email,
			orderstatus.Label(o.Status),
			formatAmount(o.Total) + " RSD",
			o.CreatedAt.Format("02.01.2006. 15:04"),
		})
	}
	return write(rows)
}

func write(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename stamps the export with the current date, e.g. prihodi-2024-02-10.csv.
func Filename(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s.csv", prefix, now.Format("2006-01-02"))
}

// Exports keep full precision; rounding to whole currency units is a
// display concern of the dashboard.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
