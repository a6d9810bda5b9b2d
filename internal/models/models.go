package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Column names mirror the store schema the storefront and the admin
// dashboard were written against (kategorije, proizvodi, kupci,
// porudzbine, stavke_porudzbine, troskovi).

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"             json:"id"`
	Name        string    `gorm:"column:naziv_kategorije;not null" json:"naziv_kategorije"`
	Description string    `gorm:"column:opis_kategorije"           json:"opis_kategorije"`
	CreatedAt   time.Time `gorm:"column:kreirano"                  json:"kreirano"`
	UpdatedAt   time.Time `gorm:"column:azurirano"                 json:"azurirano"`
}

func (Category) TableName() string { return "kategorije" }

func (k *Category) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"                         json:"id"`
	SKU         string    `gorm:"column:sku"                                   json:"sku"`
	Name        string    `gorm:"column:naziv_proizvoda;not null"              json:"naziv_proizvoda"`
	Description string    `gorm:"column:opis"                                  json:"opis"`
	Price       float64   `gorm:"column:cena;not null"                         json:"cena"`
	CostBasis   float64   `gorm:"column:nabavna_cena"                          json:"nabavna_cena"`
	Available   bool      `gorm:"column:dostupnost;default:true"               json:"dostupnost"`
	IsNew       bool      `gorm:"column:novi_proizvod;default:false"           json:"novi_proizvod"`
	BestSeller  bool      `gorm:"column:najprodavaniji_proizvod;default:false" json:"najprodavaniji_proizvod"`
	CategoryID  uuid.UUID `gorm:"column:id_kategorije;type:uuid;index"         json:"id_kategorije"`
	ImageURL    string    `gorm:"column:img_url"                               json:"img_url"`
	CreatedAt   time.Time `gorm:"column:kreirano"                              json:"kreirano"`
	UpdatedAt   time.Time `gorm:"column:azurirano"                             json:"azurirano"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"kategorije,omitempty"`
}

func (Product) TableName() string { return "proizvodi" }

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Customer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"          json:"id"`
	FirstName  string    `gorm:"column:ime_kupca;not null"     json:"ime_kupca"`
	LastName   string    `gorm:"column:prezime_kupca;not null" json:"prezime_kupca"`
	Phone      string    `gorm:"column:telefon;not null"       json:"telefon"`
	Email      string    `gorm:"column:email"                  json:"email"`
	Address    string    `gorm:"column:adresa;not null"        json:"adresa"`
	City       string    `gorm:"column:mesto;not null"         json:"mesto"`
	PostalCode string    `gorm:"column:id_post"                json:"id_post"`
	CreatedAt  time.Time `gorm:"column:kreirano"               json:"kreirano"`
}

func (Customer) TableName() string { return "kupci" }

func (k *Customer) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}

type Order struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"                    json:"id"`
	CustomerID uuid.UUID `gorm:"column:id_kupca;type:uuid;index"         json:"id_kupca"`
	Total      float64   `gorm:"column:cena_ukupno;not null"             json:"cena_ukupno"`
	Status     string    `gorm:"column:status_porudzbine;not null;index" json:"status_porudzbine"`
	CreatedAt  time.Time `gorm:"column:kreirano;index"                   json:"kreirano"`
	UpdatedAt  time.Time `gorm:"column:azurirano"                        json:"azurirano"`

	Customer *Customer   `gorm:"foreignKey:CustomerID" json:"kupci,omitempty"`
	Items    []OrderItem `gorm:"foreignKey:OrderID"    json:"stavke,omitempty"`
}

func (Order) TableName() string { return "porudzbine" }

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem captures the unit sale price at checkout time, so later price
// edits or product deletion never change historical orders.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                      json:"id"`
	OrderID   uuid.UUID `gorm:"column:id_porudzbine;type:uuid;index"      json:"id_porudzbine"`
	ProductID uuid.UUID `gorm:"column:id_proizvoda;type:uuid;index"       json:"id_proizvoda"`
	Quantity  int       `gorm:"column:kolicina;not null;check:kolicina>0" json:"kolicina"`
	UnitPrice float64   `gorm:"column:cena;not null"                      json:"cena"`

	Product *Product `gorm:"foreignKey:ProductID" json:"proizvodi,omitempty"`
}

func (OrderItem) TableName() string { return "stavke_porudzbine" }

func (s *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

const (
	ExpenseMarketing   = "Marketing"
	ExpensePayroll     = "Plate"
	ExpenseMaintenance = "Održavanje"
	ExpenseUtilities   = "Komunalije"
	ExpenseDelivery    = "Dostava"
	ExpensePackaging   = "Pakovanje"
	ExpenseOther       = "Ostalo"
)

func ExpenseCategories() []string {
	return []string{
		ExpenseMarketing,
		ExpensePayroll,
		ExpenseMaintenance,
		ExpenseUtilities,
		ExpenseDelivery,
		ExpensePackaging,
		ExpenseOther,
	}
}

func ValidExpenseCategory(kategorija string) bool {
	for _, k := range ExpenseCategories() {
		if k == kategorija {
			return true
		}
	}
	return false
}

type Expense struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"             json:"id"`
	Name      string    `gorm:"column:naziv;not null"            json:"naziv"`
	Note      string    `gorm:"column:opis"                      json:"opis"`
	Amount    float64   `gorm:"column:iznos;not null"            json:"iznos"`
	Category  string    `gorm:"column:kategorija;not null;index" json:"kategorija"`
	Date      time.Time `gorm:"column:datum;index"               json:"datum"`
	CreatedAt time.Time `gorm:"column:kreirano"                  json:"kreirano"`
	UpdatedAt time.Time `gorm:"column:azurirano"                 json:"azurirano"`
}

func (Expense) TableName() string { return "troskovi" }

func (t *Expense) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	Role      string `gorm:"not null"        json:"role"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}
