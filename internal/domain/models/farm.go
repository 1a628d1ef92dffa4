package models

import "time"

// DateLayout is the calendar-day format used for production dates and range filters.
const DateLayout = "2006-01-02"

// DayOf formats t as a calendar-day string.
func DayOf(t time.Time) string {
	return t.Format(DateLayout)
}

// TransactionType enumerates the animal count movements.
type TransactionType string

const (
	TransactionBirth    TransactionType = "birth"
	TransactionPurchase TransactionType = "purchase"
	TransactionSale     TransactionType = "sale"
	TransactionDeath    TransactionType = "death"
)

// Valid reports whether t is one of the four known movements.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionBirth, TransactionPurchase, TransactionSale, TransactionDeath:
		return true
	}
	return false
}

// Increases reports whether the movement adds animals to a pen.
func (t TransactionType) Increases() bool {
	return t == TransactionBirth || t == TransactionPurchase
}

// Role gates which views a user reaches.
type Role string

const (
	RoleOperator Role = "operator"
	RoleOwner    Role = "owner"
)

// AnimalPen is a housing unit holding a count of one animal type.
type AnimalPen struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Name         string    `json:"name"`
	CurrentCount int       `json:"current_count"`
	BasePrice    float64   `json:"base_price"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewPen carries the caller-supplied fields of a pen.
type NewPen struct {
	Type         string  `json:"type"`
	Name         string  `json:"name"`
	CurrentCount int     `json:"current_count"`
	BasePrice    float64 `json:"base_price"`
}

// PenPatch overwrites the non-nil fields of a stored pen.
type PenPatch struct {
	Type         *string  `json:"type,omitempty"`
	Name         *string  `json:"name,omitempty"`
	CurrentCount *int     `json:"current_count,omitempty"`
	BasePrice    *float64 `json:"base_price,omitempty"`
}

// Apply merges the patch over p.
func (pp PenPatch) Apply(p AnimalPen) AnimalPen {
	if pp.Type != nil {
		p.Type = *pp.Type
	}
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.CurrentCount != nil {
		p.CurrentCount = *pp.CurrentCount
	}
	if pp.BasePrice != nil {
		p.BasePrice = *pp.BasePrice
	}
	return p
}

// FeedInventory tracks stock for one feed type. FeedType is unique.
type FeedInventory struct {
	ID                 string    `json:"id"`
	FeedType           string    `json:"feed_type"`
	CurrentStockKg     float64   `json:"current_stock_kg"`
	DailyConsumptionKg float64   `json:"daily_consumption_kg"`
	LastUpdated        time.Time `json:"last_updated"`
}

// NewFeed carries the caller-supplied fields of a feed inventory record.
type NewFeed struct {
	FeedType           string  `json:"feed_type"`
	CurrentStockKg     float64 `json:"current_stock_kg"`
	DailyConsumptionKg float64 `json:"daily_consumption_kg"`
}

// FeedPatch overwrites the non-nil fields of a stored feed record.
type FeedPatch struct {
	FeedType           *string  `json:"feed_type,omitempty"`
	CurrentStockKg     *float64 `json:"current_stock_kg,omitempty"`
	DailyConsumptionKg *float64 `json:"daily_consumption_kg,omitempty"`
}

// Apply merges the patch over f.
func (fp FeedPatch) Apply(f FeedInventory) FeedInventory {
	if fp.FeedType != nil {
		f.FeedType = *fp.FeedType
	}
	if fp.CurrentStockKg != nil {
		f.CurrentStockKg = *fp.CurrentStockKg
	}
	if fp.DailyConsumptionKg != nil {
		f.DailyConsumptionKg = *fp.DailyConsumptionKg
	}
	return f
}

// AnimalTransaction is an append-only record of a pen count change.
type AnimalTransaction struct {
	ID              string          `json:"id"`
	PenID           string          `json:"pen_id"`
	TransactionType TransactionType `json:"transaction_type"`
	Quantity        int             `json:"quantity"`
	Notes           string          `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	CreatedBy       string          `json:"created_by"`
}

// NewTransaction carries the caller-supplied fields of a transaction.
type NewTransaction struct {
	PenID           string          `json:"pen_id"`
	TransactionType TransactionType `json:"transaction_type"`
	Quantity        int             `json:"quantity"`
	Notes           string          `json:"notes"`
	CreatedBy       string          `json:"created_by"`
}

// EggProduction is an append-only record of eggs collected from a pen on a day.
type EggProduction struct {
	ID        string    `json:"id"`
	PenID     string    `json:"pen_id"`
	Quantity  int       `json:"quantity"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`
}

// NewEggProduction carries the caller-supplied fields of an egg record.
type NewEggProduction struct {
	PenID     string `json:"pen_id"`
	Quantity  int    `json:"quantity"`
	Date      string `json:"date"`
	CreatedBy string `json:"created_by"`
}

// VegetableProduction is an append-only record of a vegetable harvest.
type VegetableProduction struct {
	ID            string    `json:"id"`
	VegetableType string    `json:"vegetable_type"`
	WeightKg      float64   `json:"weight_kg"`
	BasePrice     float64   `json:"base_price"`
	Date          string    `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
	CreatedBy     string    `json:"created_by"`
}

// Value is the harvest's worth at its per-kg base price.
func (v VegetableProduction) Value() float64 {
	return v.WeightKg * v.BasePrice
}

// NewVegetableProduction carries the caller-supplied fields of a harvest record.
type NewVegetableProduction struct {
	VegetableType string  `json:"vegetable_type"`
	WeightKg      float64 `json:"weight_kg"`
	BasePrice     float64 `json:"base_price"`
	Date          string  `json:"date"`
	CreatedBy     string  `json:"created_by"`
}

// AppUser is static seed data.
type AppUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
