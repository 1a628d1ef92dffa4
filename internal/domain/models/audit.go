package models

// AuditTransaction is a transaction joined with its pen. PenType and PenName
// are empty when the pen no longer exists.
type AuditTransaction struct {
	AnimalTransaction
	PenType string `json:"pen_type,omitempty"`
	PenName string `json:"pen_name,omitempty"`
}

// AuditEgg is an egg record joined with its pen's type.
type AuditEgg struct {
	EggProduction
	PenType string `json:"pen_type,omitempty"`
}

// AuditFilter narrows the owner's audit trail. Empty fields do not filter.
type AuditFilter struct {
	Start           string          `form:"start" json:"start"`
	End             string          `form:"end" json:"end"`
	Search          string          `form:"q" json:"search"`
	TransactionType TransactionType `form:"type" json:"transaction_type"`
}

// AuditTrail is the filtered audit view with its totals.
type AuditTrail struct {
	Transactions         []AuditTransaction    `json:"transactions"`
	Eggs                 []AuditEgg            `json:"eggs"`
	Vegetables           []VegetableProduction `json:"vegetables"`
	TotalEggs            int                   `json:"total_eggs"`
	TotalVegetablesValue float64               `json:"total_vegetables_value"`
}

// DayMovements sums transaction quantities per type for one calendar day.
type DayMovements struct {
	Date      string `json:"date"`
	Births    int    `json:"births"`
	Purchases int    `json:"purchases"`
	Sales     int    `json:"sales"`
	Deaths    int    `json:"deaths"`
}

// DayCount is a per-day integer series point.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DayValue is a per-day monetary series point.
type DayValue struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Statistics is the owner's date-range dashboard.
type Statistics struct {
	Start           string         `json:"start"`
	End             string         `json:"end"`
	Movements       []DayMovements `json:"movements"`
	Eggs            []DayCount     `json:"eggs"`
	Vegetables      []DayValue     `json:"vegetables"`
	Sales           []DayValue     `json:"sales"`
	Totals          DayMovements   `json:"totals"`
	TotalEggs       int            `json:"total_eggs"`
	TotalVegetables float64        `json:"total_vegetables_value"`
	TotalSales      float64        `json:"total_sales_revenue"`
}

// Overview is the operator dashboard.
type Overview struct {
	Pens            []AnimalPen    `json:"pens"`
	AnimalCount     int            `json:"animal_count"`
	CountsByType    map[string]int `json:"counts_by_type"`
	RevenueForecast float64        `json:"revenue_forecast"`
	AveragePenValue float64        `json:"average_pen_value"`
	Feeds           []FeedStatus   `json:"feeds"`
}
