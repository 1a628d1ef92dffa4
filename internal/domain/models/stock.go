package models

// StockStatus classifies a feed type's stock against a 30-day horizon.
type StockStatus string

const (
	StockCritical StockStatus = "critical"
	StockLow      StockStatus = "low"
	StockHealthy  StockStatus = "healthy"
)

// FeedStatus is the derived view of one feed inventory record.
type FeedStatus struct {
	Feed FeedInventory `json:"feed"`
	// DaysRemaining is nil when daily consumption is zero: no meaningful estimate exists.
	DaysRemaining *int        `json:"days_remaining"`
	Level         float64     `json:"level"`
	Status        StockStatus `json:"status"`
}
