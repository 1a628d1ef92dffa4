package models

import "time"

// DailyReport is the end-of-day snapshot archived to MongoDB.
type DailyReport struct {
	Date            string    `bson:"date" json:"date"`
	EggsCollected   int       `bson:"eggs_collected" json:"eggs_collected"`
	VegetablesKg    float64   `bson:"vegetables_kg" json:"vegetables_kg"`
	VegetablesValue float64   `bson:"vegetables_value" json:"vegetables_value"`
	Births          int       `bson:"births" json:"births"`
	Purchases       int       `bson:"purchases" json:"purchases"`
	Sales           int       `bson:"sales" json:"sales"`
	Deaths          int       `bson:"deaths" json:"deaths"`
	SalesRevenue    float64   `bson:"sales_revenue" json:"sales_revenue"`
	RevenueForecast float64   `bson:"revenue_forecast" json:"revenue_forecast"`
	AnimalCount     int       `bson:"animal_count" json:"animal_count"`
	FeedAlerts      []string  `bson:"feed_alerts" json:"feed_alerts"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
}
