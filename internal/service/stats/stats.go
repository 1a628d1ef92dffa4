// Package stats derives dashboard figures from repository outputs. Every
// function is pure: inputs are never mutated and results are freshly allocated.
package stats

import (
	"math"
	"sort"
	"strings"

	"github.com/mamadbah2/lirio/internal/domain/models"
)

// Stock horizon and alert thresholds, as fractions of 30 days of consumption.
const (
	StockHorizonDays  = 30
	CriticalThreshold = 0.15
	LowThreshold      = 0.30
)

// RevenueForecast is the value of every animal at its pen's base price.
func RevenueForecast(pens []models.AnimalPen) float64 {
	var total float64
	for _, p := range pens {
		total += float64(p.CurrentCount) * p.BasePrice
	}
	return total
}

// AnimalCount sums current counts across pens.
func AnimalCount(pens []models.AnimalPen) int {
	var n int
	for _, p := range pens {
		n += p.CurrentCount
	}
	return n
}

// CountsByType sums current counts per pen type.
func CountsByType(pens []models.AnimalPen) map[string]int {
	counts := make(map[string]int)
	for _, p := range pens {
		counts[p.Type] += p.CurrentCount
	}
	return counts
}

// AveragePenValue is the rounded revenue forecast per pen, zero without pens.
func AveragePenValue(pens []models.AnimalPen) float64 {
	if len(pens) == 0 {
		return 0
	}
	return math.Round(RevenueForecast(pens) / float64(len(pens)))
}

// SortPensByType orders a copy of pens by type, then name.
func SortPensByType(pens []models.AnimalPen) []models.AnimalPen {
	sorted := append([]models.AnimalPen(nil), pens...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Type != sorted[j].Type {
			return sorted[i].Type < sorted[j].Type
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// StockDays is the whole number of days the stock lasts at the daily rate.
// ok is false when the rate is not positive and no estimate exists.
func StockDays(feed models.FeedInventory) (days int, ok bool) {
	if feed.DailyConsumptionKg <= 0 {
		return 0, false
	}
	return int(math.Floor(feed.CurrentStockKg / feed.DailyConsumptionKg)), true
}

// StockLevel is stock over 30 days of consumption, capped at 1. Without a
// positive daily rate any stock counts as full and an empty store as zero.
func StockLevel(feed models.FeedInventory) float64 {
	if feed.DailyConsumptionKg <= 0 {
		if feed.CurrentStockKg > 0 {
			return 1
		}
		return 0
	}
	level := feed.CurrentStockKg / (feed.DailyConsumptionKg * StockHorizonDays)
	if level < 0 {
		return 0
	}
	return math.Min(level, 1)
}

// StockStatus classifies a stock level.
func StockStatus(level float64) models.StockStatus {
	switch {
	case level < CriticalThreshold:
		return models.StockCritical
	case level < LowThreshold:
		return models.StockLow
	default:
		return models.StockHealthy
	}
}

// FeedStatusOf derives the stock view of one feed record.
func FeedStatusOf(feed models.FeedInventory) models.FeedStatus {
	level := StockLevel(feed)
	status := models.FeedStatus{Feed: feed, Level: level, Status: StockStatus(level)}
	if days, ok := StockDays(feed); ok {
		status.DaysRemaining = &days
	}
	return status
}

// FeedStatuses derives the stock view of every feed record, in input order.
func FeedStatuses(feeds []models.FeedInventory) []models.FeedStatus {
	out := make([]models.FeedStatus, 0, len(feeds))
	for _, f := range feeds {
		out = append(out, FeedStatusOf(f))
	}
	return out
}

// Alerts returns the statuses that are critical or low.
func Alerts(statuses []models.FeedStatus) []models.FeedStatus {
	var out []models.FeedStatus
	for _, s := range statuses {
		if s.Status != models.StockHealthy {
			out = append(out, s)
		}
	}
	return out
}

// InRange reports whether day lies within [start, end]. Days compare as
// YYYY-MM-DD strings; an empty bound is open.
func InRange(day, start, end string) bool {
	if start != "" && day < start {
		return false
	}
	if end != "" && day > end {
		return false
	}
	return true
}

// FilterTransactions keeps transactions whose creation day lies in range.
func FilterTransactions(txs []models.AnimalTransaction, start, end string) []models.AnimalTransaction {
	out := make([]models.AnimalTransaction, 0, len(txs))
	for _, tx := range txs {
		if InRange(models.DayOf(tx.CreatedAt.UTC()), start, end) {
			out = append(out, tx)
		}
	}
	return out
}

// FilterEggs keeps egg records whose date lies in range.
func FilterEggs(eggs []models.EggProduction, start, end string) []models.EggProduction {
	out := make([]models.EggProduction, 0, len(eggs))
	for _, e := range eggs {
		if InRange(e.Date, start, end) {
			out = append(out, e)
		}
	}
	return out
}

// FilterVegetables keeps harvests whose date lies in range.
func FilterVegetables(vegs []models.VegetableProduction, start, end string) []models.VegetableProduction {
	out := make([]models.VegetableProduction, 0, len(vegs))
	for _, v := range vegs {
		if InRange(v.Date, start, end) {
			out = append(out, v)
		}
	}
	return out
}

// GroupTransactionsByDay sums quantities per type for each creation day,
// ordered by day.
func GroupTransactionsByDay(txs []models.AnimalTransaction) []models.DayMovements {
	byDay := make(map[string]*models.DayMovements)
	for _, tx := range txs {
		day := models.DayOf(tx.CreatedAt.UTC())
		m, ok := byDay[day]
		if !ok {
			m = &models.DayMovements{Date: day}
			byDay[day] = m
		}
		addMovement(m, tx)
	}

	out := make([]models.DayMovements, 0, len(byDay))
	for _, m := range byDay {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// MovementTotals sums quantities per type over all transactions.
func MovementTotals(txs []models.AnimalTransaction) models.DayMovements {
	var m models.DayMovements
	for _, tx := range txs {
		addMovement(&m, tx)
	}
	return m
}

func addMovement(m *models.DayMovements, tx models.AnimalTransaction) {
	switch tx.TransactionType {
	case models.TransactionBirth:
		m.Births += tx.Quantity
	case models.TransactionPurchase:
		m.Purchases += tx.Quantity
	case models.TransactionSale:
		m.Sales += tx.Quantity
	case models.TransactionDeath:
		m.Deaths += tx.Quantity
	}
}

// EggsByDay sums egg quantities per production date, ordered by date.
func EggsByDay(eggs []models.EggProduction) []models.DayCount {
	byDay := make(map[string]int)
	for _, e := range eggs {
		byDay[e.Date] += e.Quantity
	}
	out := make([]models.DayCount, 0, len(byDay))
	for day, n := range byDay {
		out = append(out, models.DayCount{Date: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// VegetableValueByDay sums weight times price per harvest date, ordered by date.
func VegetableValueByDay(vegs []models.VegetableProduction) []models.DayValue {
	byDay := make(map[string]float64)
	for _, v := range vegs {
		byDay[v.Date] += v.Value()
	}
	return sortedValues(byDay)
}

// SalesRevenueByDay values each sale at its pen's current base price, per
// creation day. Sales whose pen no longer exists are skipped.
func SalesRevenueByDay(txs []models.AnimalTransaction, pens []models.AnimalPen) []models.DayValue {
	prices := make(map[string]float64, len(pens))
	for _, p := range pens {
		prices[p.ID] = p.BasePrice
	}

	byDay := make(map[string]float64)
	for _, tx := range txs {
		if tx.TransactionType != models.TransactionSale {
			continue
		}
		price, ok := prices[tx.PenID]
		if !ok {
			continue
		}
		byDay[models.DayOf(tx.CreatedAt.UTC())] += float64(tx.Quantity) * price
	}
	return sortedValues(byDay)
}

func sortedValues(byDay map[string]float64) []models.DayValue {
	out := make([]models.DayValue, 0, len(byDay))
	for day, v := range byDay {
		out = append(out, models.DayValue{Date: day, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// TotalEggs sums egg quantities.
func TotalEggs(eggs []models.EggProduction) int {
	var n int
	for _, e := range eggs {
		n += e.Quantity
	}
	return n
}

// TotalVegetables sums harvest weight and value.
func TotalVegetables(vegs []models.VegetableProduction) (kg, value float64) {
	for _, v := range vegs {
		kg += v.WeightKg
		value += v.Value()
	}
	return kg, value
}

// SumValues totals a day series.
func SumValues(series []models.DayValue) float64 {
	var total float64
	for _, p := range series {
		total += p.Value
	}
	return total
}

// Statistics builds the owner's dashboard for [start, end].
func Statistics(pens []models.AnimalPen, txs []models.AnimalTransaction, eggs []models.EggProduction, vegs []models.VegetableProduction, start, end string) models.Statistics {
	txs = FilterTransactions(txs, start, end)
	eggs = FilterEggs(eggs, start, end)
	vegs = FilterVegetables(vegs, start, end)

	sales := SalesRevenueByDay(txs, pens)
	vegSeries := VegetableValueByDay(vegs)

	return models.Statistics{
		Start:           start,
		End:             end,
		Movements:       GroupTransactionsByDay(txs),
		Eggs:            EggsByDay(eggs),
		Vegetables:      vegSeries,
		Sales:           sales,
		Totals:          MovementTotals(txs),
		TotalEggs:       TotalEggs(eggs),
		TotalVegetables: SumValues(vegSeries),
		TotalSales:      SumValues(sales),
	}
}

// JoinTransactions attaches pen type and name to each transaction.
func JoinTransactions(txs []models.AnimalTransaction, pens []models.AnimalPen) []models.AuditTransaction {
	byID := indexPens(pens)
	out := make([]models.AuditTransaction, 0, len(txs))
	for _, tx := range txs {
		row := models.AuditTransaction{AnimalTransaction: tx}
		if p, ok := byID[tx.PenID]; ok {
			row.PenType, row.PenName = p.Type, p.Name
		}
		out = append(out, row)
	}
	return out
}

// JoinEggs attaches pen type to each egg record.
func JoinEggs(eggs []models.EggProduction, pens []models.AnimalPen) []models.AuditEgg {
	byID := indexPens(pens)
	out := make([]models.AuditEgg, 0, len(eggs))
	for _, e := range eggs {
		row := models.AuditEgg{EggProduction: e}
		if p, ok := byID[e.PenID]; ok {
			row.PenType = p.Type
		}
		out = append(out, row)
	}
	return out
}

func indexPens(pens []models.AnimalPen) map[string]models.AnimalPen {
	byID := make(map[string]models.AnimalPen, len(pens))
	for _, p := range pens {
		byID[p.ID] = p
	}
	return byID
}

// Audit filters joined records by creation day and search text. The
// transaction-type filter applies to transactions only.
func Audit(txs []models.AuditTransaction, eggs []models.AuditEgg, vegs []models.VegetableProduction, f models.AuditFilter) models.AuditTrail {
	query := strings.ToLower(strings.TrimSpace(f.Search))
	trail := models.AuditTrail{
		Transactions: make([]models.AuditTransaction, 0, len(txs)),
		Eggs:         make([]models.AuditEgg, 0, len(eggs)),
		Vegetables:   make([]models.VegetableProduction, 0, len(vegs)),
	}

	for _, tx := range txs {
		if !InRange(models.DayOf(tx.CreatedAt.UTC()), f.Start, f.End) {
			continue
		}
		if !matches(query, tx.PenType, tx.PenName, string(tx.TransactionType), tx.CreatedBy) {
			continue
		}
		if f.TransactionType != "" && tx.TransactionType != f.TransactionType {
			continue
		}
		trail.Transactions = append(trail.Transactions, tx)
	}

	for _, e := range eggs {
		if InRange(models.DayOf(e.CreatedAt.UTC()), f.Start, f.End) && matches(query, e.PenType, e.CreatedBy) {
			trail.Eggs = append(trail.Eggs, e)
			trail.TotalEggs += e.Quantity
		}
	}

	for _, v := range vegs {
		if InRange(models.DayOf(v.CreatedAt.UTC()), f.Start, f.End) && matches(query, v.VegetableType, v.CreatedBy) {
			trail.Vegetables = append(trail.Vegetables, v)
			trail.TotalVegetablesValue += v.Value()
		}
	}
	return trail
}

func matches(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}
