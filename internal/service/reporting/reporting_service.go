package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/lirio/internal/domain/models"
	farmrepo "github.com/mamadbah2/lirio/internal/repository/farm"
	"github.com/mamadbah2/lirio/internal/repository/mongodb"
	"github.com/mamadbah2/lirio/internal/service/stats"
)

const (
	// AuditWindow is how many of the latest records of each log the audit reads.
	AuditWindow = 50
	// DefaultStatisticsDays is the range used when no start date is given.
	DefaultStatisticsDays = 30
)

var (
	ErrInvalidDate     = errors.New("dates must be YYYY-MM-DD")
	ErrInvalidRange    = errors.New("start date is after end date")
	ErrArchiveDisabled = errors.New("report archive not configured")
	ErrInvalidFilter   = errors.New("invalid audit filter")
)

// Service derives owner-facing reports from the farm repositories.
type Service struct {
	repos   *farmrepo.Repositories
	archive mongodb.ReportArchive
	now     func() time.Time
	logger  *zap.Logger
}

// NewService wires a reporting service. archive may be nil.
func NewService(repos *farmrepo.Repositories, archive mongodb.ReportArchive, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repos: repos, archive: archive, now: time.Now, logger: logger}
}

// Today is the current calendar day in UTC, matching record dates.
func (s *Service) Today() string {
	return models.DayOf(s.now().UTC())
}

// ResolveRange validates a date range. A missing end is today and a missing
// start is DefaultStatisticsDays before end.
func (s *Service) ResolveRange(start, end string) (string, string, error) {
	if end == "" {
		end = s.Today()
	}
	endDay, err := time.Parse(models.DateLayout, end)
	if err != nil {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidDate, end)
	}
	if start == "" {
		start = models.DayOf(endDay.AddDate(0, 0, -DefaultStatisticsDays))
	}
	if _, err := time.Parse(models.DateLayout, start); err != nil {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidDate, start)
	}
	if start > end {
		return "", "", ErrInvalidRange
	}
	return start, end, nil
}

type snapshot struct {
	pens  []models.AnimalPen
	feeds []models.FeedInventory
	txs   []models.AnimalTransaction
	eggs  []models.EggProduction
	vegs  []models.VegetableProduction
}

func (s *Service) load(ctx context.Context, limit int) (snapshot, error) {
	var (
		snap snapshot
		err  error
	)
	if snap.pens, err = s.repos.Pens.GetAll(ctx); err != nil {
		return snap, fmt.Errorf("load pens: %w", err)
	}
	if snap.feeds, err = s.repos.Feed.GetAll(ctx); err != nil {
		return snap, fmt.Errorf("load feed: %w", err)
	}
	if snap.txs, err = s.repos.Transactions.GetAll(ctx, limit); err != nil {
		return snap, fmt.Errorf("load transactions: %w", err)
	}
	if snap.eggs, err = s.repos.Eggs.GetAll(ctx, limit); err != nil {
		return snap, fmt.Errorf("load eggs: %w", err)
	}
	if snap.vegs, err = s.repos.Vegetables.GetAll(ctx, limit); err != nil {
		return snap, fmt.Errorf("load vegetables: %w", err)
	}
	return snap, nil
}

// Statistics builds the owner's dashboard over [start, end].
func (s *Service) Statistics(ctx context.Context, start, end string) (models.Statistics, error) {
	start, end, err := s.ResolveRange(start, end)
	if err != nil {
		return models.Statistics{}, err
	}
	snap, err := s.load(ctx, 0)
	if err != nil {
		return models.Statistics{}, err
	}
	return stats.Statistics(snap.pens, snap.txs, snap.eggs, snap.vegs, start, end), nil
}

// Audit returns the latest AuditWindow records of each log, joined with their
// pens and narrowed by filter.
func (s *Service) Audit(ctx context.Context, filter models.AuditFilter) (models.AuditTrail, error) {
	if filter.TransactionType != "" && !filter.TransactionType.Valid() {
		return models.AuditTrail{}, fmt.Errorf("%w: unknown transaction type %q", ErrInvalidFilter, filter.TransactionType)
	}
	snap, err := s.load(ctx, AuditWindow)
	if err != nil {
		return models.AuditTrail{}, err
	}
	return stats.Audit(
		stats.JoinTransactions(snap.txs, snap.pens),
		stats.JoinEggs(snap.eggs, snap.pens),
		snap.vegs,
		filter,
	), nil
}

// BuildDailyReport summarizes one calendar day.
func (s *Service) BuildDailyReport(ctx context.Context, day string) (models.DailyReport, error) {
	if day == "" {
		day = s.Today()
	}
	if _, err := time.Parse(models.DateLayout, day); err != nil {
		return models.DailyReport{}, fmt.Errorf("%w: %q", ErrInvalidDate, day)
	}

	snap, err := s.load(ctx, 0)
	if err != nil {
		return models.DailyReport{}, err
	}

	txs := stats.FilterTransactions(snap.txs, day, day)
	eggs := stats.FilterEggs(snap.eggs, day, day)
	vegs := stats.FilterVegetables(snap.vegs, day, day)
	movements := stats.MovementTotals(txs)
	vegKg, vegValue := stats.TotalVegetables(vegs)

	report := models.DailyReport{
		Date:            day,
		EggsCollected:   stats.TotalEggs(eggs),
		VegetablesKg:    vegKg,
		VegetablesValue: vegValue,
		Births:          movements.Births,
		Purchases:       movements.Purchases,
		Sales:           movements.Sales,
		Deaths:          movements.Deaths,
		SalesRevenue:    stats.SumValues(stats.SalesRevenueByDay(txs, snap.pens)),
		RevenueForecast: stats.RevenueForecast(snap.pens),
		AnimalCount:     stats.AnimalCount(snap.pens),
		FeedAlerts:      []string{},
		CreatedAt:       s.now().UTC(),
	}
	for _, alert := range stats.Alerts(stats.FeedStatuses(snap.feeds)) {
		report.FeedAlerts = append(report.FeedAlerts, formatFeedStatus(alert))
	}
	return report, nil
}

// DailySummary renders the day's report as a chat message.
func (s *Service) DailySummary(ctx context.Context, day string) (string, error) {
	report, err := s.BuildDailyReport(ctx, day)
	if err != nil {
		return "", err
	}
	return FormatDailyReport(report), nil
}

// ArchiveDailyReport builds the day's report and stores it in the archive.
func (s *Service) ArchiveDailyReport(ctx context.Context, day string) (models.DailyReport, error) {
	if s.archive == nil {
		return models.DailyReport{}, ErrArchiveDisabled
	}
	report, err := s.BuildDailyReport(ctx, day)
	if err != nil {
		return models.DailyReport{}, err
	}
	if err := s.archive.SaveDailyReport(ctx, report); err != nil {
		return models.DailyReport{}, err
	}
	s.logger.Info("daily report archived", zap.String("date", report.Date), zap.Int("eggs", report.EggsCollected))
	return report, nil
}

// FeedAlertSummary lists feed types below the low-stock threshold. ok is
// false when every feed type is healthy.
func (s *Service) FeedAlertSummary(ctx context.Context) (string, bool, error) {
	feeds, err := s.repos.Feed.GetAll(ctx)
	if err != nil {
		return "", false, fmt.Errorf("load feed: %w", err)
	}
	alerts := stats.Alerts(stats.FeedStatuses(feeds))
	if len(alerts) == 0 {
		return "", false, nil
	}

	var b strings.Builder
	b.WriteString("Feed alert:")
	for _, a := range alerts {
		b.WriteString("\n- ")
		b.WriteString(formatFeedStatus(a))
	}
	return b.String(), true, nil
}

// StockSummary lists every feed type with its days remaining.
func (s *Service) StockSummary(ctx context.Context) (string, error) {
	feeds, err := s.repos.Feed.GetAll(ctx)
	if err != nil {
		return "", fmt.Errorf("load feed: %w", err)
	}
	if len(feeds) == 0 {
		return "Feed stock: no feed types registered.", nil
	}

	var b strings.Builder
	b.WriteString("Feed stock:")
	for _, st := range stats.FeedStatuses(feeds) {
		b.WriteString("\n- ")
		b.WriteString(formatFeedStatus(st))
	}
	return b.String(), nil
}

// FormatDailyReport renders a report as a chat message.
func FormatDailyReport(r models.DailyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Daily summary %s\n", r.Date)
	fmt.Fprintf(&b, "Eggs: %d\n", r.EggsCollected)
	fmt.Fprintf(&b, "Vegetables: %.1f kg (%.2f MZN)\n", r.VegetablesKg, r.VegetablesValue)
	fmt.Fprintf(&b, "Births %d, purchases %d, sales %d, deaths %d\n", r.Births, r.Purchases, r.Sales, r.Deaths)
	fmt.Fprintf(&b, "Sales revenue: %.2f MZN\n", r.SalesRevenue)
	fmt.Fprintf(&b, "Animals: %d, forecast value %.2f MZN", r.AnimalCount, r.RevenueForecast)
	if len(r.FeedAlerts) > 0 {
		b.WriteString("\nFeed alerts:")
		for _, a := range r.FeedAlerts {
			b.WriteString("\n- ")
			b.WriteString(a)
		}
	}
	return b.String()
}

func formatFeedStatus(st models.FeedStatus) string {
	days := "no estimate"
	if st.DaysRemaining != nil {
		days = fmt.Sprintf("%d days", *st.DaysRemaining)
	}
	return fmt.Sprintf("%s: %.1f kg, %s (%s)", st.Feed.FeedType, st.Feed.CurrentStockKg, days, st.Status)
}
