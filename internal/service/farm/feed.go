package farm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/lirio/internal/domain/models"
	"github.com/mamadbah2/lirio/internal/service/stats"
)

// CreateFeedType registers a feed type. Types are unique regardless of case.
func (s *Service) CreateFeedType(ctx context.Context, in models.NewFeed) (models.FeedInventory, error) {
	in.FeedType = strings.TrimSpace(in.FeedType)
	if in.FeedType == "" {
		return models.FeedInventory{}, fmt.Errorf("%w: feed type is required", ErrInvalidInput)
	}
	if in.CurrentStockKg < 0 || in.DailyConsumptionKg < 0 {
		return models.FeedInventory{}, fmt.Errorf("%w: stock and consumption must not be negative", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	feeds, err := s.repos.Feed.GetAll(ctx)
	if err != nil {
		return models.FeedInventory{}, fmt.Errorf("load feed: %w", err)
	}
	for _, f := range feeds {
		if strings.EqualFold(f.FeedType, in.FeedType) {
			return models.FeedInventory{}, fmt.Errorf("%w: %s", ErrFeedTypeExists, f.FeedType)
		}
	}

	feed, err := s.repos.Feed.Create(ctx, in)
	if err != nil {
		return models.FeedInventory{}, fmt.Errorf("create feed: %w", err)
	}
	return feed, nil
}

// UpdateFeedType overwrites stock and daily consumption of a feed type.
func (s *Service) UpdateFeedType(ctx context.Context, feedType string, stockKg, dailyKg float64) (models.FeedInventory, error) {
	if stockKg < 0 || dailyKg < 0 {
		return models.FeedInventory{}, fmt.Errorf("%w: stock and consumption must not be negative", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patchFeed(ctx, feedType, models.FeedPatch{CurrentStockKg: &stockKg, DailyConsumptionKg: &dailyKg})
}

// DeleteFeedType removes a feed type no pen uses.
func (s *Service) DeleteFeedType(ctx context.Context, feedType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pens, err := s.repos.Pens.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load pens: %w", err)
	}
	for _, p := range pens {
		if p.Type == feedType {
			return fmt.Errorf("%w: %s", ErrFeedTypeInUse, p.Name)
		}
	}

	removed, err := s.repos.Feed.Delete(ctx, feedType)
	if err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}
	if !removed {
		return ErrFeedTypeNotFound
	}
	return nil
}

// AddFeedStock adds a delivery to the stock.
func (s *Service) AddFeedStock(ctx context.Context, feedType string, kg float64) (models.FeedInventory, error) {
	if kg <= 0 {
		return models.FeedInventory{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	feed, err := s.feed(ctx, feedType)
	if err != nil {
		return models.FeedInventory{}, err
	}
	stock := feed.CurrentStockKg + kg
	return s.patchFeed(ctx, feed.FeedType, models.FeedPatch{CurrentStockKg: &stock})
}

// RecordConsumption deducts kg from the stock. A zero kg uses the feed's
// daily consumption.
func (s *Service) RecordConsumption(ctx context.Context, feedType string, kg float64) (models.FeedInventory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	feed, err := s.feed(ctx, feedType)
	if err != nil {
		return models.FeedInventory{}, err
	}
	if kg == 0 {
		kg = feed.DailyConsumptionKg
	}
	if kg <= 0 {
		return models.FeedInventory{}, ErrInvalidQuantity
	}
	if kg > feed.CurrentStockKg {
		return models.FeedInventory{}, fmt.Errorf("%w: %.2f kg of %s left, %.2f kg requested", ErrInsufficientStock, feed.CurrentStockKg, feed.FeedType, kg)
	}

	stock := feed.CurrentStockKg - kg
	updated, err := s.patchFeed(ctx, feed.FeedType, models.FeedPatch{CurrentStockKg: &stock})
	if err != nil {
		return models.FeedInventory{}, err
	}

	status := stats.FeedStatusOf(updated)
	if status.Status != models.StockHealthy {
		s.logger.Warn("feed stock running low",
			zap.String("feed_type", updated.FeedType),
			zap.Float64("stock_kg", updated.CurrentStockKg),
			zap.String("status", string(status.Status)),
		)
	}
	return updated, nil
}

// SetDailyConsumption changes the expected daily usage.
func (s *Service) SetDailyConsumption(ctx context.Context, feedType string, kg float64) (models.FeedInventory, error) {
	if kg <= 0 {
		return models.FeedInventory{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patchFeed(ctx, feedType, models.FeedPatch{DailyConsumptionKg: &kg})
}

// FeedStatuses returns the stock view of every feed type.
func (s *Service) FeedStatuses(ctx context.Context) ([]models.FeedStatus, error) {
	feeds, err := s.repos.Feed.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}
	return stats.FeedStatuses(feeds), nil
}

// ResolveFeedType finds a feed type ignoring case.
func (s *Service) ResolveFeedType(ctx context.Context, ref string) (models.FeedInventory, error) {
	return s.feed(ctx, ref)
}

func (s *Service) feed(ctx context.Context, feedType string) (models.FeedInventory, error) {
	feedType = strings.TrimSpace(feedType)
	feed, ok, err := s.repos.Feed.GetByType(ctx, feedType)
	if err != nil {
		return models.FeedInventory{}, fmt.Errorf("load feed: %w", err)
	}
	if ok {
		return feed, nil
	}

	feeds, err := s.repos.Feed.GetAll(ctx)
	if err != nil {
		return models.FeedInventory{}, fmt.Errorf("load feed: %w", err)
	}
	for _, f := range feeds {
		if strings.EqualFold(f.FeedType, feedType) {
			return f, nil
		}
	}
	return models.FeedInventory{}, fmt.Errorf("%w: %s", ErrFeedTypeNotFound, feedType)
}

func (s *Service) patchFeed(ctx context.Context, feedType string, patch models.FeedPatch) (models.FeedInventory, error) {
	updated, ok, err := s.repos.Feed.Update(ctx, feedType, patch)
	if err != nil {
		return models.FeedInventory{}, fmt.Errorf("update feed: %w", err)
	}
	if !ok {
		return models.FeedInventory{}, fmt.Errorf("%w: %s", ErrFeedTypeNotFound, feedType)
	}
	return updated, nil
}
