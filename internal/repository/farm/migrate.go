package farm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/lirio/internal/domain/models"
	"github.com/mamadbah2/lirio/internal/storage"
)

// DefaultFeedType is assigned to legacy feed records that carry no type.
const DefaultFeedType = "Geral"

// MigrationResult summarizes one reconciliation pass.
type MigrationResult struct {
	Normalized int      // feed records rewritten from the raw bucket
	Dropped    int      // null or non-object entries discarded
	Duplicates int      // records removed because their feed type was already seen
	Backfilled []string // pen types that received a zero-stock feed record
}

// Migrate reconciles the feed bucket with the current record shape and
// guarantees a feed record for every pen type. Running it twice in a row
// leaves the data as the first run left it.
func (r *Repositories) Migrate(ctx context.Context) (MigrationResult, error) {
	var res MigrationResult

	if err := r.normalizeFeeds(ctx, &res); err != nil {
		return res, err
	}
	if err := r.backfillFeeds(ctx, &res); err != nil {
		return res, err
	}

	if res.Dropped > 0 || res.Duplicates > 0 || len(res.Backfilled) > 0 {
		r.logger.Info("feed inventory reconciled",
			zap.Int("normalized", res.Normalized),
			zap.Int("dropped", res.Dropped),
			zap.Int("duplicates", res.Duplicates),
			zap.Strings("backfilled", res.Backfilled),
		)
	}
	return res, nil
}

func (r *Repositories) normalizeFeeds(ctx context.Context, res *MigrationResult) error {
	payload, err := r.store.Backend().Load(ctx, storage.BucketFeedInventory)
	if err != nil {
		return fmt.Errorf("load %s: %w", storage.BucketFeedInventory, err)
	}

	entries, err := decodeRawEntries(payload)
	if err != nil {
		return fmt.Errorf("decode %s: %w", storage.BucketFeedInventory, err)
	}
	if len(entries) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(entries))
	feeds := make([]models.FeedInventory, 0, len(entries))
	for _, raw := range entries {
		fields, ok := raw.(map[string]any)
		if !ok {
			res.Dropped++
			r.logger.Debug("dropping malformed feed entry", zap.Any("entry", raw))
			continue
		}
		feed := r.normalizeFeed(fields)
		if _, dup := seen[feed.FeedType]; dup {
			res.Duplicates++
			r.logger.Debug("dropping duplicate feed type", zap.String("feed_type", feed.FeedType))
			continue
		}
		seen[feed.FeedType] = struct{}{}
		feeds = append(feeds, feed)
	}

	res.Normalized = len(feeds)
	return r.Feed.coll.SetAll(ctx, feeds)
}

func (r *Repositories) normalizeFeed(fields map[string]any) models.FeedInventory {
	feedType := DefaultFeedType
	if s, ok := fields["feed_type"].(string); ok && strings.TrimSpace(s) != "" {
		feedType = strings.TrimSpace(s)
	}

	id, ok := fields["id"].(string)
	if !ok {
		id = r.ids.NewID()
	}

	lastUpdated := r.timestamp()
	if s, ok := fields["last_updated"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			lastUpdated = t
		}
	}

	return models.FeedInventory{
		ID:                 id,
		FeedType:           feedType,
		CurrentStockKg:     safeNumber(fields["current_stock_kg"], 0),
		DailyConsumptionKg: safeNumber(fields["daily_consumption_kg"], 0),
		LastUpdated:        lastUpdated,
	}
}

func (r *Repositories) backfillFeeds(ctx context.Context, res *MigrationResult) error {
	types, err := r.Pens.Types(ctx)
	if err != nil {
		return err
	}
	if len(types) == 0 {
		return nil
	}

	feeds, err := r.Feed.coll.GetAll(ctx)
	if err != nil {
		return err
	}
	existing := make(map[string]struct{}, len(feeds))
	for _, f := range feeds {
		existing[f.FeedType] = struct{}{}
	}

	for _, t := range types {
		if _, ok := existing[t]; ok {
			continue
		}
		feeds = append(feeds, models.FeedInventory{
			ID:          r.ids.NewID(),
			FeedType:    t,
			LastUpdated: r.timestamp(),
		})
		res.Backfilled = append(res.Backfilled, t)
	}
	if len(res.Backfilled) == 0 {
		return nil
	}
	return r.Feed.coll.SetAll(ctx, feeds)
}

// decodeRawEntries accepts a JSON array or a lone legacy object.
func decodeRawEntries(payload []byte) ([]any, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '{' {
		var obj map[string]any
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, err
		}
		return []any{obj}, nil
	}
	var entries []any
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// safeNumber coerces numbers, numeric strings and booleans. Missing values,
// other types and non-finite results yield fallback.
func safeNumber(v any, fallback float64) float64 {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fallback
		}
		n = parsed
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return fallback
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return fallback
	}
	return n
}
