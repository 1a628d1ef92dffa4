package farm

import (
	"context"

	"github.com/mamadbah2/lirio/internal/domain/models"
	"github.com/mamadbah2/lirio/internal/storage"
)

// FeedRepository manages the feed inventory bucket, keyed by feed type.
type FeedRepository struct {
	repo *Repositories
	coll *storage.Collection[models.FeedInventory]
}

// GetAll returns every feed record in storage order.
func (f *FeedRepository) GetAll(ctx context.Context) ([]models.FeedInventory, error) {
	return f.coll.GetAll(ctx)
}

// GetByType finds the record for feedType (exact match).
func (f *FeedRepository) GetByType(ctx context.Context, feedType string) (models.FeedInventory, bool, error) {
	feeds, err := f.coll.GetAll(ctx)
	if err != nil {
		return models.FeedInventory{}, false, err
	}
	for _, feed := range feeds {
		if feed.FeedType == feedType {
			return feed, true, nil
		}
	}
	return models.FeedInventory{}, false, nil
}

// GetByID finds a feed record by id.
func (f *FeedRepository) GetByID(ctx context.Context, id string) (models.FeedInventory, bool, error) {
	feeds, err := f.coll.GetAll(ctx)
	if err != nil {
		return models.FeedInventory{}, false, err
	}
	for _, feed := range feeds {
		if feed.ID == id {
			return feed, true, nil
		}
	}
	return models.FeedInventory{}, false, nil
}

// First returns the first stored record. It serves callers of the legacy
// single-record inventory.
func (f *FeedRepository) First(ctx context.Context) (models.FeedInventory, bool, error) {
	feeds, err := f.coll.GetAll(ctx)
	if err != nil || len(feeds) == 0 {
		return models.FeedInventory{}, false, err
	}
	return feeds[0], true, nil
}

// Create appends a feed record. Feed type uniqueness is the caller's check.
func (f *FeedRepository) Create(ctx context.Context, in models.NewFeed) (models.FeedInventory, error) {
	feeds, err := f.coll.GetAll(ctx)
	if err != nil {
		return models.FeedInventory{}, err
	}

	feed := models.FeedInventory{
		ID:                 f.repo.ids.NewID(),
		FeedType:           in.FeedType,
		CurrentStockKg:     in.CurrentStockKg,
		DailyConsumptionKg: in.DailyConsumptionKg,
		LastUpdated:        f.repo.timestamp(),
	}

	if err := f.coll.SetAll(ctx, append(feeds, feed)); err != nil {
		return models.FeedInventory{}, err
	}
	return feed, nil
}

// Update merges patch over the first record with feedType and refreshes LastUpdated.
func (f *FeedRepository) Update(ctx context.Context, feedType string, patch models.FeedPatch) (models.FeedInventory, bool, error) {
	feeds, err := f.coll.GetAll(ctx)
	if err != nil {
		return models.FeedInventory{}, false, err
	}

	for i := range feeds {
		if feeds[i].FeedType != feedType {
			continue
		}
		updated := patch.Apply(feeds[i])
		updated.LastUpdated = f.repo.timestamp()
		feeds[i] = updated
		if err := f.coll.SetAll(ctx, feeds); err != nil {
			return models.FeedInventory{}, false, err
		}
		return updated, true, nil
	}
	return models.FeedInventory{}, false, nil
}

// Delete removes the record for feedType and reports whether one was removed.
// Nothing is written when no record matches.
func (f *FeedRepository) Delete(ctx context.Context, feedType string) (bool, error) {
	feeds, err := f.coll.GetAll(ctx)
	if err != nil {
		return false, err
	}

	kept := make([]models.FeedInventory, 0, len(feeds))
	for _, feed := range feeds {
		if feed.FeedType != feedType {
			kept = append(kept, feed)
		}
	}
	if len(kept) == len(feeds) {
		return false, nil
	}
	if err := f.coll.SetAll(ctx, kept); err != nil {
		return false, err
	}
	return true, nil
}
