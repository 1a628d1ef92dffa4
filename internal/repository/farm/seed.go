package farm

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mamadbah2/lirio/internal/domain/models"
	"github.com/mamadbah2/lirio/internal/storage"
)

//go:embed seed.yaml
var defaultSeed []byte

// Dataset is the initial content written on first run.
type Dataset struct {
	Pens  []SeedPen  `yaml:"pens"`
	Feeds []SeedFeed `yaml:"feeds"`
	Users []SeedUser `yaml:"users"`
}

type SeedPen struct {
	Type         string  `yaml:"type"`
	Name         string  `yaml:"name"`
	CurrentCount int     `yaml:"current_count"`
	BasePrice    float64 `yaml:"base_price"`
}

type SeedFeed struct {
	FeedType           string  `yaml:"feed_type"`
	CurrentStockKg     float64 `yaml:"current_stock_kg"`
	DailyConsumptionKg float64 `yaml:"daily_consumption_kg"`
}

type SeedUser struct {
	Name string      `yaml:"name"`
	Role models.Role `yaml:"role"`
}

// DefaultDataset parses the embedded seed: four pens, four feed types and two users.
func DefaultDataset() (Dataset, error) {
	return parseDataset(defaultSeed)
}

// LoadDataset reads a seed file, falling back to the embedded dataset when path is empty.
func LoadDataset(path string) (Dataset, error) {
	if path == "" {
		return DefaultDataset()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read seed file: %w", err)
	}
	return parseDataset(raw)
}

func parseDataset(raw []byte) (Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(raw, &ds); err != nil {
		return Dataset{}, fmt.Errorf("parse seed: %w", err)
	}
	return ds, nil
}

// InitResult reports what Initialize did.
type InitResult struct {
	Seeded    bool
	Migration MigrationResult
}

// Initialize seeds the store on first run and reconciles it on every run.
// A store whose initialized flag is already set is never re-seeded, so
// calling Initialize repeatedly leaves the data unchanged after the first call.
func (r *Repositories) Initialize(ctx context.Context, ds Dataset) (InitResult, error) {
	var res InitResult

	initialized, err := r.store.Flag(ctx, storage.FlagInitialized)
	if err != nil {
		return res, err
	}

	if !initialized {
		if err := r.seed(ctx, ds); err != nil {
			return res, fmt.Errorf("seed: %w", err)
		}
		if err := r.store.SetFlag(ctx, storage.FlagInitialized, true); err != nil {
			return res, err
		}
		res.Seeded = true
		r.logger.Info("seeded initial dataset",
			zap.Int("pens", len(ds.Pens)),
			zap.Int("feeds", len(ds.Feeds)),
			zap.Int("users", len(ds.Users)),
		)
	}

	res.Migration, err = r.Migrate(ctx)
	if err != nil {
		return res, fmt.Errorf("migrate: %w", err)
	}
	return res, nil
}

func (r *Repositories) seed(ctx context.Context, ds Dataset) error {
	now := r.timestamp()

	pens := make([]models.AnimalPen, 0, len(ds.Pens))
	for _, p := range ds.Pens {
		pens = append(pens, models.AnimalPen{
			ID:           r.ids.NewID(),
			Type:         p.Type,
			Name:         p.Name,
			CurrentCount: p.CurrentCount,
			BasePrice:    p.BasePrice,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	feeds := make([]models.FeedInventory, 0, len(ds.Feeds))
	for _, f := range ds.Feeds {
		feeds = append(feeds, models.FeedInventory{
			ID:                 r.ids.NewID(),
			FeedType:           f.FeedType,
			CurrentStockKg:     f.CurrentStockKg,
			DailyConsumptionKg: f.DailyConsumptionKg,
			LastUpdated:        now,
		})
	}

	users := make([]models.AppUser, 0, len(ds.Users))
	for _, u := range ds.Users {
		users = append(users, models.AppUser{
			ID:        r.ids.NewID(),
			Name:      u.Name,
			Role:      u.Role,
			CreatedAt: now,
		})
	}

	if err := r.Pens.coll.SetAll(ctx, pens); err != nil {
		return err
	}
	if err := r.Feed.coll.SetAll(ctx, feeds); err != nil {
		return err
	}
	if err := r.Users.setAll(ctx, users); err != nil {
		return err
	}
	if err := r.Transactions.coll.SetAll(ctx, nil); err != nil {
		return err
	}
	if err := r.Eggs.coll.SetAll(ctx, nil); err != nil {
		return err
	}
	return r.Vegetables.coll.SetAll(ctx, nil)
}
