package farm

import (
	"context"
	"time"

	"github.com/mamadbah2/lirio/internal/domain/models"
	"github.com/mamadbah2/lirio/internal/storage"
)

// TransactionRepository is the append-only log of pen count movements.
type TransactionRepository struct {
	repo *Repositories
	coll *storage.Collection[models.AnimalTransaction]
}

// GetAll returns transactions newest first, capped at limit when limit > 0.
func (t *TransactionRepository) GetAll(ctx context.Context, limit int) ([]models.AnimalTransaction, error) {
	records, err := t.coll.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return latestFirst(records, func(tx models.AnimalTransaction) time.Time { return tx.CreatedAt }, limit), nil
}

// GetByID finds a transaction by id.
func (t *TransactionRepository) GetByID(ctx context.Context, id string) (models.AnimalTransaction, bool, error) {
	records, err := t.coll.GetAll(ctx)
	if err != nil {
		return models.AnimalTransaction{}, false, err
	}
	for _, tx := range records {
		if tx.ID == id {
			return tx, true, nil
		}
	}
	return models.AnimalTransaction{}, false, nil
}

// Create appends a transaction. The referenced pen is not checked.
func (t *TransactionRepository) Create(ctx context.Context, in models.NewTransaction) (models.AnimalTransaction, error) {
	records, err := t.coll.GetAll(ctx)
	if err != nil {
		return models.AnimalTransaction{}, err
	}

	tx := models.AnimalTransaction{
		ID:              t.repo.ids.NewID(),
		PenID:           in.PenID,
		TransactionType: in.TransactionType,
		Quantity:        in.Quantity,
		Notes:           in.Notes,
		CreatedAt:       t.repo.timestamp(),
		CreatedBy:       in.CreatedBy,
	}
	if err := t.coll.SetAll(ctx, append(records, tx)); err != nil {
		return models.AnimalTransaction{}, err
	}
	return tx, nil
}

// EggRepository is the append-only log of egg collections.
type EggRepository struct {
	repo *Repositories
	coll *storage.Collection[models.EggProduction]
}

// GetAll returns egg records newest first, capped at limit when limit > 0.
func (e *EggRepository) GetAll(ctx context.Context, limit int) ([]models.EggProduction, error) {
	records, err := e.coll.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return latestFirst(records, func(r models.EggProduction) time.Time { return r.CreatedAt }, limit), nil
}

// GetByID finds an egg record by id.
func (e *EggRepository) GetByID(ctx context.Context, id string) (models.EggProduction, bool, error) {
	records, err := e.coll.GetAll(ctx)
	if err != nil {
		return models.EggProduction{}, false, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, true, nil
		}
	}
	return models.EggProduction{}, false, nil
}

// GetByDate returns every egg record for date, in storage order.
func (e *EggRepository) GetByDate(ctx context.Context, date string) ([]models.EggProduction, error) {
	records, err := e.coll.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]models.EggProduction, 0)
	for _, r := range records {
		if r.Date == date {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

// Create appends an egg record. An empty Date defaults to today.
func (e *EggRepository) Create(ctx context.Context, in models.NewEggProduction) (models.EggProduction, error) {
	records, err := e.coll.GetAll(ctx)
	if err != nil {
		return models.EggProduction{}, err
	}

	now := e.repo.timestamp()
	date := in.Date
	if date == "" {
		date = models.DayOf(now)
	}
	rec := models.EggProduction{
		ID:        e.repo.ids.NewID(),
		PenID:     in.PenID,
		Quantity:  in.Quantity,
		Date:      date,
		CreatedAt: now,
		CreatedBy: in.CreatedBy,
	}
	if err := e.coll.SetAll(ctx, append(records, rec)); err != nil {
		return models.EggProduction{}, err
	}
	return rec, nil
}

// VegetableRepository is the append-only log of vegetable harvests.
type VegetableRepository struct {
	repo *Repositories
	coll *storage.Collection[models.VegetableProduction]
}

// GetAll returns harvests newest first, capped at limit when limit > 0.
func (v *VegetableRepository) GetAll(ctx context.Context, limit int) ([]models.VegetableProduction, error) {
	records, err := v.coll.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return latestFirst(records, func(r models.VegetableProduction) time.Time { return r.CreatedAt }, limit), nil
}

// GetByID finds a harvest by id.
func (v *VegetableRepository) GetByID(ctx context.Context, id string) (models.VegetableProduction, bool, error) {
	records, err := v.coll.GetAll(ctx)
	if err != nil {
		return models.VegetableProduction{}, false, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, true, nil
		}
	}
	return models.VegetableProduction{}, false, nil
}

// GetByDate returns every harvest recorded for date, in storage order.
func (v *VegetableRepository) GetByDate(ctx context.Context, date string) ([]models.VegetableProduction, error) {
	records, err := v.coll.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]models.VegetableProduction, 0)
	for _, r := range records {
		if r.Date == date {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

// Create appends a harvest. An empty Date defaults to today.
func (v *VegetableRepository) Create(ctx context.Context, in models.NewVegetableProduction) (models.VegetableProduction, error) {
	records, err := v.coll.GetAll(ctx)
	if err != nil {
		return models.VegetableProduction{}, err
	}

	now := v.repo.timestamp()
	date := in.Date
	if date == "" {
		date = models.DayOf(now)
	}
	rec := models.VegetableProduction{
		ID:            v.repo.ids.NewID(),
		VegetableType: in.VegetableType,
		WeightKg:      in.WeightKg,
		BasePrice:     in.BasePrice,
		Date:          date,
		CreatedAt:     now,
		CreatedBy:     in.CreatedBy,
	}
	if err := v.coll.SetAll(ctx, append(records, rec)); err != nil {
		return models.VegetableProduction{}, err
	}
	return rec, nil
}
