package farm

import (
	"context"

	"github.com/mamadbah2/lirio/internal/domain/models"
	"github.com/mamadbah2/lirio/internal/storage"
)

// PenRepository manages the animal pens bucket.
type PenRepository struct {
	repo *Repositories
	coll *storage.Collection[models.AnimalPen]
}

// GetAll returns every pen in storage order; callers sort by their own key.
func (p *PenRepository) GetAll(ctx context.Context) ([]models.AnimalPen, error) {
	return p.coll.GetAll(ctx)
}

// GetByID finds a pen by id.
func (p *PenRepository) GetByID(ctx context.Context, id string) (models.AnimalPen, bool, error) {
	pens, err := p.coll.GetAll(ctx)
	if err != nil {
		return models.AnimalPen{}, false, err
	}
	for _, pen := range pens {
		if pen.ID == id {
			return pen, true, nil
		}
	}
	return models.AnimalPen{}, false, nil
}

// Create appends a pen with a fresh id and timestamps. Names are not required
// to be unique.
func (p *PenRepository) Create(ctx context.Context, in models.NewPen) (models.AnimalPen, error) {
	pens, err := p.coll.GetAll(ctx)
	if err != nil {
		return models.AnimalPen{}, err
	}

	now := p.repo.timestamp()
	pen := models.AnimalPen{
		ID:           p.repo.ids.NewID(),
		Type:         in.Type,
		Name:         in.Name,
		CurrentCount: in.CurrentCount,
		BasePrice:    in.BasePrice,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := p.coll.SetAll(ctx, append(pens, pen)); err != nil {
		return models.AnimalPen{}, err
	}
	return pen, nil
}

// Update merges patch over the pen with the given id and refreshes UpdatedAt.
// Values are stored as given, negative counts included.
func (p *PenRepository) Update(ctx context.Context, id string, patch models.PenPatch) (models.AnimalPen, bool, error) {
	pens, err := p.coll.GetAll(ctx)
	if err != nil {
		return models.AnimalPen{}, false, err
	}

	for i := range pens {
		if pens[i].ID != id {
			continue
		}
		updated := patch.Apply(pens[i])
		updated.UpdatedAt = p.repo.timestamp()
		pens[i] = updated
		if err := p.coll.SetAll(ctx, pens); err != nil {
			return models.AnimalPen{}, false, err
		}
		return updated, true, nil
	}
	return models.AnimalPen{}, false, nil
}

// Delete removes the pen with the given id. Transactions and egg records that
// reference it are left dangling.
func (p *PenRepository) Delete(ctx context.Context, id string) (bool, error) {
	pens, err := p.coll.GetAll(ctx)
	if err != nil {
		return false, err
	}

	kept := pens[:0]
	for _, pen := range pens {
		if pen.ID != id {
			kept = append(kept, pen)
		}
	}
	if len(kept) == len(pens) {
		return false, nil
	}
	if err := p.coll.SetAll(ctx, kept); err != nil {
		return false, err
	}
	return true, nil
}

// Types returns the distinct non-empty pen types in first-seen order.
func (p *PenRepository) Types(ctx context.Context) ([]string, error) {
	pens, err := p.coll.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(pens))
	var types []string
	for _, pen := range pens {
		if pen.Type == "" {
			continue
		}
		if _, ok := seen[pen.Type]; ok {
			continue
		}
		seen[pen.Type] = struct{}{}
		types = append(types, pen.Type)
	}
	return types, nil
}
