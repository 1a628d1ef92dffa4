package farm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/lirio/internal/domain/models"
)

// RecordEggs logs today's collection from a pen.
func (s *Service) RecordEggs(ctx context.Context, penID string, qty int, by string) (models.EggProduction, error) {
	if qty <= 0 {
		return models.EggProduction{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pen, ok, err := s.repos.Pens.GetByID(ctx, penID)
	if err != nil {
		return models.EggProduction{}, fmt.Errorf("load pen: %w", err)
	}
	if !ok {
		return models.EggProduction{}, ErrPenNotFound
	}

	rec, err := s.repos.Eggs.Create(ctx, models.NewEggProduction{PenID: pen.ID, Quantity: qty, CreatedBy: by})
	if err != nil {
		return models.EggProduction{}, fmt.Errorf("record eggs: %w", err)
	}
	s.logger.Info("eggs recorded", zap.String("pen", pen.Name), zap.Int("quantity", qty), zap.String("by", by))

	if s.sink != nil {
		if err := s.sink.RecordEggs(ctx, rec, pen); err != nil {
			s.logger.Warn("audit mirror failed", zap.String("record", rec.ID), zap.Error(err))
		}
	}
	return rec, nil
}

// RecordVegetables logs today's harvest of one vegetable type.
func (s *Service) RecordVegetables(ctx context.Context, vegType string, kg, price float64, by string) (models.VegetableProduction, error) {
	vegType = strings.TrimSpace(vegType)
	if vegType == "" {
		return models.VegetableProduction{}, fmt.Errorf("%w: vegetable type is required", ErrInvalidInput)
	}
	if kg <= 0 || price <= 0 {
		return models.VegetableProduction{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.repos.Vegetables.Create(ctx, models.NewVegetableProduction{
		VegetableType: vegType,
		WeightKg:      kg,
		BasePrice:     price,
		CreatedBy:     by,
	})
	if err != nil {
		return models.VegetableProduction{}, fmt.Errorf("record vegetables: %w", err)
	}
	s.logger.Info("harvest recorded", zap.String("type", vegType), zap.Float64("kg", kg), zap.String("by", by))

	if s.sink != nil {
		if err := s.sink.RecordVegetables(ctx, rec); err != nil {
			s.logger.Warn("audit mirror failed", zap.String("record", rec.ID), zap.Error(err))
		}
	}
	return rec, nil
}
