package farm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/lirio/internal/domain/models"
	farmrepo "github.com/mamadbah2/lirio/internal/repository/farm"
	"github.com/mamadbah2/lirio/internal/service/stats"
)

var (
	ErrInvalidQuantity     = errors.New("quantity must be greater than zero")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInsufficientStock   = errors.New("insufficient feed stock")
	ErrInsufficientAnimals = errors.New("insufficient animals in pen")
	ErrPenNotFound         = errors.New("pen not found")
	ErrFeedTypeNotFound    = errors.New("feed type not found")
	ErrFeedTypeExists      = errors.New("feed type already exists")
	ErrFeedTypeInUse       = errors.New("feed type in use by a pen")
)

// AuditSink mirrors append-only records to an external log. Failures are
// logged and never undo the local write.
type AuditSink interface {
	RecordTransaction(ctx context.Context, tx models.AnimalTransaction, pen models.AnimalPen) error
	RecordEggs(ctx context.Context, rec models.EggProduction, pen models.AnimalPen) error
	RecordVegetables(ctx context.Context, rec models.VegetableProduction) error
}

// Service validates operator actions and applies them to the repositories.
// Mutations are serialized so concurrent requests never interleave a bucket
// read with another request's write.
type Service struct {
	mu     sync.Mutex
	repos  *farmrepo.Repositories
	sink   AuditSink
	logger *zap.Logger
}

// NewService wires the farm service. sink may be nil.
func NewService(repos *farmrepo.Repositories, sink AuditSink, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repos: repos, sink: sink, logger: logger}
}

// Repositories exposes the underlying repositories for read paths.
func (s *Service) Repositories() *farmrepo.Repositories { return s.repos }

var movementNotes = map[models.TransactionType]string{
	models.TransactionBirth:    "Nascimento registrado",
	models.TransactionPurchase: "Compra registrado",
	models.TransactionSale:     "Venda registrado",
	models.TransactionDeath:    "Óbito registrado",
}

// AddAnimals records a birth or purchase and raises the pen count.
func (s *Service) AddAnimals(ctx context.Context, penID string, qty int, kind models.TransactionType, by string) (models.AnimalPen, models.AnimalTransaction, error) {
	if !kind.Valid() || !kind.Increases() {
		return models.AnimalPen{}, models.AnimalTransaction{}, fmt.Errorf("%w: %q does not add animals", ErrInvalidInput, kind)
	}
	return s.move(ctx, penID, qty, kind, by)
}

// RemoveAnimals records a sale or death and lowers the pen count. The pen
// must hold at least qty animals.
func (s *Service) RemoveAnimals(ctx context.Context, penID string, qty int, kind models.TransactionType, by string) (models.AnimalPen, models.AnimalTransaction, error) {
	if !kind.Valid() || kind.Increases() {
		return models.AnimalPen{}, models.AnimalTransaction{}, fmt.Errorf("%w: %q does not remove animals", ErrInvalidInput, kind)
	}
	return s.move(ctx, penID, qty, kind, by)
}

// Move applies any of the four transaction types.
func (s *Service) Move(ctx context.Context, penID string, qty int, kind models.TransactionType, by string) (models.AnimalPen, models.AnimalTransaction, error) {
	if kind.Increases() {
		return s.AddAnimals(ctx, penID, qty, kind, by)
	}
	return s.RemoveAnimals(ctx, penID, qty, kind, by)
}

func (s *Service) move(ctx context.Context, penID string, qty int, kind models.TransactionType, by string) (models.AnimalPen, models.AnimalTransaction, error) {
	if qty <= 0 {
		return models.AnimalPen{}, models.AnimalTransaction{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pen, ok, err := s.repos.Pens.GetByID(ctx, penID)
	if err != nil {
		return models.AnimalPen{}, models.AnimalTransaction{}, fmt.Errorf("load pen: %w", err)
	}
	if !ok {
		return models.AnimalPen{}, models.AnimalTransaction{}, ErrPenNotFound
	}

	count := pen.CurrentCount + qty
	if !kind.Increases() {
		if pen.CurrentCount < qty {
			return models.AnimalPen{}, models.AnimalTransaction{}, fmt.Errorf("%w: %d in %s, %d requested", ErrInsufficientAnimals, pen.CurrentCount, pen.Name, qty)
		}
		count = pen.CurrentCount - qty
	}

	updated, _, err := s.repos.Pens.Update(ctx, pen.ID, models.PenPatch{CurrentCount: &count})
	if err != nil {
		return models.AnimalPen{}, models.AnimalTransaction{}, fmt.Errorf("update pen: %w", err)
	}

	tx, err := s.repos.Transactions.Create(ctx, models.NewTransaction{
		PenID:           pen.ID,
		TransactionType: kind,
		Quantity:        qty,
		Notes:           movementNotes[kind],
		CreatedBy:       by,
	})
	if err != nil {
		return models.AnimalPen{}, models.AnimalTransaction{}, fmt.Errorf("record transaction: %w", err)
	}

	s.logger.Info("animal movement recorded",
		zap.String("pen", pen.Name),
		zap.String("type", string(kind)),
		zap.Int("quantity", qty),
		zap.Int("count", count),
		zap.String("by", by),
	)

	if s.sink != nil {
		if err := s.sink.RecordTransaction(ctx, tx, updated); err != nil {
			s.logger.Warn("audit mirror failed", zap.String("record", tx.ID), zap.Error(err))
		}
	}
	return updated, tx, nil
}

// CreatePen adds a pen. The name defaults to "<type> <n>" where n is the
// pen count after insertion, and a zero-stock feed record is created for a
// type that has none.
func (s *Service) CreatePen(ctx context.Context, in models.NewPen) (models.AnimalPen, error) {
	in.Type = strings.TrimSpace(in.Type)
	in.Name = strings.TrimSpace(in.Name)
	if in.Type == "" {
		return models.AnimalPen{}, fmt.Errorf("%w: pen type is required", ErrInvalidInput)
	}
	if in.CurrentCount < 0 || in.BasePrice < 0 {
		return models.AnimalPen{}, fmt.Errorf("%w: count and price must not be negative", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in.Name == "" {
		pens, err := s.repos.Pens.GetAll(ctx)
		if err != nil {
			return models.AnimalPen{}, fmt.Errorf("load pens: %w", err)
		}
		in.Name = fmt.Sprintf("%s %d", in.Type, len(pens)+1)
	}

	pen, err := s.repos.Pens.Create(ctx, in)
	if err != nil {
		return models.AnimalPen{}, fmt.Errorf("create pen: %w", err)
	}

	_, exists, err := s.repos.Feed.GetByType(ctx, in.Type)
	if err != nil {
		return models.AnimalPen{}, fmt.Errorf("load feed: %w", err)
	}
	if !exists {
		if _, err := s.repos.Feed.Create(ctx, models.NewFeed{FeedType: in.Type}); err != nil {
			return models.AnimalPen{}, fmt.Errorf("create feed: %w", err)
		}
		s.logger.Info("feed type created for new pen type", zap.String("feed_type", in.Type))
	}
	return pen, nil
}

// UpdatePen edits a pen's attributes.
func (s *Service) UpdatePen(ctx context.Context, id string, patch models.PenPatch) (models.AnimalPen, error) {
	if patch.Type != nil {
		trimmed := strings.TrimSpace(*patch.Type)
		if trimmed == "" {
			return models.AnimalPen{}, fmt.Errorf("%w: pen type is required", ErrInvalidInput)
		}
		patch.Type = &trimmed
	}
	if (patch.CurrentCount != nil && *patch.CurrentCount < 0) || (patch.BasePrice != nil && *patch.BasePrice < 0) {
		return models.AnimalPen{}, fmt.Errorf("%w: count and price must not be negative", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pen, ok, err := s.repos.Pens.Update(ctx, id, patch)
	if err != nil {
		return models.AnimalPen{}, fmt.Errorf("update pen: %w", err)
	}
	if !ok {
		return models.AnimalPen{}, ErrPenNotFound
	}
	return pen, nil
}

// DeletePen removes a pen. Its transactions and egg records are kept.
func (s *Service) DeletePen(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.repos.Pens.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete pen: %w", err)
	}
	if !removed {
		return ErrPenNotFound
	}
	s.logger.Info("pen deleted", zap.String("pen_id", id))
	return nil
}

// ResolvePen finds a pen by id, name or type, ignoring case. Ids win over
// names and names over types.
func (s *Service) ResolvePen(ctx context.Context, ref string) (models.AnimalPen, error) {
	ref = strings.TrimSpace(ref)
	pens, err := s.repos.Pens.GetAll(ctx)
	if err != nil {
		return models.AnimalPen{}, fmt.Errorf("load pens: %w", err)
	}

	for _, match := range []func(models.AnimalPen) bool{
		func(p models.AnimalPen) bool { return p.ID == ref },
		func(p models.AnimalPen) bool { return strings.EqualFold(p.Name, ref) },
		func(p models.AnimalPen) bool { return strings.EqualFold(p.Type, ref) },
	} {
		for _, p := range pens {
			if match(p) {
				return p, nil
			}
		}
	}
	return models.AnimalPen{}, fmt.Errorf("%w: %s", ErrPenNotFound, ref)
}

// Overview builds the operator dashboard.
func (s *Service) Overview(ctx context.Context) (models.Overview, error) {
	pens, err := s.repos.Pens.GetAll(ctx)
	if err != nil {
		return models.Overview{}, fmt.Errorf("load pens: %w", err)
	}
	feeds, err := s.repos.Feed.GetAll(ctx)
	if err != nil {
		return models.Overview{}, fmt.Errorf("load feed: %w", err)
	}

	return models.Overview{
		Pens:            stats.SortPensByType(pens),
		AnimalCount:     stats.AnimalCount(pens),
		CountsByType:    stats.CountsByType(pens),
		RevenueForecast: stats.RevenueForecast(pens),
		AveragePenValue: stats.AveragePenValue(pens),
		Feeds:           stats.FeedStatuses(feeds),
	}, nil
}
