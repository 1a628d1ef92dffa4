// Package farm holds the typed repositories over the farm's bucket store and
// the startup seed and reconciliation routine.
//
// Repositories never validate field values and never cascade across buckets;
// lookups are linear scans and every mutation rewrites the whole bucket.
// Not-found is reported through a boolean, never through an error.
package farm

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/lirio/internal/domain/models"
	"github.com/mamadbah2/lirio/internal/idgen"
	"github.com/mamadbah2/lirio/internal/storage"
)

// IDGenerator assigns identifiers to new records.
type IDGenerator interface {
	NewID() string
}

// Option customizes Repositories construction.
type Option func(*Repositories)

// WithClock replaces the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repositories) { r.now = now }
}

// WithIDGenerator replaces the identifier source.
func WithIDGenerator(ids IDGenerator) Option {
	return func(r *Repositories) { r.ids = ids }
}

// Repositories bundles one repository per bucket over a shared store.
type Repositories struct {
	Pens         *PenRepository
	Feed         *FeedRepository
	Transactions *TransactionRepository
	Eggs         *EggRepository
	Vegetables   *VegetableRepository
	Users        *UserRepository

	store  *storage.Store
	ids    IDGenerator
	now    func() time.Time
	logger *zap.Logger
}

// New wires the repositories to store.
func New(store *storage.Store, logger *zap.Logger, opts ...Option) *Repositories {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Repositories{
		store:  store,
		ids:    idgen.New(),
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}

	backend := store.Backend()
	r.Pens = &PenRepository{repo: r, coll: storage.NewCollection[models.AnimalPen](backend, storage.BucketPens)}
	r.Feed = &FeedRepository{repo: r, coll: storage.NewCollection[models.FeedInventory](backend, storage.BucketFeedInventory)}
	r.Transactions = &TransactionRepository{repo: r, coll: storage.NewCollection[models.AnimalTransaction](backend, storage.BucketTransactions)}
	r.Eggs = &EggRepository{repo: r, coll: storage.NewCollection[models.EggProduction](backend, storage.BucketEggProduction)}
	r.Vegetables = &VegetableRepository{repo: r, coll: storage.NewCollection[models.VegetableProduction](backend, storage.BucketVegetables)}
	r.Users = &UserRepository{coll: storage.NewCollection[models.AppUser](backend, storage.BucketUsers)}

	return r
}

// Store returns the shared store.
func (r *Repositories) Store() *storage.Store { return r.store }

func (r *Repositories) timestamp() time.Time {
	return r.now().UTC()
}

// latestFirst orders records by creation time, newest first, and truncates to
// limit when limit is positive. Records with equal timestamps keep storage order.
func latestFirst[T any](records []T, createdAt func(T) time.Time, limit int) []T {
	sort.SliceStable(records, func(i, j int) bool {
		return createdAt(records[i]).After(createdAt(records[j]))
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}
