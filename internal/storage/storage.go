// Package storage persists whole collections of flat JSON records under fixed
// bucket names. Every mutation rewrites the full bucket; there is no locking
// across a read-modify-write, so concurrent writers race with last-writer-wins.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Bucket keys of the persisted layout.
const (
	BucketPens          = "lirio_animal_pens"
	BucketFeedInventory = "lirio_feed_inventory"
	BucketTransactions  = "lirio_animal_transactions"
	BucketEggProduction = "lirio_egg_production"
	BucketVegetables    = "lirio_vegetable_production"
	BucketUsers         = "lirio_app_users"
	FlagInitialized     = "lirio_initialized"
	flagTrue            = "true"
	flagFalse           = "false"
)

// Keys lists every bucket and flag key, in seed order.
var Keys = []string{
	BucketPens,
	BucketFeedInventory,
	BucketTransactions,
	BucketEggProduction,
	BucketVegetables,
	BucketUsers,
	FlagInitialized,
}

// Backend stores opaque payloads by bucket name.
type Backend interface {
	// Load returns the payload stored under bucket, or nil when the bucket is absent.
	Load(ctx context.Context, bucket string) ([]byte, error)
	// Save replaces the payload stored under bucket.
	Save(ctx context.Context, bucket string, payload []byte) error
	Close() error
}

// Collection is a typed view over one bucket holding a JSON array of records.
type Collection[T any] struct {
	backend Backend
	bucket  string
}

// NewCollection binds a record type to a bucket.
func NewCollection[T any](backend Backend, bucket string) *Collection[T] {
	return &Collection[T]{backend: backend, bucket: bucket}
}

// Bucket returns the bucket name.
func (c *Collection[T]) Bucket() string { return c.bucket }

// GetAll returns the records in storage order. An absent bucket yields an empty slice.
func (c *Collection[T]) GetAll(ctx context.Context) ([]T, error) {
	payload, err := c.backend.Load(ctx, c.bucket)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.bucket, err)
	}

	records := []T{}
	if len(payload) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.bucket, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// SetAll overwrites the bucket with records.
func (c *Collection[T]) SetAll(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.bucket, err)
	}
	if err := c.backend.Save(ctx, c.bucket, payload); err != nil {
		return fmt.Errorf("save %s: %w", c.bucket, err)
	}
	return nil
}

// Store is the explicitly constructed persistence root handed to repositories.
type Store struct {
	backend Backend
}

// NewStore wraps a backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Backend exposes the underlying backend.
func (s *Store) Backend() Backend { return s.backend }

// Close releases the backend.
func (s *Store) Close() error { return s.backend.Close() }

// Flag reads a boolean flag; absent flags are false.
func (s *Store) Flag(ctx context.Context, key string) (bool, error) {
	payload, err := s.backend.Load(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load flag %s: %w", key, err)
	}
	return string(payload) == flagTrue, nil
}

// SetFlag persists a boolean flag.
func (s *Store) SetFlag(ctx context.Context, key string, value bool) error {
	payload := flagFalse
	if value {
		payload = flagTrue
	}
	if err := s.backend.Save(ctx, key, []byte(payload)); err != nil {
		return fmt.Errorf("save flag %s: %w", key, err)
	}
	return nil
}

// Snapshot maps bucket keys to their raw payloads.
type Snapshot map[string]json.RawMessage

// Snapshot loads every known key concurrently. Absent keys are omitted.
func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	var (
		mu   sync.Mutex
		snap = make(Snapshot, len(Keys))
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, key := range Keys {
		g.Go(func() error {
			payload, err := s.backend.Load(gctx, key)
			if err != nil {
				return fmt.Errorf("load %s: %w", key, err)
			}
			if payload == nil {
				return nil
			}
			mu.Lock()
			snap[key] = json.RawMessage(payload)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Restore writes back every known key present in snap. Unknown keys are ignored.
func (s *Store) Restore(ctx context.Context, snap Snapshot) error {
	for _, key := range Keys {
		payload, ok := snap[key]
		if !ok {
			continue
		}
		if err := s.backend.Save(ctx, key, payload); err != nil {
			return fmt.Errorf("restore %s: %w", key, err)
		}
	}
	return nil
}
