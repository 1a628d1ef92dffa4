package storage

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/lirio/internal/config"
)

type record struct {
	ID    string  `json:"id"`
	Count int     `json:"count"`
	Price float64 `json:"price"`
}

func TestCollectionAbsentBucketIsEmpty(t *testing.T) {
	c := NewCollection[record](NewMemory(), "things")

	got, err := c.GetAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCollectionRoundTripKeepsOrder(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[record](NewMemory(), "things")

	in := []record{{ID: "b", Count: 2}, {ID: "a", Count: 1, Price: 9.5}}
	require.NoError(t, c.SetAll(ctx, in))

	got, err := c.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestCollectionSetAllNilWritesEmptyArray(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	c := NewCollection[record](mem, "things")

	require.NoError(t, c.SetAll(ctx, nil))
	payload, err := mem.Load(ctx, "things")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(payload))
}

func TestCollectionCorruptPayload(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	require.NoError(t, mem.Save(ctx, "things", []byte("{not json")))

	_, err := NewCollection[record](mem, "things").GetAll(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode things")
}

func TestUnavailableDegradesSilently(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[record](Unavailable{}, BucketPens)

	require.NoError(t, c.SetAll(ctx, []record{{ID: "x"}}))
	got, err := c.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	s := NewStore(Unavailable{})
	require.NoError(t, s.SetFlag(ctx, FlagInitialized, true))
	ok, err := s.Flag(ctx, FlagInitialized)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreFlag(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemory())

	ok, err := s.Flag(ctx, FlagInitialized)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetFlag(ctx, FlagInitialized, true))
	ok, err = s.Flag(ctx, FlagInitialized)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.SetFlag(ctx, FlagInitialized, false))
	ok, err = s.Flag(ctx, FlagInitialized)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSnapshotRestore(t *testing.T) {
	ctx := context.Background()
	src := NewStore(NewMemory())
	require.NoError(t, NewCollection[record](src.Backend(), BucketPens).SetAll(ctx, []record{{ID: "p1", Count: 3}}))
	require.NoError(t, src.SetFlag(ctx, FlagInitialized, true))

	snap, err := src.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap, 2)
	assert.JSONEq(t, `[{"id":"p1","count":3,"price":0}]`, string(snap[BucketPens]))

	snap["not_a_bucket"] = json.RawMessage(`[]`)
	dst := NewStore(NewMemory())
	require.NoError(t, dst.Restore(ctx, snap))

	got, err := NewCollection[record](dst.Backend(), BucketPens).GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []record{{ID: "p1", Count: 3}}, got)

	ok, err := dst.Flag(ctx, FlagInitialized)
	require.NoError(t, err)
	assert.True(t, ok)

	stray, err := dst.Backend().Load(ctx, "not_a_bucket")
	require.NoError(t, err)
	assert.Nil(t, stray)
}

type failingBackend struct{ Memory }

func (f *failingBackend) Load(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func TestSnapshotPropagatesErrors(t *testing.T) {
	_, err := NewStore(&failingBackend{}).Snapshot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestSQLiteBackendPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	first, err := OpenSQL(ctx, SQLite, path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}

	missing, err := first.Load(ctx, BucketPens)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, first.Save(ctx, BucketPens, []byte(`[{"id":"a"}]`)))
	require.NoError(t, first.Save(ctx, BucketPens, []byte(`[{"id":"b"}]`)))
	require.NoError(t, first.Close())

	second, err := OpenSQL(ctx, SQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	payload, err := second.Load(ctx, BucketPens)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"b"}]`, string(payload))

	var rows int
	require.NoError(t, second.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM lirio_state`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestInstrumentRecordsOperations(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	b := Instrument(NewMemory(), m)
	require.NoError(t, b.Save(ctx, BucketPens, []byte("[]")))
	_, err = b.Load(ctx, BucketPens)
	require.NoError(t, err)
	_, err = b.Load(ctx, BucketPens)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ops.WithLabelValues("save", BucketPens, "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ops.WithLabelValues("load", BucketPens, "success")))

	failing := Instrument(&failingBackend{}, m)
	_, err = failing.Load(ctx, BucketUsers)
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ops.WithLabelValues("load", BucketUsers, "error")))

	_, err = NewMetrics(reg)
	require.Error(t, err, "duplicate registration")
}

func TestInstrumentNilMetricsIsPassthrough(t *testing.T) {
	mem := NewMemory()
	assert.Same(t, mem, Instrument(mem, nil))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		b, err := Open(ctx, config.Config{Storage: config.StorageConfig{Driver: "memory"}}, nil)
		require.NoError(t, err)
		assert.IsType(t, &Memory{}, b)
	})

	t.Run("none", func(t *testing.T) {
		b, err := Open(ctx, config.Config{Storage: config.StorageConfig{Driver: "none"}}, nil)
		require.NoError(t, err)
		assert.IsType(t, Unavailable{}, b)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := config.Config{Storage: config.StorageConfig{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "lirio.db")}}
		b, err := Open(ctx, cfg, nil)
		if err != nil {
			t.Skipf("sqlite unavailable: %v", err)
		}
		t.Cleanup(func() { _ = b.Close() })
		assert.IsType(t, &SQLBackend{}, b)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Open(ctx, config.Config{Storage: config.StorageConfig{Driver: "redis"}}, nil)
		require.ErrorIs(t, err, ErrUnknownDriver)
	})
}
