package idgen

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDFormat(t *testing.T) {
	fixed := time.UnixMilli(1704067200000)
	g := NewWithClock(func() time.Time { return fixed })

	id := g.NewID()
	parts := strings.SplitN(id, "-", 2)
	require.Len(t, parts, 2)
	assert.Equal(t, "1704067200000", parts[0])
	assert.Len(t, parts[1], suffixLen)
}

func TestNewIDUnique(t *testing.T) {
	g := New()
	seen := make(map[string]struct{}, 5000)
	for i := 0; i < 5000; i++ {
		id := g.NewID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestNewIDTimestampNeverGoesBack(t *testing.T) {
	times := []time.Time{
		time.UnixMilli(2000),
		time.UnixMilli(1000), // clock stepped backwards
		time.UnixMilli(3000),
	}
	i := 0
	g := NewWithClock(func() time.Time {
		ts := times[i]
		i++
		return ts
	})

	var got []int64
	for range times {
		ms, err := strconv.ParseInt(strings.SplitN(g.NewID(), "-", 2)[0], 10, 64)
		require.NoError(t, err)
		got = append(got, ms)
	}
	assert.Equal(t, []int64{2000, 2000, 3000}, got)
}
