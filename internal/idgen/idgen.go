// Package idgen produces record identifiers of the form "<unix-millis>-<suffix>".
package idgen

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const suffixLen = 9

// Generator hands out identifiers whose timestamp component never goes
// backwards within the lifetime of the generator, even if the clock does.
type Generator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// New returns a generator reading the wall clock.
func New() *Generator {
	return NewWithClock(time.Now)
}

// NewWithClock returns a generator using the supplied clock.
func NewWithClock(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

// NewID returns a fresh identifier. It never fails.
func (g *Generator) NewID() string {
	g.mu.Lock()
	ms := g.now().UnixMilli()
	if ms < g.last {
		ms = g.last
	}
	g.last = ms
	g.mu.Unlock()

	return strconv.FormatInt(ms, 10) + "-" + suffix()
}

func suffix() string {
	id, err := uuid.NewRandom()
	if err != nil {
		// entropy source unavailable; fall back to the runtime PRNG
		var b strings.Builder
		for b.Len() < suffixLen {
			b.WriteString(strconv.FormatUint(rand.Uint64(), 36))
		}
		return b.String()[:suffixLen]
	}
	return strings.ReplaceAll(id.String(), "-", "")[:suffixLen]
}
