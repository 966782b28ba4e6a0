// Package idx generates lexicographically sortable identifiers (ULIDs).
// Signing key ids, verification ids and request ids all come from here, so
// ids minted later always sort after ids minted earlier.
package idx

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type ID string

// Zero represents the zero value ID, don't use this unless its a placeholder.
const Zero ID = ""

// ErrInvalid reports a malformed ULID string.
var ErrInvalid = errors.New("idx: invalid ulid")

var (
	globalOnce sync.Once
	global     *Generator
)

// Generator mints ULIDs from a monotonic entropy source. Two ids minted in
// the same millisecond still compare in mint order.
type Generator struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy *ulid.MonotonicEntropy
	last    ulid.ULID
}

// NewGenerator returns a Generator reading time from now. A nil now uses the
// wall clock.
func NewGenerator(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{
		now:     now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// New returns the next id. If the clock went backwards the previous
// timestamp is reused so ordering is preserved.
func (g *Generator) New() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := ulid.Timestamp(g.now().UTC())
	if ms < g.last.Time() {
		ms = g.last.Time()
	}

	u, err := ulid.New(ms, g.entropy)
	if err != nil {
		// Monotonic entropy overflowed within this millisecond; move on to the next one.
		u = ulid.MustNew(ms+1, g.entropy)
	}
	g.last = u
	return ID(u.String())
}

func initGlobal() {
	global = NewGenerator(nil)
}

// New returns a new id from the process-wide generator.
func New() ID {
	globalOnce.Do(initGlobal)
	return global.New()
}

// Parse parses a ULID string into an ID and validates its form.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalid
	}

	if _, err := ulid.ParseStrict(s); err != nil {
		return Zero, ErrInvalid
	}

	return ID(s), nil
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool { return id == Zero }

// String returns the canonical string form.
func (id ID) String() string { return string(id) }

// Time extracts the embedded UTC timestamp from the ID.
// If the ID is invalid or zero, it returns the zero time.
func (id ID) Time() time.Time {
	if id.IsZero() {
		return time.Time{}
	}

	u, err := ulid.ParseStrict(id.String())
	if err != nil {
		return time.Time{}
	}

	return ulid.Time(u.Time()).UTC()
}

// Compare reports the lexical ordering between a and b.
// Returns -1 if a<b, 0 if a==b, +1 if a>b.
func Compare(a, b ID) int {
	return strings.Compare(a.String(), b.String())
}
