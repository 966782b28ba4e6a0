package idx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/aegis/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewAndParse(t *testing.T) {
	id := idx.New()
	require.NotEmpty(t, id.String())

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
	require.False(t, id.IsZero())
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "not-a-ulid", "01ARZ3NDEKTSV4RRFFQ69G5FA"} {
		_, err := idx.Parse(in)
		require.ErrorIs(t, err, idx.ErrInvalid, "input %q", in)
	}
}

func TestGeneratorIsMonotonic(t *testing.T) {
	fixed := time.Unix(1700000000, 0)
	g := idx.NewGenerator(func() time.Time { return fixed })

	prev := g.New()
	for range 1000 {
		next := g.New()
		require.Equal(t, 1, idx.Compare(next, prev))
		prev = next
	}
}

func TestGeneratorSurvivesClockGoingBackwards(t *testing.T) {
	now := time.Unix(1700000000, 0)
	g := idx.NewGenerator(func() time.Time { return now })

	a := g.New()
	now = now.Add(-time.Hour)
	b := g.New()

	require.Equal(t, 1, idx.Compare(b, a))
	require.Equal(t, a.Time(), b.Time())
}

func TestTimeExtraction(t *testing.T) {
	tm := time.Unix(1700000000, 0).UTC()
	g := idx.NewGenerator(func() time.Time { return tm })

	require.Equal(t, tm, g.New().Time())
	require.True(t, idx.Zero.Time().IsZero())
}
