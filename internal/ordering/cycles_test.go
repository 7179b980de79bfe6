package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCycles(t *testing.T) {
	t.Run("empty graph has no cycles", func(t *testing.T) {
		assert.NoError(t, New().DetectCycles())
	})

	t.Run("valid dag has no cycles", func(t *testing.T) {
		g := New()
		mustAdd(t, g,
			js("a"),
			js("b").AfterIDs("a"),
			js("c").AfterIDs("a", "b"),
			js("d").AfterIDs("c"),
		)
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("self reference is detected", func(t *testing.T) {
		g := New()
		mustAdd(t, g, js("a").AfterIDs("a"))

		err := g.DetectCycles()
		require.ErrorIs(t, err, ErrCycleFound)
		var gErr *GraphError
		require.ErrorAs(t, err, &gErr)
		assert.Equal(t, []string{"a", "a"}, gErr.Cycle)
	})

	t.Run("mutual declarations are detected", func(t *testing.T) {
		g := New()
		mustAdd(t, g, js("a").AfterIDs("b"), js("b").AfterIDs("a"))

		err := g.DetectCycles()
		require.ErrorIs(t, err, ErrCycleFound)
		assert.ErrorContains(t, err, "cycle detected")
	})

	t.Run("longer cycle reports its path", func(t *testing.T) {
		g := New()
		mustAdd(t, g,
			js("a").AfterIDs("b"),
			js("b").AfterIDs("c"),
			js("c").AfterIDs("a"),
		)

		err := g.DetectCycles()
		require.ErrorIs(t, err, ErrCycleFound)
		var gErr *GraphError
		require.ErrorAs(t, err, &gErr)
		require.Len(t, gErr.Cycle, 4)
		assert.Equal(t, gErr.Cycle[0], gErr.Cycle[len(gErr.Cycle)-1])
		assert.ElementsMatch(t, []string{"a", "b", "c"}, gErr.Cycle[:3])
	})

	t.Run("cycle in a disjoint component is detected", func(t *testing.T) {
		g := New()
		mustAdd(t, g,
			js("a"),
			js("b").AfterIDs("a"),
			js("x"),
			js("y").AfterIDs("x", "z"),
			js("z").AfterIDs("y"),
		)
		assert.ErrorIs(t, g.DetectCycles(), ErrCycleFound)
	})
}
