package neighbor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	t.Run("KeepsSmallest", func(t *testing.T) {
		l := NewList(3)
		assert.True(t, math.IsInf(l.Worst(), 1))

		for i, d := range []float64{5, 1, 9, 3, 7, 0.5} {
			l.Offer(d, i)
		}
		require.True(t, l.Full())
		assert.Equal(t, 3.0, l.Worst())

		got := l.Sorted()
		assert.Equal(t, []Match{{0.5, 5}, {1, 1}, {3, 3}}, got)
		assert.Equal(t, []int{5, 1, 3}, Indices(got))
	})

	t.Run("StrictlyLess", func(t *testing.T) {
		l := NewList(1)
		assert.True(t, l.Offer(2, 0))
		assert.False(t, l.Offer(2, 1))
		top, ok := l.Top()
		require.True(t, ok)
		assert.Equal(t, 0, top.Index)
	})

	t.Run("RejectsNaN", func(t *testing.T) {
		l := NewList(2)
		assert.False(t, l.Offer(math.NaN(), 0))
		assert.Equal(t, 0, l.Len())
	})

	t.Run("ZeroCapacity", func(t *testing.T) {
		l := NewList(0)
		assert.False(t, l.Offer(1, 0))
		_, ok := l.Top()
		assert.False(t, ok)
		assert.Empty(t, l.Sorted())
	})

	t.Run("Reset", func(t *testing.T) {
		l := NewList(2)
		l.Offer(1, 0)
		l.Reset()
		assert.Equal(t, 0, l.Len())
		assert.Equal(t, 2, l.Cap())
	})
}
