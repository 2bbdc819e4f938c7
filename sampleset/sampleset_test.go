package sampleset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleSet(t *testing.T) {
	t.Run("AppendFixesDimension", func(t *testing.T) {
		s := New(0)
		require.NoError(t, s.Append([]float64{1, 2, 3}))
		assert.Equal(t, 3, s.Features())
		assert.Equal(t, 1, s.Len())

		err := s.Append([]float64{1, 2})
		assert.ErrorIs(t, err, ErrFeatureCountMismatch)
		assert.Equal(t, 1, s.Len())
	})

	t.Run("RowAliasesStorage", func(t *testing.T) {
		s, err := FromRows([][]float64{{1, 2}, {3, 4}})
		require.NoError(t, err)
		s.Row(1)[0] = 30
		assert.Equal(t, 30.0, s.At(1, 0))
	})

	t.Run("RemoveAndResize", func(t *testing.T) {
		s, err := FromRows([][]float64{{1, 2}, {3, 4}, {5, 6}})
		require.NoError(t, err)
		s.Remove(1)
		assert.Equal(t, 2, s.Len())
		assert.Equal(t, []float64{5, 6}, s.Row(1))

		s.Resize(4)
		assert.Equal(t, 4, s.Len())
		assert.Equal(t, []float64{0, 0}, s.Row(3))

		s.Resize(1)
		assert.Equal(t, 1, s.Len())
	})

	t.Run("Clone", func(t *testing.T) {
		s, _ := FromRows([][]float64{{1, 2}})
		c := s.Clone()
		c.Row(0)[0] = 9
		assert.Equal(t, 1.0, s.At(0, 0))
	})

	t.Run("FromData", func(t *testing.T) {
		s, err := FromData([]float64{1, 2, 3, 4}, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, s.Len())

		_, err = FromData([]float64{1, 2, 3}, 2)
		assert.ErrorIs(t, err, ErrFeatureCountMismatch)
	})

	t.Run("Empty", func(t *testing.T) {
		var s *SampleSet
		assert.Equal(t, 0, s.Len())
		assert.Equal(t, 0, New(4).Len())
	})
}

func TestWeights(t *testing.T) {
	w := []float64{1, 1, 2}
	assert.True(t, NormalizeWeights(w))
	assert.InDelta(t, 0.25, w[0], 1e-12)
	assert.InDelta(t, 0.5, w[2], 1e-12)

	zero := []float64{0, 0}
	assert.False(t, NormalizeWeights(zero))
	assert.Equal(t, []float64{0, 0}, zero)

	assert.Equal(t, []float64{1, 1}, UniformWeights(2))
}

func TestClasses(t *testing.T) {
	labels := []float64{0, 2, math.NaN(), 2}
	assert.Equal(t, 3, ClassCount(labels))
	assert.Equal(t, 2, DistinctClasses(labels))
	assert.Equal(t, 0, ClassCount(nil))
}
