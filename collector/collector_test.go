package collector

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecml/learning"
	"github.com/hupe1980/vecml/sampleset"
)

func feed(c *Collector, n int) {
	for i := range n {
		c.LearnOne([]float64{float64(i)}, float64(i), 1)
	}
}

func TestLearnOne(t *testing.T) {
	t.Run("Unbounded", func(t *testing.T) {
		c := New()
		feed(c, 10)
		assert.Equal(t, 10, c.Len())
		assert.False(t, c.Full())
		assert.Equal(t, 9.0, c.Samples().At(9, 0))
		assert.Len(t, c.Labels(), 10)
		assert.Len(t, c.Weights(), 10)
	})

	t.Run("ReturnsNaN", func(t *testing.T) {
		assert.True(t, math.IsNaN(New().LearnOne([]float64{1}, 0, 1)))
	})

	t.Run("IgnoresMismatch", func(t *testing.T) {
		c := New()
		c.LearnOne([]float64{1, 2}, 0, 1)
		c.LearnOne([]float64{1}, 0, 1)
		assert.Equal(t, 1, c.Len())
		assert.Len(t, c.Labels(), 1)
	})
}

func TestFullBuffer(t *testing.T) {
	t.Run("DiscardNewSample", func(t *testing.T) {
		c := New(WithBatchSize(3), WithFullBufferBehavior(DiscardNewSample))
		feed(c, 10)
		assert.True(t, c.Full())
		assert.Equal(t, []float64{0, 1, 2}, c.Samples().Data())
		assert.Equal(t, []float64{0, 1, 2}, c.Labels())
	})

	t.Run("OverwriteOldestSample", func(t *testing.T) {
		c := New(WithBatchSize(3), WithFullBufferBehavior(OverwriteOldestSample))
		feed(c, 5)
		assert.Equal(t, []float64{3, 4, 2}, c.Samples().Data())
		assert.Equal(t, []float64{3, 4, 2}, c.Labels())
	})

	t.Run("OverwriteRandomSample", func(t *testing.T) {
		c := New(WithBatchSize(4), WithSeed(7))
		feed(c, 100)
		assert.Equal(t, 4, c.Len())
		// Labels and samples stay paired.
		for i, l := range c.Labels() {
			assert.Equal(t, l, c.Samples().At(i, 0))
		}
		replaced := 0
		for _, v := range c.Samples().Data() {
			if v >= 4 {
				replaced++
			}
		}
		assert.Greater(t, replaced, 0)
	})
}

func TestLearn(t *testing.T) {
	samples, err := sampleset.FromRows([][]float64{{1}, {2}, {3}})
	require.NoError(t, err)

	c := New()
	feed(c, 5)
	require.NoError(t, c.Learn(context.Background(), samples, nil, []float64{2, 2, 2}))
	assert.Equal(t, 3, c.Len())
	assert.True(t, math.IsNaN(c.Labels()[0]))
	assert.Equal(t, []float64{2, 2, 2}, c.Weights())

	t.Run("Bounded", func(t *testing.T) {
		c := New(WithBatchSize(2), WithFullBufferBehavior(DiscardNewSample))
		require.NoError(t, c.Learn(context.Background(), samples, []float64{0, 1, 2}, nil))
		assert.Equal(t, []float64{0, 1}, c.Labels())
		assert.Equal(t, []float64{1, 1}, c.Weights())
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		err := New().Learn(context.Background(), samples, []float64{1}, nil)
		assert.ErrorIs(t, err, learning.ErrInvalidArgument)
	})

	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := New().Learn(ctx, samples, nil, nil)
		assert.ErrorIs(t, err, learning.ErrLearningInterrupted)
	})
}

func TestAlgorithm(t *testing.T) {
	c := New()
	feed(c, 3)
	assert.False(t, c.Converged())
	caps := c.Capabilities()
	assert.True(t, caps.Has(learning.NonSupervisedLearner|learning.OnlineLearner|learning.WeightedLearner))

	c.Reset()
	assert.Equal(t, 0, c.Len())
	c.LearnOne([]float64{1, 2, 3}, 0, 1)
	assert.Equal(t, 3, c.Samples().Features())
	assert.Equal(t, "DiscardNewSample", DiscardNewSample.String())
}
