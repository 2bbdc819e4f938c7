package stump

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecml/learning"
	"github.com/hupe1980/vecml/sampleset"
	"github.com/hupe1980/vecml/testutil"
)

func learn(t *testing.T, rows [][]float64, labels, weights []float64) *Stump {
	t.Helper()
	samples, err := sampleset.FromRows(rows)
	require.NoError(t, err)
	s := New()
	require.NoError(t, s.Learn(context.Background(), samples, labels, weights))
	return s
}

func TestLearn(t *testing.T) {
	t.Run("Separable", func(t *testing.T) {
		s := learn(t, [][]float64{{1}, {2}, {3}, {4}}, []float64{0, 0, 1, 1}, nil)
		assert.Equal(t, 0, s.Feature())
		assert.Equal(t, 2.5, s.Threshold())
		l, r := s.Labels()
		assert.Equal(t, 0.0, l)
		assert.Equal(t, 1.0, r)
		assert.Equal(t, 0.0, s.Cost())
		assert.Equal(t, 0.0, s.Classify([]float64{2.5}))
		assert.Equal(t, 1.0, s.Classify([]float64{2.6}))
	})

	t.Run("Reversed", func(t *testing.T) {
		s := learn(t, [][]float64{{1}, {2}, {3}, {4}}, []float64{1, 1, 0, 0}, nil)
		l, r := s.Labels()
		assert.Equal(t, 1.0, l)
		assert.Equal(t, 0.0, r)
	})

	t.Run("SelectsFeature", func(t *testing.T) {
		rows := [][]float64{{5, 0}, {1, 1}, {4, 10}, {2, 11}}
		s := learn(t, rows, []float64{0, 0, 1, 1}, nil)
		assert.Equal(t, 1, s.Feature())
		assert.Equal(t, 5.5, s.Threshold())
	})

	t.Run("Weighted", func(t *testing.T) {
		s := learn(t, [][]float64{{1}, {2}, {3}}, []float64{0, 1, 0}, []float64{1, 10, 1})
		assert.Equal(t, 1.5, s.Threshold())
		assert.Equal(t, 1.0, s.Cost())
		assert.Equal(t, 1.0, s.Classify([]float64{3}))
	})

	t.Run("Duplicates", func(t *testing.T) {
		s := learn(t, [][]float64{{1}, {1}, {2}, {2}}, []float64{0, 1, 1, 1}, nil)
		// The two samples at 1 cannot be separated.
		assert.Equal(t, 1.0, s.Cost())
		assert.Equal(t, 1.5, s.Threshold())
	})

	t.Run("MultiClass", func(t *testing.T) {
		s := learn(t, [][]float64{{1}, {2}, {3}, {4}, {5}, {6}}, []float64{0, 0, 1, 1, 2, 2}, nil)
		assert.Equal(t, 2.0, s.Cost())
	})

	t.Run("SingleClass", func(t *testing.T) {
		s := learn(t, [][]float64{{1}, {2}}, []float64{3, 3}, nil)
		assert.True(t, s.Trained())
		assert.Equal(t, 3.0, s.Classify([]float64{-100}))
		assert.Equal(t, 3.0, s.Classify([]float64{100}))
	})

	t.Run("NaNLabelsIgnored", func(t *testing.T) {
		s := learn(t, [][]float64{{1}, {2}, {3}, {4}}, []float64{0, math.NaN(), 1, math.NaN()}, nil)
		assert.Equal(t, 0.0, s.Cost())
		assert.Equal(t, 2.0, s.Threshold())
	})

	t.Run("Empty", func(t *testing.T) {
		s := New()
		require.NoError(t, s.Learn(context.Background(), sampleset.New(2), []float64{}, nil))
		assert.False(t, s.Trained())
		assert.True(t, math.IsNaN(s.Classify([]float64{1, 2})))
	})

	t.Run("RequiresLabels", func(t *testing.T) {
		samples, _ := sampleset.FromRows([][]float64{{1}})
		err := New().Learn(context.Background(), samples, nil, nil)
		assert.ErrorIs(t, err, learning.ErrInvalidArgument)
	})

	t.Run("InvalidLabels", func(t *testing.T) {
		samples, err := sampleset.FromRows([][]float64{{1}, {2}, {3}})
		require.NoError(t, err)
		for _, bad := range []float64{math.Inf(1), 1.5, 1e15} {
			s := New()
			err := s.Learn(context.Background(), samples, []float64{0, 1, bad}, nil)
			assert.ErrorIs(t, err, learning.ErrInvalidArgument, "%v", bad)
			assert.False(t, s.Trained())
		}
	})

	t.Run("Canceled", func(t *testing.T) {
		samples, _ := sampleset.FromRows([][]float64{{1}, {2}})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := New().Learn(ctx, samples, []float64{0, 1}, nil)
		assert.ErrorIs(t, err, learning.ErrLearningInterrupted)
	})
}

// bruteForceCost evaluates every threshold at a sample value or between two
// sample values, for every ordered label pair.
func bruteForceCost(samples *sampleset.SampleSet, labels, weights []float64, classes int) float64 {
	best := math.Inf(1)
	for f := range samples.Features() {
		var thresholds []float64
		for i := range samples.Len() {
			thresholds = append(thresholds, samples.At(i, f))
			for j := range samples.Len() {
				thresholds = append(thresholds, (samples.At(i, f)+samples.At(j, f))/2)
			}
		}
		for _, t := range thresholds {
			for l := range classes {
				for r := range classes {
					if l == r {
						continue
					}
					cost := 0.0
					for i := range samples.Len() {
						predicted := r
						if samples.At(i, f) <= t {
							predicted = l
						}
						if float64(predicted) != labels[i] {
							cost += weights[i]
						}
					}
					best = math.Min(best, cost)
				}
			}
		}
	}
	return best
}

func TestOptimality(t *testing.T) {
	rng := testutil.NewRNG(11)
	for trial := range 20 {
		n, features, classes := 12+rng.Intn(12), 1+rng.Intn(3), 2+rng.Intn(2)
		samples := sampleset.New(features)
		labels := make([]float64, n)
		weights := make([]float64, n)
		for i := range n {
			row := make([]float64, features)
			for j := range row {
				// Coarse values produce duplicates.
				row[j] = float64(rng.Intn(6))
			}
			require.NoError(t, samples.Append(row))
			labels[i] = float64(i % classes)
			weights[i] = rng.Float64()
		}

		s := New()
		require.NoError(t, s.Learn(context.Background(), samples, labels, weights))

		want := bruteForceCost(samples, labels, weights, classes)
		assert.InDelta(t, want, s.Cost(), 1e-9, "trial %d", trial)

		var got float64
		for i := range n {
			if s.Classify(samples.Row(i)) != labels[i] {
				got += weights[i]
			}
		}
		assert.InDelta(t, s.Cost(), got, 1e-9, "trial %d", trial)
	}
}

func TestSnapshot(t *testing.T) {
	s := learn(t, [][]float64{{1, 9}, {2, 8}, {3, 7}}, []float64{1, 1, 0}, nil)
	restored, err := FromSnapshot(s.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), restored.Snapshot())
	assert.Equal(t, s.Classify([]float64{2.9, 0}), restored.Classify([]float64{2.9, 0}))

	_, err = FromSnapshot(Snapshot{Feature: -1})
	assert.Error(t, err)
}

func TestAlgorithm(t *testing.T) {
	s := New()
	assert.False(t, s.Converged())
	assert.True(t, s.Capabilities().Has(learning.WeightedLearner))
	assert.False(t, s.Capabilities().Has(learning.OnlineLearner))
	assert.True(t, math.IsNaN(s.LearnOne([]float64{1}, 0, 1)))
}
