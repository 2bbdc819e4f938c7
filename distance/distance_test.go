package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecml/learning"
)

func TestMeasures(t *testing.T) {
	tests := []struct {
		name     string
		f        Func
		a, b     []float64
		expected float64
	}{
		{"SquaredGeometric", SquaredGeometric, []float64{1, 2, 3}, []float64{4, 5, 6}, 27},
		{"SquaredGeometricEmpty", SquaredGeometric, []float64{}, []float64{}, 0},
		{"Geometric", Geometric, []float64{0, 0}, []float64{3, 4}, 5},
		{"CosineParallel", Cosine, []float64{1, 2}, []float64{2, 4}, 0},
		{"CosineOrthogonal", Cosine, []float64{1, 0}, []float64{0, 1}, 1},
		{"CosineZero", Cosine, []float64{0, 0}, []float64{1, 1}, 1},
		{"HistogramIntersection", HistogramIntersection, []float64{0.2, 0.8}, []float64{0.5, 0.5}, -0.7},
		{"ChiSquared", ChiSquared, []float64{1, 0, 2}, []float64{3, 0, 2}, 1},
		{"Hamming", Hamming, []float64{1, 2, 3, 4}, []float64{1, 0, 3, 0}, 2},
		{"LogLikelihood", LogLikelihood, []float64{2, 0}, []float64{math.E, 0}, -2},
		{"JeffreysIdentical", JeffreysDivergence, []float64{0.5, 0.5}, []float64{0.5, 0.5}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.f(tt.a, tt.b), 1e-9)
		})
	}

	t.Run("JeffreysSymmetric", func(t *testing.T) {
		a := []float64{0.1, 0.9}
		b := []float64{0.6, 0.4}
		assert.InDelta(t, JeffreysDivergence(a, b), JeffreysDivergence(b, a), 1e-12)
		assert.Greater(t, JeffreysDivergence(a, b), 0.0)
	})

	t.Run("LogLikelihoodZeroModel", func(t *testing.T) {
		d := LogLikelihood([]float64{1}, []float64{0})
		assert.False(t, math.IsInf(d, 0))
		assert.Greater(t, d, 0.0)
	})
}

func TestMetric(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		assert.Equal(t, "SquaredGeometric", MetricSquaredGeometric.String())
		assert.Equal(t, "ChiSquared", MetricChiSquared.String())
		assert.Equal(t, "Unknown(99)", Metric(99).String())
	})

	t.Run("Provider", func(t *testing.T) {
		for m := MetricSquaredGeometric; m <= MetricJeffreysDivergence; m++ {
			f, err := Provider(m)
			require.NoError(t, err, m.String())
			assert.NotNil(t, f)
		}
		_, err := Provider(Metric(99))
		assert.Error(t, err)
		assert.Panics(t, func() { MustProvider(Metric(99)) })
	})

	t.Run("Parse", func(t *testing.T) {
		m, err := ParseMetric("Hamming")
		require.NoError(t, err)
		assert.Equal(t, MetricHamming, m)
		_, err = ParseMetric("Manhattan")
		assert.Error(t, err)
	})
}

func TestMulti(t *testing.T) {
	a := []float64{0, 0, 1, 2, 3}
	b := []float64{3, 4, 1, 0, 3}

	measures := []Measure{Func(Geometric), Func(Hamming)}
	boundaries := []int{2, 5}

	tests := []struct {
		name     string
		opts     []MultiOption
		expected float64
	}{
		{"Sum", nil, 5 + 1},
		{"Product", []MultiOption{WithReducer(ReduceProduct)}, 5 * 1},
		{"Min", []MultiOption{WithReducer(ReduceMin)}, 1},
		{"Max", []MultiOption{WithReducer(ReduceMax)}, 5},
		{"Weighted", []MultiOption{WithWeights([]float64{2, 10})}, 2*5 + 10*1},
		{"WeightedMin", []MultiOption{WithWeights([]float64{0.1, 1}), WithReducer(ReduceMin)}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMulti(measures, boundaries, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, 5, m.Features())
			assert.InDelta(t, tt.expected, m.Distance(a, b), 1e-9)
		})
	}

	t.Run("ShortVector", func(t *testing.T) {
		m, err := NewMulti(measures, boundaries)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(m.Distance(a[:3], b[:3])))
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := NewMulti(nil, nil)
		assert.ErrorIs(t, err, learning.ErrBoundaryMismatch)

		_, err = NewMulti(measures, []int{2})
		assert.ErrorIs(t, err, learning.ErrBoundaryMismatch)

		_, err = NewMulti(measures, []int{3, 3})
		assert.ErrorIs(t, err, learning.ErrBoundaryMismatch)

		_, err = NewMulti(measures, boundaries, WithWeights([]float64{1}))
		assert.ErrorIs(t, err, learning.ErrBoundaryMismatch)

		_, err = NewMulti([]Measure{nil, Func(Hamming)}, boundaries)
		assert.ErrorIs(t, err, learning.ErrInvalidArgument)

		_, err = NewMulti(measures, boundaries, WithReducer(Reducer(9)))
		assert.ErrorIs(t, err, learning.ErrInvalidArgument)
	})
}
