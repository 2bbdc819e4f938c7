package distance

import (
	"fmt"
	"math"

	"github.com/hupe1980/vecml/learning"
)

// Reducer combines per-segment distances of a Multi measure.
type Reducer int

const (
	ReduceSum Reducer = iota
	ReduceProduct
	ReduceMin
	ReduceMax
)

func (r Reducer) String() string {
	switch r {
	case ReduceSum:
		return "Sum"
	case ReduceProduct:
		return "Product"
	case ReduceMin:
		return "Min"
	case ReduceMax:
		return "Max"
	default:
		return fmt.Sprintf("Unknown(%d)", r)
	}
}

// Multi measures a vector that concatenates several feature vectors.
//
// Segment i spans [boundaries[i-1], boundaries[i]) and is compared with
// measures[i]. Each segment distance is multiplied by its weight before the
// reducer combines them.
type Multi struct {
	measures   []Measure
	boundaries []int
	weights    []float64
	reducer    Reducer
}

// MultiOption configures a Multi measure.
type MultiOption func(*Multi)

// WithReducer selects how segment distances are combined. Default: ReduceSum.
func WithReducer(r Reducer) MultiOption {
	return func(m *Multi) { m.reducer = r }
}

// WithWeights sets one weight per segment. Default: 1 for every segment.
func WithWeights(weights []float64) MultiOption {
	return func(m *Multi) { m.weights = append([]float64(nil), weights...) }
}

// NewMulti creates a combined measure. boundaries holds the exclusive end
// index of each segment and must be strictly increasing.
func NewMulti(measures []Measure, boundaries []int, opts ...MultiOption) (*Multi, error) {
	if len(measures) == 0 {
		return nil, learning.Errorf(learning.CodeBoundaryMismatch, "no measures")
	}
	if len(measures) != len(boundaries) {
		return nil, learning.Errorf(learning.CodeBoundaryMismatch,
			"%d measures but %d boundaries", len(measures), len(boundaries))
	}
	prev := 0
	for i, b := range boundaries {
		if b <= prev {
			return nil, learning.Errorf(learning.CodeBoundaryMismatch,
				"boundary %d (%d) does not exceed previous boundary %d", i, b, prev)
		}
		prev = b
	}
	for i, ms := range measures {
		if ms == nil {
			return nil, learning.Errorf(learning.CodeInvalidArgument, "measure %d is nil", i)
		}
	}

	m := &Multi{
		measures:   append([]Measure(nil), measures...),
		boundaries: append([]int(nil), boundaries...),
		reducer:    ReduceSum,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.weights == nil {
		m.weights = make([]float64, len(measures))
		for i := range m.weights {
			m.weights[i] = 1
		}
	} else if len(m.weights) != len(measures) {
		return nil, learning.Errorf(learning.CodeBoundaryMismatch,
			"%d weights for %d measures", len(m.weights), len(measures))
	}
	if m.reducer < ReduceSum || m.reducer > ReduceMax {
		return nil, learning.Errorf(learning.CodeInvalidArgument, "unknown reducer %v", m.reducer)
	}

	return m, nil
}

// Features returns the total vector length the measure expects.
func (m *Multi) Features() int {
	return m.boundaries[len(m.boundaries)-1]
}

// Distance implements Measure. It returns NaN if the vectors are shorter
// than the last boundary.
func (m *Multi) Distance(sample, model []float64) float64 {
	if len(sample) < m.Features() || len(model) < m.Features() {
		return math.NaN()
	}

	var result float64
	switch m.reducer {
	case ReduceProduct:
		result = 1
	case ReduceMin:
		result = math.Inf(1)
	case ReduceMax:
		result = math.Inf(-1)
	}

	start := 0
	for i, ms := range m.measures {
		end := m.boundaries[i]
		d := m.weights[i] * ms.Distance(sample[start:end], model[start:end])
		switch m.reducer {
		case ReduceSum:
			result += d
		case ReduceProduct:
			result *= d
		case ReduceMin:
			result = math.Min(result, d)
		case ReduceMax:
			result = math.Max(result, d)
		}
		start = end
	}
	return result
}
