package som

import (
	"github.com/hupe1980/vecml/learning"
	"github.com/hupe1980/vecml/sampleset"
)

// Snapshot is the persisted form of a Map. The code book is stored apart
// from the configuration so that it can be omitted for untrained maps.
type Snapshot struct {
	Width          int          `json:"width"`
	Height         int          `json:"height"`
	Topology       Topology     `json:"topology"`
	RateFunction   RateFunction `json:"rate_function"`
	LearningRate   float64      `json:"learning_rate"`
	Radius         float64      `json:"radius"`
	LearningLength int          `json:"learning_length"`
	Seed           int64        `json:"seed"`
	Iteration      int          `json:"iteration"`
	Features       int          `json:"features"`
	Codebook       []float64    `json:"codebook,omitempty"`
}

// Snapshot captures the map.
func (m *Map) Snapshot() Snapshot {
	return Snapshot{
		Width:          m.width,
		Height:         m.height,
		Topology:       m.topology,
		RateFunction:   m.rateFunction,
		LearningRate:   m.rate,
		Radius:         m.radius,
		LearningLength: m.learningLength,
		Seed:           m.seed,
		Iteration:      m.iteration,
		Features:       m.codebook.Features(),
		Codebook:       append([]float64(nil), m.codebook.Data()...),
	}
}

// FromSnapshot restores a map. Learning continues where it stopped, but
// with a freshly seeded random source.
func FromSnapshot(s Snapshot) (*Map, error) {
	m := New(
		WithSize(s.Width, s.Height),
		WithTopology(s.Topology),
		WithRateFunction(s.RateFunction),
		WithLearningRate(s.LearningRate),
		WithRadius(s.Radius),
		WithLearningLength(s.LearningLength),
		WithSeed(s.Seed),
	)
	if len(s.Codebook) == 0 {
		return m, nil
	}

	cb, err := sampleset.FromData(append([]float64(nil), s.Codebook...), s.Features)
	if err != nil {
		return nil, learning.WrapError(learning.CodeInvalidArgument, "invalid code book", err)
	}
	if cb.Len() != m.Nodes() {
		return nil, learning.Errorf(learning.CodeInvalidArgument,
			"code book has %d nodes, grid has %d", cb.Len(), m.Nodes())
	}
	m.codebook = cb
	m.diff = make([]float64, s.Features)
	m.iteration = min(s.Iteration, m.learningLength)
	return m, nil
}
