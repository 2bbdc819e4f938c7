// Package som implements the Self-Organizing Map, an unsupervised vector
// quantizer whose code vectors are arranged on a 2-D grid.
package som

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/vecml/distance"
	"github.com/hupe1980/vecml/learning"
	"github.com/hupe1980/vecml/sampleset"
)

// Topology is the arrangement of map nodes.
type Topology int

const (
	// Square places every node at integer grid coordinates.
	Square Topology = iota
	// Hexagonal shifts every other row by half a node so that each node has
	// six equidistant neighbors.
	Hexagonal
)

func (t Topology) String() string {
	switch t {
	case Square:
		return "Square"
	case Hexagonal:
		return "Hexagonal"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// RateFunction is the decay of the learning rate over the learning length.
type RateFunction int

const (
	// LinearRate decays linearly to zero.
	LinearRate RateFunction = iota
	// InverseRate decays as c / (c + t) with c a hundredth of the learning
	// length.
	InverseRate
)

func (r RateFunction) String() string {
	switch r {
	case LinearRate:
		return "Linear"
	case InverseRate:
		return "Inverse"
	default:
		return fmt.Sprintf("Unknown(%d)", r)
	}
}

// Map is a Self-Organizing Map. It is not safe for concurrent learning.
type Map struct {
	width, height  int
	topology       Topology
	rateFunction   RateFunction
	rate           float64
	radius         float64
	learningLength int
	seed           int64

	codebook  *sampleset.SampleSet
	positions [][2]float64
	iteration int
	rng       *rand.Rand
	diff      []float64
}

// Option configures a Map.
type Option func(*Map)

// WithSize sets the grid size. Default: 10 x 10.
func WithSize(width, height int) Option {
	return func(m *Map) { m.width, m.height = max(width, 1), max(height, 1) }
}

// WithTopology selects the grid topology. Default: Square.
func WithTopology(t Topology) Option {
	return func(m *Map) { m.topology = t }
}

// WithRateFunction selects the learning rate decay. Default: LinearRate.
func WithRateFunction(r RateFunction) Option {
	return func(m *Map) { m.rateFunction = r }
}

// WithLearningRate sets the initial learning rate, clamped to (0, 1].
// Default: 0.5.
func WithLearningRate(r float64) Option {
	return func(m *Map) {
		if r > 0 {
			m.rate = math.Min(r, 1)
		}
	}
}

// WithRadius sets the initial neighborhood radius in grid units. Default:
// half the larger grid side.
func WithRadius(r float64) Option {
	return func(m *Map) { m.radius = r }
}

// WithLearningLength sets the number of iterations after which the map has
// converged. Default: 10000.
func WithLearningLength(n int) Option {
	return func(m *Map) { m.learningLength = max(n, 1) }
}

// WithSeed seeds the random initialization of the code book.
func WithSeed(seed int64) Option {
	return func(m *Map) { m.seed = seed }
}

// New creates an untrained map. The code book is initialized from the
// first sample's dimensionality.
func New(opts ...Option) *Map {
	m := &Map{
		width:          10,
		height:         10,
		rate:           0.5,
		learningLength: 10000,
		seed:           1,
		codebook:       sampleset.New(0),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.radius <= 0 {
		m.radius = math.Max(float64(max(m.width, m.height))/2, 1)
	}
	m.rng = rand.New(rand.NewSource(m.seed))
	m.positions = gridPositions(m.width, m.height, m.topology)
	return m
}

func gridPositions(width, height int, topology Topology) [][2]float64 {
	pos := make([][2]float64, 0, width*height)
	for y := range height {
		for x := range width {
			px, py := float64(x), float64(y)
			if topology == Hexagonal {
				px += 0.5 * float64(y%2)
				py *= math.Sqrt(3) / 2
			}
			pos = append(pos, [2]float64{px, py})
		}
	}
	return pos
}

// Size returns the grid width and height.
func (m *Map) Size() (width, height int) { return m.width, m.height }

// Nodes returns the number of map nodes.
func (m *Map) Nodes() int { return m.width * m.height }

// Position returns the grid coordinates of node i.
func (m *Map) Position(i int) (x, y float64) { return m.positions[i][0], m.positions[i][1] }

// Codebook returns the node vectors, one row per node.
func (m *Map) Codebook() *sampleset.SampleSet { return m.codebook }

// Iteration returns the number of samples learned so far.
func (m *Map) Iteration() int { return m.iteration }

func (m *Map) initialize(features int) {
	m.codebook = sampleset.New(features)
	v := make([]float64, features)
	for range m.Nodes() {
		for j := range v {
			v[j] = m.rng.Float64()
		}
		_ = m.codebook.Append(v)
	}
	m.diff = make([]float64, features)
}

// Classify returns the index of the node closest to features, or NaN if the
// map is untrained or the feature count differs.
func (m *Map) Classify(features []float64) float64 {
	if m.codebook.Len() == 0 || len(features) != m.codebook.Features() {
		return math.NaN()
	}
	return float64(m.winner(features))
}

func (m *Map) winner(features []float64) int {
	best, bestD := 0, math.Inf(1)
	for i := range m.codebook.Len() {
		if d := distance.SquaredGeometric(features, m.codebook.Row(i)); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

func (m *Map) progress() float64 {
	return math.Min(float64(m.iteration)/float64(m.learningLength), 1)
}

func (m *Map) currentRate() float64 {
	if m.rateFunction == InverseRate {
		c := math.Max(float64(m.learningLength)/100, 1)
		return m.rate * c / (c + float64(m.iteration))
	}
	return m.rate * (1 - m.progress())
}

func (m *Map) currentRadius() float64 {
	return 1 + (m.radius-1)*(1-m.progress())
}

// LearnOne moves the winning node and its grid neighbors towards features
// and returns the index of the winner. label and weight are ignored.
func (m *Map) LearnOne(features []float64, _, _ float64) float64 {
	if m.codebook.Len() == 0 {
		if len(features) == 0 {
			return math.NaN()
		}
		m.initialize(len(features))
	}
	if len(features) != m.codebook.Features() {
		return math.NaN()
	}

	w := m.winner(features)
	rate := m.currentRate()
	sigma := m.currentRadius()
	wx, wy := m.Position(w)
	for i := range m.codebook.Len() {
		x, y := m.Position(i)
		d2 := (x-wx)*(x-wx) + (y-wy)*(y-wy)
		h := math.Exp(-d2 / (2 * sigma * sigma))
		if h < 1e-6 {
			continue
		}
		node := m.codebook.Row(i)
		floats.SubTo(m.diff, features, node)
		floats.AddScaled(node, rate*h, m.diff)
	}
	if m.iteration < m.learningLength {
		m.iteration++
	}
	return float64(w)
}

// Learn presents samples repeatedly, in order, until the learning length is
// reached. labels and weights are ignored.
func (m *Map) Learn(ctx context.Context, samples *sampleset.SampleSet, labels, weights []float64) error {
	if err := learning.CheckInputs(samples, labels, weights); err != nil {
		return err
	}
	n := samples.Len()
	if n == 0 {
		return nil
	}
	if m.codebook.Len() > 0 && samples.Features() != m.codebook.Features() {
		return learning.Errorf(learning.CodeFeatureCountMismatch,
			"map has %d features, samples have %d", m.codebook.Features(), samples.Features())
	}

	for i := 0; !m.Converged(); i++ {
		if i%256 == 0 {
			if err := learning.Poll(ctx, nil, m.progress()); err != nil {
				return err
			}
		}
		m.LearnOne(samples.Row(i%n), math.NaN(), 1)
	}
	return nil
}

// Converged reports whether the learning length has been reached.
func (m *Map) Converged() bool { return m.iteration >= m.learningLength }

// Capabilities implements learning.Algorithm.
func (m *Map) Capabilities() learning.Capabilities {
	return learning.NonSupervisedLearner | learning.OnlineLearner
}

var _ learning.Model = (*Map)(nil)
