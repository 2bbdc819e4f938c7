// Package collector implements a learning algorithm that only gathers
// samples, labels and weights, optionally into a bounded buffer.
package collector

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/hupe1980/vecml/learning"
	"github.com/hupe1980/vecml/sampleset"
)

// FullBufferBehavior decides what happens to a new sample once the buffer
// holds BatchSize samples.
type FullBufferBehavior int

const (
	// OverwriteRandomSample replaces a uniformly chosen old sample.
	OverwriteRandomSample FullBufferBehavior = iota
	// OverwriteOldestSample replaces samples in arrival order.
	OverwriteOldestSample
	// DiscardNewSample keeps the buffer as it is.
	DiscardNewSample
)

func (b FullBufferBehavior) String() string {
	switch b {
	case OverwriteRandomSample:
		return "OverwriteRandomSample"
	case OverwriteOldestSample:
		return "OverwriteOldestSample"
	case DiscardNewSample:
		return "DiscardNewSample"
	default:
		return fmt.Sprintf("Unknown(%d)", b)
	}
}

// Collector accumulates samples. It is not safe for concurrent use.
type Collector struct {
	samples  *sampleset.SampleSet
	labels   []float64
	weights  []float64
	size     int
	behavior FullBufferBehavior
	oldest   int
	seed     int64
	rng      *rand.Rand
}

// Option configures a Collector.
type Option func(*Collector)

// WithBatchSize bounds the buffer to n samples. n <= 0 means unbounded.
func WithBatchSize(n int) Option {
	return func(c *Collector) { c.size = max(n, 0) }
}

// WithFullBufferBehavior selects the policy for a full buffer.
// Default: OverwriteRandomSample.
func WithFullBufferBehavior(b FullBufferBehavior) Option {
	return func(c *Collector) { c.behavior = b }
}

// WithSeed seeds the random replacement policy.
func WithSeed(seed int64) Option {
	return func(c *Collector) { c.seed = seed }
}

// New creates an empty collector.
func New(opts ...Option) *Collector {
	c := &Collector{samples: sampleset.New(0), seed: 1}
	for _, opt := range opts {
		opt(c)
	}
	c.rng = rand.New(rand.NewSource(c.seed))
	return c
}

// Samples returns the collected samples.
func (c *Collector) Samples() *sampleset.SampleSet { return c.samples }

// Labels returns one label per collected sample.
func (c *Collector) Labels() []float64 { return c.labels }

// Weights returns one weight per collected sample.
func (c *Collector) Weights() []float64 { return c.weights }

// Len returns the number of collected samples.
func (c *Collector) Len() int { return c.samples.Len() }

// BatchSize returns the buffer bound, 0 if unbounded.
func (c *Collector) BatchSize() int { return c.size }

// Full reports whether a bounded buffer has reached its size.
func (c *Collector) Full() bool { return c.size > 0 && c.samples.Len() >= c.size }

// Reset empties the buffer and forgets the feature count.
func (c *Collector) Reset() {
	c.samples.Reset()
	c.labels = nil
	c.weights = nil
	c.oldest = 0
}

// Learn replaces the buffer with samples, applying the full-buffer policy
// once BatchSize is reached. labels default to NaN and weights to 1.
func (c *Collector) Learn(ctx context.Context, samples *sampleset.SampleSet, labels, weights []float64) error {
	if err := learning.CheckInputs(samples, labels, weights); err != nil {
		return err
	}
	c.Reset()
	for i := range samples.Len() {
		if i%1024 == 0 {
			if err := learning.Poll(ctx, nil, float64(i)/float64(samples.Len())); err != nil {
				return err
			}
		}
		label, weight := math.NaN(), 1.0
		if labels != nil {
			label = labels[i]
		}
		if weights != nil {
			weight = weights[i]
		}
		if err := c.add(samples.Row(i), label, weight); err != nil {
			return learning.WrapError(learning.CodeFeatureCountMismatch, "collect sample", err)
		}
	}
	return nil
}

// LearnOne collects a single sample. A sample with the wrong feature count
// is ignored. Collecting never classifies, so the result is always NaN.
func (c *Collector) LearnOne(features []float64, label, weight float64) float64 {
	_ = c.add(features, label, weight)
	return math.NaN()
}

func (c *Collector) add(features []float64, label, weight float64) error {
	if !c.Full() {
		if err := c.samples.Append(features); err != nil {
			return err
		}
		c.labels = append(c.labels, label)
		c.weights = append(c.weights, weight)
		return nil
	}

	var i int
	switch c.behavior {
	case DiscardNewSample:
		return nil
	case OverwriteOldestSample:
		i = c.oldest
		c.oldest = (c.oldest + 1) % c.size
	default:
		i = c.rng.Intn(c.size)
	}
	if err := c.samples.Set(i, features); err != nil {
		return err
	}
	c.labels[i] = label
	c.weights[i] = weight
	return nil
}

// Converged always returns false; a collector accepts samples forever.
func (c *Collector) Converged() bool { return false }

// Capabilities implements learning.Algorithm.
func (c *Collector) Capabilities() learning.Capabilities {
	return learning.NonSupervisedLearner | learning.OnlineLearner | learning.WeightedLearner
}

var _ learning.Algorithm = (*Collector)(nil)
