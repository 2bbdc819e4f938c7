package kernel

import (
	"context"
	"math"

	"github.com/hupe1980/vecml/learning"
	"github.com/hupe1980/vecml/sampleset"
)

// Perceptron is the dual-form kernel perceptron. Every mistake adds the
// sample as a support vector with coefficient +-1; the bias moves with it.
type Perceptron struct {
	machine
	maxEpochs int
	converged bool
}

// PerceptronOption configures a Perceptron.
type PerceptronOption func(*Perceptron)

// WithPerceptronKernel sets the kernel. Default: Linear.
func WithPerceptronKernel(k Kernel) PerceptronOption {
	return func(p *Perceptron) {
		if k != nil {
			p.kernel = k
		}
	}
}

// WithMaxEpochs bounds the passes over a batch in Learn. Default: 100.
func WithMaxEpochs(n int) PerceptronOption {
	return func(p *Perceptron) { p.maxEpochs = max(n, 1) }
}

// NewPerceptron creates an untrained perceptron.
func NewPerceptron(opts ...PerceptronOption) *Perceptron {
	p := &Perceptron{machine: newMachine(nil), maxEpochs: 100}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LearnOne classifies features and, on a mistake, adds them as a support
// vector. It returns the classification made before the update. Samples
// with a NaN label or a mismatching feature count are ignored.
func (p *Perceptron) LearnOne(features []float64, label, _ float64) float64 {
	if p.vectors.Len() > 0 && len(features) != p.vectors.Features() {
		return math.NaN()
	}
	result := p.Classify(features)
	if !learning.IsLabel(label) {
		return result
	}
	p.update(features, sign(label))
	return result
}

// update returns true if features were misclassified.
func (p *Perceptron) update(features []float64, y float64) bool {
	if len(p.coefficients) > 0 && y*p.decision(features) > 0 {
		return false
	}
	if err := p.vectors.Append(features); err != nil {
		return false
	}
	p.coefficients = append(p.coefficients, y)
	p.bias -= y
	p.converged = false
	return true
}

// Learn trains from scratch, repeating passes over samples until one pass
// makes no mistake or the epoch limit is hit.
func (p *Perceptron) Learn(ctx context.Context, samples *sampleset.SampleSet, labels, weights []float64) error {
	if err := learning.CheckInputs(samples, labels, weights); err != nil {
		return err
	}
	if err := checkBinary(labels); err != nil {
		return err
	}

	p.reset()
	p.converged = false
	for epoch := range p.maxEpochs {
		if err := learning.Poll(ctx, nil, float64(epoch)/float64(p.maxEpochs)); err != nil {
			return err
		}
		mistakes := 0
		for i := range samples.Len() {
			if !learning.IsLabel(labels[i]) {
				continue
			}
			if p.update(samples.Row(i), sign(labels[i])) {
				mistakes++
			}
		}
		if mistakes == 0 {
			p.converged = true
			return nil
		}
	}
	return nil
}

// Converged reports whether the last Learn ended with an error-free pass.
func (p *Perceptron) Converged() bool { return p.converged }

// Capabilities implements learning.Algorithm.
func (p *Perceptron) Capabilities() learning.Capabilities { return learning.OnlineLearner }

var _ learning.Model = (*Perceptron)(nil)
