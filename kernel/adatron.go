package kernel

import (
	"context"
	"math"

	"github.com/hupe1980/vecml/learning"
	"github.com/hupe1980/vecml/sampleset"
)

// Adatron is the Kernel Adatron, a batch learner that maximizes the margin
// by coordinate ascent on the dual coefficients. The bias is placed halfway
// between the extreme outputs of the two classes.
type Adatron struct {
	machine
	rate       float64
	maxIter    int
	tolerance  float64
	controller learning.Controller
	margin     float64
	converged  bool
}

// AdatronOption configures an Adatron.
type AdatronOption func(*Adatron)

// WithAdatronKernel sets the kernel. Default: Linear.
func WithAdatronKernel(k Kernel) AdatronOption {
	return func(a *Adatron) {
		if k != nil {
			a.kernel = k
		}
	}
}

// WithLearningRate sets the step size in (0, 2). Steps are scaled by
// 1/K(x, x) per sample. Default: 0.5.
func WithLearningRate(r float64) AdatronOption {
	return func(a *Adatron) {
		if r > 0 && r < 2 {
			a.rate = r
		}
	}
}

// WithMaxIterations bounds the number of sweeps over the samples. Default: 1000.
func WithMaxIterations(n int) AdatronOption {
	return func(a *Adatron) { a.maxIter = max(n, 1) }
}

// WithTolerance sets how close the margin has to get to 1. Default: 1e-3.
func WithTolerance(tol float64) AdatronOption {
	return func(a *Adatron) {
		if tol > 0 {
			a.tolerance = tol
		}
	}
}

// WithAdatronController attaches a progress controller to Learn.
func WithAdatronController(c learning.Controller) AdatronOption {
	return func(a *Adatron) { a.controller = c }
}

// NewAdatron creates an untrained Kernel Adatron.
func NewAdatron(opts ...AdatronOption) *Adatron {
	a := &Adatron{
		machine:   newMachine(nil),
		rate:      0.5,
		maxIter:   1000,
		tolerance: 1e-3,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Margin returns the functional margin reached by the last Learn.
func (a *Adatron) Margin() float64 { return a.margin }

// Learn trains from scratch. Samples with a NaN label do not take part.
func (a *Adatron) Learn(ctx context.Context, samples *sampleset.SampleSet, labels, weights []float64) error {
	if err := learning.CheckInputs(samples, labels, weights); err != nil {
		return err
	}
	if err := checkBinary(labels); err != nil {
		return err
	}

	var rows []int
	for i, l := range labels {
		if learning.IsLabel(l) {
			rows = append(rows, i)
		}
	}
	n := len(rows)
	y := make([]float64, n)
	for i, r := range rows {
		y[i] = sign(labels[r])
	}

	gram := make([]float64, n*n)
	for i, ri := range rows {
		for j := i; j < n; j++ {
			k := a.kernel.Evaluate(samples.Row(ri), samples.Row(rows[j]))
			gram[i*n+j], gram[j*n+i] = k, k
		}
	}

	alpha := make([]float64, n)
	z := make([]float64, n)
	a.converged = false
	for iter := range a.maxIter {
		if err := learning.Poll(ctx, a.controller, float64(iter)/float64(a.maxIter)); err != nil {
			return err
		}
		for i := range n {
			kii := gram[i*n+i]
			if kii <= 0 {
				continue
			}
			next := math.Max(alpha[i]+a.rate*(1-y[i]*z[i])/kii, 0)
			if d := next - alpha[i]; d != 0 {
				alpha[i] = next
				for j := range n {
					z[j] += d * y[i] * gram[i*n+j]
				}
			}
		}

		lo, hi := extremes(z, y)
		a.margin = (lo - hi) / 2
		a.bias = (lo + hi) / 2
		if math.Abs(1-a.margin) < a.tolerance {
			a.converged = true
			break
		}
	}

	a.keepSupportVectors(samples, rows, alpha, y)
	return nil
}

// keepSupportVectors keeps the samples with a positive coefficient as support vectors.
func (a *Adatron) keepSupportVectors(samples *sampleset.SampleSet, rows []int, alpha, y []float64) {
	bias := a.bias
	a.reset()
	a.bias = bias
	for i, r := range rows {
		if alpha[i] <= 0 {
			continue
		}
		if err := a.vectors.Append(samples.Row(r)); err != nil {
			continue
		}
		a.coefficients = append(a.coefficients, alpha[i]*y[i])
	}
}

// extremes returns the smallest output of the positive class and the
// largest output of the negative class.
func extremes(z, y []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for i, v := range z {
		if y[i] > 0 {
			lo = math.Min(lo, v)
		} else {
			hi = math.Max(hi, v)
		}
	}
	return lo, hi
}

// LearnOne is not supported by the batch Adatron and returns NaN.
func (a *Adatron) LearnOne(_ []float64, _, _ float64) float64 { return math.NaN() }

// Converged reports whether the last Learn reached a margin of 1 within the
// tolerance.
func (a *Adatron) Converged() bool { return a.converged }

// Capabilities implements learning.Algorithm.
func (a *Adatron) Capabilities() learning.Capabilities { return 0 }

var _ learning.Model = (*Adatron)(nil)
