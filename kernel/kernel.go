// Package kernel implements kernel functions and two binary kernel machines:
// the online kernel Perceptron and the batch Kernel Adatron.
//
// Both machines take labels 0 and 1 and classify by the sign of a weighted
// sum of kernel evaluations against their support vectors.
package kernel

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/vecml/distance"
	"github.com/hupe1980/vecml/learning"
	"github.com/hupe1980/vecml/sampleset"
)

// Kernel is a positive semi-definite similarity function.
type Kernel interface {
	Evaluate(a, b []float64) float64
}

// Func adapts a function to Kernel.
type Func func(a, b []float64) float64

// Evaluate implements Kernel.
func (f Func) Evaluate(a, b []float64) float64 { return f(a, b) }

// Linear returns the inner product kernel.
func Linear() Kernel {
	return Func(floats.Dot)
}

// Polynomial returns (a.b + c)^degree.
func Polynomial(degree int, c float64) Kernel {
	return Func(func(a, b []float64) float64 {
		return math.Pow(floats.Dot(a, b)+c, float64(degree))
	})
}

// RBF returns the Gaussian kernel exp(-gamma * |a-b|^2).
func RBF(gamma float64) Kernel {
	return Func(func(a, b []float64) float64 {
		return math.Exp(-gamma * distance.SquaredGeometric(a, b))
	})
}

// machine is the decision function shared by both learners:
// f(x) = sum(coefficients[i] * K(vectors[i], x)) - bias.
type machine struct {
	kernel       Kernel
	vectors      *sampleset.SampleSet
	coefficients []float64
	bias         float64
}

func newMachine(k Kernel) machine {
	if k == nil {
		k = Linear()
	}
	return machine{kernel: k, vectors: sampleset.New(0)}
}

func (m *machine) reset() {
	m.vectors = sampleset.New(0)
	m.coefficients = nil
	m.bias = 0
}

func (m *machine) decision(x []float64) float64 {
	var sum float64
	for i, c := range m.coefficients {
		sum += c * m.kernel.Evaluate(m.vectors.Row(i), x)
	}
	return sum - m.bias
}

// Classify returns 1 for a positive decision value and 0 otherwise. A
// machine without support vectors yields NaN.
func (m *machine) Classify(features []float64) float64 {
	if len(m.coefficients) == 0 || len(features) != m.vectors.Features() {
		return math.NaN()
	}
	if m.decision(features) > 0 {
		return 1
	}
	return 0
}

// SupportVectors returns the number of vectors with a non-zero coefficient.
func (m *machine) SupportVectors() int { return len(m.coefficients) }

// Bias returns the decision threshold.
func (m *machine) Bias() float64 { return m.bias }

// sign maps labels 0 and 1 to -1 and +1.
func sign(label float64) float64 {
	if label > 0 {
		return 1
	}
	return -1
}

// checkBinary validates that labels hold exactly the classes 0 and 1,
// ignoring NaN.
func checkBinary(labels []float64) error {
	if labels == nil {
		return learning.NewError(learning.CodeInvalidArgument, "kernel machines require labels")
	}
	if err := learning.CheckLabels(labels); err != nil {
		return err
	}
	if n := sampleset.ClassCount(labels); n > 2 {
		return learning.Errorf(learning.CodeTooManyClasses, "kernel machines are binary, got %d classes", n)
	}
	if n := sampleset.DistinctClasses(labels); n < 2 {
		return learning.Errorf(learning.CodeTooFewClasses, "need 2 classes, got %d", n)
	}
	return nil
}
