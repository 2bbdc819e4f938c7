package distance

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Measure compares a sample vector with a model vector.
// Implementations must not panic on equal-length, NaN-free input.
// Vectors are assumed to be the same length (caller's responsibility).
type Measure interface {
	Distance(sample, model []float64) float64
}

// Func is a function type for distance calculation.
type Func func(sample, model []float64) float64

// Distance implements Measure.
func (f Func) Distance(sample, model []float64) float64 { return f(sample, model) }

// Metric names a built-in measure.
type Metric int

const (
	MetricSquaredGeometric Metric = iota
	MetricGeometric
	MetricCosine
	MetricHistogramIntersection
	MetricChiSquared
	MetricHamming
	MetricLogLikelihood
	MetricJeffreysDivergence
)

func (m Metric) String() string {
	switch m {
	case MetricSquaredGeometric:
		return "SquaredGeometric"
	case MetricGeometric:
		return "Geometric"
	case MetricCosine:
		return "Cosine"
	case MetricHistogramIntersection:
		return "HistogramIntersection"
	case MetricChiSquared:
		return "ChiSquared"
	case MetricHamming:
		return "Hamming"
	case MetricLogLikelihood:
		return "LogLikelihood"
	case MetricJeffreysDivergence:
		return "JeffreysDivergence"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// ParseMetric returns the metric with the given String name.
func ParseMetric(name string) (Metric, error) {
	for m := MetricSquaredGeometric; m <= MetricJeffreysDivergence; m++ {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown metric %q", name)
}

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricSquaredGeometric:
		return SquaredGeometric, nil
	case MetricGeometric:
		return Geometric, nil
	case MetricCosine:
		return Cosine, nil
	case MetricHistogramIntersection:
		return HistogramIntersection, nil
	case MetricChiSquared:
		return ChiSquared, nil
	case MetricHamming:
		return Hamming, nil
	case MetricLogLikelihood:
		return LogLikelihood, nil
	case MetricJeffreysDivergence:
		return JeffreysDivergence, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}

// MustProvider is like Provider but panics on an unknown metric.
func MustProvider(m Metric) Func {
	f, err := Provider(m)
	if err != nil {
		panic(err)
	}
	return f
}

// probabilityFloor replaces non-positive probabilities inside logarithms.
const probabilityFloor = 1e-10

// SquaredGeometric returns the squared Euclidean distance.
func SquaredGeometric(sample, model []float64) float64 {
	var sum float64
	for i, v := range sample {
		d := v - model[i]
		sum += d * d
	}
	return sum
}

// Geometric returns the Euclidean distance.
func Geometric(sample, model []float64) float64 {
	if len(sample) == 0 {
		return 0
	}
	return floats.Distance(sample, model[:len(sample)], 2)
}

// Cosine returns one minus the cosine of the angle between the vectors.
// A zero vector is treated as orthogonal to everything.
func Cosine(sample, model []float64) float64 {
	if len(sample) == 0 {
		return 1
	}
	model = model[:len(sample)]
	na := floats.Norm(sample, 2)
	nb := floats.Norm(model, 2)
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - floats.Dot(sample, model)/(na*nb)
}

// HistogramIntersection returns the negated sum of element-wise minima,
// so that more overlap means a smaller distance.
func HistogramIntersection(sample, model []float64) float64 {
	var sum float64
	for i, v := range sample {
		sum += math.Min(v, model[i])
	}
	return -sum
}

// ChiSquared returns sum((a-b)^2 / (a+b)), skipping bins where a+b is zero.
func ChiSquared(sample, model []float64) float64 {
	var sum float64
	for i, v := range sample {
		s := v + model[i]
		if s == 0 {
			continue
		}
		d := v - model[i]
		sum += d * d / s
	}
	return sum
}

// Hamming returns the number of positions at which the vectors differ.
func Hamming(sample, model []float64) float64 {
	var n int
	for i, v := range sample {
		if v != model[i] {
			n++
		}
	}
	return float64(n)
}

// LogLikelihood returns -sum(a * ln(b)): the negated log-likelihood of the
// sample histogram under the model distribution.
func LogLikelihood(sample, model []float64) float64 {
	var sum float64
	for i, v := range sample {
		if v == 0 {
			continue
		}
		sum += v * math.Log(math.Max(model[i], probabilityFloor))
	}
	return -sum
}

// JeffreysDivergence returns sum((a-b) * ln(a/b)).
func JeffreysDivergence(sample, model []float64) float64 {
	var sum float64
	for i, v := range sample {
		a := math.Max(v, probabilityFloor)
		b := math.Max(model[i], probabilityFloor)
		sum += (a - b) * math.Log(a/b)
	}
	return sum
}
