// Package learning defines the contracts shared by all classifiers and
// learning algorithms: the Algorithm and Classifier interfaces, the
// capability bitset, the progress controller used for cooperative
// cancellation, and the error taxonomy.
package learning

import (
	"context"
	"math"

	"github.com/hupe1980/vecml/sampleset"
)

// Capabilities describes what a learning algorithm supports.
type Capabilities uint8

const (
	// NonSupervisedLearner algorithms accept NaN labels.
	NonSupervisedLearner Capabilities = 1 << iota
	// OnlineLearner algorithms learn one sample at a time via LearnOne.
	OnlineLearner
	// WeightedLearner algorithms honor per-sample weights.
	WeightedLearner
)

// Has reports whether all bits of o are set.
func (c Capabilities) Has(o Capabilities) bool { return c&o == o }

// Classifier maps a feature vector to a class index, a regression value or
// NaN. Classify must not fail; it signals failure with NaN or -1.
type Classifier interface {
	Classify(features []float64) float64
}

// Algorithm is implemented by every learning algorithm.
type Algorithm interface {
	// Learn trains on a whole batch. labels may be nil for non-supervised
	// algorithms; weights may be nil, meaning 1 per sample.
	Learn(ctx context.Context, samples *sampleset.SampleSet, labels, weights []float64) error

	// LearnOne feeds a single sample to an online learner and returns the
	// classification of that sample before or after learning, or NaN.
	LearnOne(features []float64, label, weight float64) float64

	// Converged reports whether further learning would change the model.
	Converged() bool

	// Capabilities returns the supported learning modes.
	Capabilities() Capabilities
}

// Model is a trainable classifier.
type Model interface {
	Algorithm
	Classifier
}

// Weights returns w, or uniform weights of length n if w is nil.
func Weights(w []float64, n int) []float64 {
	if w == nil {
		return sampleset.UniformWeights(n)
	}
	return w
}

// CheckInputs validates the lengths of parallel label and weight vectors.
// A nil vector is always accepted.
func CheckInputs(samples *sampleset.SampleSet, labels, weights []float64) error {
	n := samples.Len()
	if labels != nil && len(labels) != n {
		return Errorf(CodeInvalidArgument, "label count %d does not match sample count %d", len(labels), n)
	}
	if weights != nil && len(weights) != n {
		return Errorf(CodeInvalidArgument, "weight count %d does not match sample count %d", len(weights), n)
	}
	return nil
}

// MaxClasses bounds the class indices accepted by CheckLabels.
const MaxClasses = 1 << 16

// CheckLabels validates class labels for algorithms that index per-class
// tables. NaN and negative labels mark unlabeled samples and pass; every
// other label must be an integer below MaxClasses.
func CheckLabels(labels []float64) error {
	for i, l := range labels {
		if !IsLabel(l) {
			continue
		}
		if math.IsInf(l, 0) || l != math.Trunc(l) || l >= MaxClasses {
			return Errorf(CodeInvalidArgument, "label %d: %v is not a class index", i, l)
		}
	}
	return nil
}

// IsLabel reports whether l is a usable class index.
func IsLabel(l float64) bool {
	return !math.IsNaN(l) && l >= 0
}
