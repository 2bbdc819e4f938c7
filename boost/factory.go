package boost

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/vecml/learning"
	"github.com/hupe1980/vecml/sampleset"
	"github.com/hupe1980/vecml/stump"
)

// Algorithm selects the boosting variant.
type Algorithm int

const (
	// AdaBoost is discrete binary AdaBoost.
	AdaBoost Algorithm = iota
	// RealBoost reweights correct and wrong samples symmetrically.
	RealBoost
	// FloatBoost adds backward elimination of weak classifiers after every
	// round and combines them with unit weights.
	FloatBoost
	// SammeBoost is the multi-class extension of AdaBoost.
	SammeBoost
)

func (a Algorithm) String() string {
	switch a {
	case AdaBoost:
		return "AdaBoost"
	case RealBoost:
		return "RealBoost"
	case FloatBoost:
		return "FloatBoost"
	case SammeBoost:
		return "SammeBoost"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// ParseAlgorithm returns the algorithm with the given name. Matching is
// case-insensitive.
func ParseAlgorithm(name string) (Algorithm, error) {
	for a := AdaBoost; a <= SammeBoost; a++ {
		if strings.EqualFold(a.String(), name) {
			return a, nil
		}
	}
	return 0, learning.Errorf(learning.CodeInvalidArgument, "unknown boosting algorithm %q", name)
}

// Factory trains one weak classifier on the current sample weights.
type Factory interface {
	Train(ctx context.Context, samples *sampleset.SampleSet, labels, weights []float64) (learning.Classifier, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(ctx context.Context, samples *sampleset.SampleSet, labels, weights []float64) (learning.Classifier, error)

// Train implements Factory.
func (f FactoryFunc) Train(ctx context.Context, samples *sampleset.SampleSet, labels, weights []float64) (learning.Classifier, error) {
	return f(ctx, samples, labels, weights)
}

// StumpFactory trains decision stumps.
func StumpFactory() Factory {
	return FactoryFunc(func(ctx context.Context, samples *sampleset.SampleSet, labels, weights []float64) (learning.Classifier, error) {
		s := stump.New()
		if err := s.Learn(ctx, samples, labels, weights); err != nil {
			return nil, err
		}
		return s, nil
	})
}
