// Package boost implements stage-wise boosting of weak classifiers with the
// AdaBoost, RealBoost, FloatBoost and SAMME variants.
package boost

import (
	"context"
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/vecml/learning"
	"github.com/hupe1980/vecml/sampleset"
)

// epsilon keeps a perfect weak classifier from getting an infinite weight.
const epsilon = 1e-10

// floatBoostRounds bounds FloatBoost training at this many rounds per
// ensemble slot.
const floatBoostRounds = 3

type member struct {
	classifier learning.Classifier
	weight     float64
	err        float64
	hyp        []float64
	missed     *roaring.Bitmap
}

// Classifier is a boosted ensemble.
//
// Learn always rebuilds the ensemble from scratch. After a failed Learn the
// ensemble is unusable until the next successful call.
type Classifier struct {
	opts         options
	members      []member
	classCount   int
	featureCount int
	weights      []float64
}

// New creates an untrained classifier.
func New(opts ...Option) *Classifier {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Classifier{opts: o}
}

// Algorithm returns the boosting variant.
func (c *Classifier) Algorithm() Algorithm { return c.opts.algorithm }

// ClassCount returns the number of classes seen by the last Learn.
func (c *Classifier) ClassCount() int { return c.classCount }

// FeatureCount returns the feature count seen by the last Learn.
func (c *Classifier) FeatureCount() int { return c.featureCount }

// Len returns the number of weak classifiers in the ensemble.
func (c *Classifier) Len() int { return len(c.members) }

// Member returns weak classifier i and its ensemble weight.
func (c *Classifier) Member(i int) (learning.Classifier, float64) {
	return c.members[i].classifier, c.members[i].weight
}

// Misclassified returns the training samples weak classifier i got wrong.
// It is nil for restored ensembles.
func (c *Classifier) Misclassified(i int) *roaring.Bitmap {
	if c.members[i].missed == nil {
		return nil
	}
	return c.members[i].missed.Clone()
}

// SampleWeights returns the sample weights after the last round.
func (c *Classifier) SampleWeights() []float64 { return c.weights }

// Learn trains a new ensemble. labels are required; samples with NaN labels
// get no weight.
//
// Configuration is validated before the previous ensemble is discarded: a
// missing factory fails with learning.ErrFactoryNotSet, fewer than two
// distinct labels with learning.ErrTooFewClasses and more than two classes
// for anything but SammeBoost with learning.ErrTooManyClasses. A weak
// classifier no better than chance fails with
// learning.ErrTooWeakClassifier.
func (c *Classifier) Learn(ctx context.Context, samples *sampleset.SampleSet, labels, weights []float64) error {
	if c.opts.factory == nil {
		return learning.NewError(learning.CodeFactoryNotSet, "weak classifier factory not set")
	}
	if err := learning.CheckInputs(samples, labels, weights); err != nil {
		return err
	}
	if labels == nil {
		return learning.NewError(learning.CodeInvalidArgument, "boosting requires labels")
	}
	if err := learning.CheckLabels(labels); err != nil {
		return err
	}
	if n := sampleset.DistinctClasses(labels); n < 2 {
		return learning.Errorf(learning.CodeTooFewClasses, "need at least 2 classes, got %d", n)
	}
	classes := sampleset.ClassCount(labels)
	if classes > 2 && c.opts.algorithm != SammeBoost {
		return learning.Errorf(learning.CodeTooManyClasses,
			"%v handles 2 classes, got %d; use SammeBoost", c.opts.algorithm, classes)
	}

	n := samples.Len()
	c.members = nil
	c.weights = nil
	c.classCount = classes
	c.featureCount = samples.Features()

	initial := slices.Clone(learning.Weights(weights, n))
	for i, l := range labels {
		if !learning.IsLabel(l) {
			initial[i] = 0
		}
	}
	sampleset.NormalizeWeights(initial)
	w := slices.Clone(initial)

	chance := float64(classes-1) / float64(classes)
	maxRounds := c.opts.maxClassifiers
	var bestErrors map[int]float64
	if c.opts.algorithm == FloatBoost {
		maxRounds *= floatBoostRounds
		bestErrors = make(map[int]float64)
	}
	if c.opts.maxRounds > 0 {
		maxRounds = c.opts.maxRounds
	}

	round := 0
	for ; len(c.members) < c.opts.maxClassifiers && round < maxRounds; round++ {
		weak, err := c.opts.factory.Train(ctx, samples, labels, w)
		if err != nil {
			return err
		}

		m := member{classifier: weak, hyp: make([]float64, n), missed: roaring.New()}
		var wrong, total float64
		for i := range n {
			m.hyp[i] = weak.Classify(samples.Row(i))
			if !learning.IsLabel(labels[i]) {
				continue
			}
			total += w[i]
			if m.hyp[i] != labels[i] {
				m.missed.Add(uint32(i))
				wrong += w[i]
			}
		}
		e := 0.0
		if total > 0 {
			e = wrong / total
		}
		if e >= chance {
			return learning.Errorf(learning.CodeTooWeakClassifier,
				"round %d: weighted error %.4f is not below chance level %.4f", round, e, chance)
		}

		m.err = math.Max(e, epsilon)
		m.weight = c.alpha(m.err)
		c.members = append(c.members, m)
		c.reweight(w, m)

		if c.opts.algorithm == FloatBoost && c.eliminate(labels, initial, bestErrors) {
			copy(w, initial)
			for _, m := range c.members {
				c.reweight(w, m)
			}
		}

		c.opts.logger.DebugContext(ctx, "boosting round",
			"round", round,
			"algorithm", c.opts.algorithm.String(),
			"error", e,
			"alpha", m.weight,
			"misclassified", m.missed.GetCardinality(),
			"ensemble", len(c.members),
		)

		if e <= c.opts.minError {
			break
		}
		progress := float64(len(c.members)) / float64(c.opts.maxClassifiers)
		if err := learning.Poll(ctx, c.opts.controller, progress); err != nil {
			return err
		}
	}
	if round >= maxRounds && len(c.members) < c.opts.maxClassifiers {
		c.opts.logger.InfoContext(ctx, "round limit reached",
			"algorithm", c.opts.algorithm.String(),
			"rounds", round,
			"ensemble", len(c.members),
			"max_classifiers", c.opts.maxClassifiers,
		)
	}

	for i := range c.members {
		c.members[i].hyp = nil
	}
	c.weights = w
	return nil
}

func (c *Classifier) alpha(e float64) float64 {
	a := 0.5 * math.Log((1-e)/e)
	if c.opts.algorithm == SammeBoost {
		a += 0.5 * math.Log(float64(c.classCount-1))
	}
	return a
}

// factors returns the multipliers for correctly and wrongly classified
// sample weights.
func (c *Classifier) factors(e float64) (correct, wrong float64) {
	r := e / (1 - e)
	switch c.opts.algorithm {
	case AdaBoost:
		return r, 1
	case FloatBoost:
		return 1 / math.E, math.E
	case SammeBoost:
		k := float64(c.classCount - 1)
		return math.Sqrt(r / k), math.Sqrt(k / r)
	default:
		return math.Sqrt(r), 1 / math.Sqrt(r)
	}
}

// reweight applies m's update to w and renormalizes. A zero sum is left
// alone.
func (c *Classifier) reweight(w []float64, m member) {
	correct, wrong := c.factors(m.err)
	for i := range w {
		if m.missed.Contains(uint32(i)) {
			w[i] *= wrong
		} else {
			w[i] *= correct
		}
	}
	sampleset.NormalizeWeights(w)
}

// eliminate removes weak classifiers as long as dropping one yields a lower
// ensemble error than the best ever seen for the smaller ensemble size. It
// reports whether anything was removed.
func (c *Classifier) eliminate(labels, initial []float64, best map[int]float64) bool {
	size := len(c.members)
	if e := c.ensembleError(-1, labels, initial); !hasBetter(best, size, e) {
		best[size] = e
	}

	removed := false
	for len(c.members) >= 3 {
		drop, dropErr := -1, math.Inf(1)
		for j := range c.members {
			if e := c.ensembleError(j, labels, initial); e < dropErr {
				drop, dropErr = j, e
			}
		}
		if hasBetter(best, len(c.members)-1, dropErr) {
			break
		}
		best[len(c.members)-1] = dropErr
		c.opts.logger.Debug("removing weak classifier",
			"index", drop,
			"ensemble_error", dropErr,
		)
		c.members = slices.Delete(c.members, drop, drop+1)
		removed = true
	}
	return removed
}

// hasBetter reports whether best holds an error <= e for size.
func hasBetter(best map[int]float64, size int, e float64) bool {
	prev, ok := best[size]
	return ok && prev <= e
}

// ensembleError is the weighted training error of the unit-weight ensemble
// without member skip (-1 keeps all).
func (c *Classifier) ensembleError(skip int, labels, weights []float64) float64 {
	var e float64
	for i, l := range labels {
		if !learning.IsLabel(l) {
			continue
		}
		var sum float64
		for j, m := range c.members {
			if j == skip || math.IsNaN(m.hyp[i]) {
				continue
			}
			sum += m.hyp[i] - 0.5
		}
		predicted := 0.0
		if sum > 0 {
			predicted = 1
		}
		if predicted != l {
			e += weights[i]
		}
	}
	return e
}

// Classify combines the weak classifiers. AdaBoost and RealBoost threshold
// the weighted sum of (output - 0.5) at zero, FloatBoost does the same with
// unit weights, and SammeBoost returns the class with the largest weighted
// vote, ties going to the lower class. An untrained ensemble yields NaN.
func (c *Classifier) Classify(features []float64) float64 {
	if len(c.members) == 0 || len(features) < c.featureCount {
		return math.NaN()
	}

	if c.opts.algorithm == SammeBoost {
		votes := make([]float64, c.classCount)
		for _, m := range c.members {
			h := m.classifier.Classify(features)
			if !learning.IsLabel(h) || int(h) >= c.classCount {
				continue
			}
			votes[int(h)] += m.weight
		}
		best := 0
		for k := 1; k < len(votes); k++ {
			if votes[k] > votes[best] {
				best = k
			}
		}
		return float64(best)
	}

	var sum float64
	for _, m := range c.members {
		h := m.classifier.Classify(features)
		if math.IsNaN(h) {
			continue
		}
		if c.opts.algorithm == FloatBoost {
			sum += h - 0.5
		} else {
			sum += (h - 0.5) * m.weight
		}
	}
	if sum > 0 {
		return 1
	}
	return 0
}

// LearnOne is not supported; boosting is a batch algorithm.
func (c *Classifier) LearnOne([]float64, float64, float64) float64 { return math.NaN() }

// Converged reports whether an ensemble has been trained.
func (c *Classifier) Converged() bool { return len(c.members) > 0 }

// Capabilities implements learning.Algorithm.
func (c *Classifier) Capabilities() learning.Capabilities { return learning.WeightedLearner }

var _ learning.Model = (*Classifier)(nil)
