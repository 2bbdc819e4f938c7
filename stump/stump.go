// Package stump implements the decision stump, a one-level decision tree
// used as the weak learner of boosting.
package stump

import (
	"cmp"
	"context"
	"math"
	"slices"

	"github.com/hupe1980/vecml/learning"
	"github.com/hupe1980/vecml/sampleset"
)

// Stump classifies with a single threshold on one feature:
// x[Feature] <= Threshold yields Left, anything else Right.
type Stump struct {
	feature   int
	threshold float64
	left      float64
	right     float64
	cost      float64
	trained   bool
}

// New returns an untrained stump. It classifies everything as NaN.
func New() *Stump {
	return &Stump{}
}

// Feature returns the selected feature index.
func (s *Stump) Feature() int { return s.feature }

// Threshold returns the split value.
func (s *Stump) Threshold() float64 { return s.threshold }

// Labels returns the labels assigned to either side of the split.
func (s *Stump) Labels() (left, right float64) { return s.left, s.right }

// Cost returns the weighted training error of the selected split.
func (s *Stump) Cost() float64 { return s.cost }

// Trained reports whether Learn has selected a split.
func (s *Stump) Trained() bool { return s.trained }

// Classify implements learning.Classifier.
func (s *Stump) Classify(features []float64) float64 {
	if !s.trained || s.feature >= len(features) {
		return math.NaN()
	}
	if features[s.feature] <= s.threshold {
		return s.left
	}
	return s.right
}

// Learn selects the split with the globally minimal weighted
// misclassification cost. Every feature, every boundary between distinct
// sorted values and every ordered pair of distinct present labels is
// evaluated; the first minimum found wins. Samples with NaN labels are
// ignored.
//
// With fewer than two classes the stump returns the only label for every
// input. Without usable samples it stays untrained.
func (s *Stump) Learn(ctx context.Context, samples *sampleset.SampleSet, labels, weights []float64) error {
	if err := learning.CheckInputs(samples, labels, weights); err != nil {
		return err
	}
	if err := learning.CheckLabels(labels); err != nil {
		return err
	}
	if labels == nil {
		return learning.NewError(learning.CodeInvalidArgument, "decision stump requires labels")
	}
	weights = learning.Weights(weights, samples.Len())

	rows := make([]int, 0, samples.Len())
	for i, l := range labels {
		if learning.IsLabel(l) {
			rows = append(rows, i)
		}
	}
	*s = Stump{}
	if len(rows) == 0 || samples.Features() == 0 {
		return nil
	}

	classes := sampleset.ClassCount(labels)
	present := make([]bool, classes)
	total := make([]float64, classes)
	var totalSum float64
	for _, i := range rows {
		c := int(labels[i])
		present[c] = true
		total[c] += weights[i]
		totalSum += weights[i]
	}

	var only []int
	for c, ok := range present {
		if ok {
			only = append(only, c)
		}
	}
	if len(only) < 2 {
		l := float64(only[0])
		*s = Stump{left: l, right: l, trained: true}
		return nil
	}

	best := Stump{cost: math.Inf(1)}
	left := make([]float64, classes)
	for f := range samples.Features() {
		if err := learning.Poll(ctx, nil, float64(f)/float64(samples.Features())); err != nil {
			return err
		}

		slices.SortStableFunc(rows, func(a, b int) int {
			return cmp.Compare(samples.At(a, f), samples.At(b, f))
		})
		clear(left)
		var leftSum float64

		for pos, i := range rows {
			left[int(labels[i])] += weights[i]
			leftSum += weights[i]

			v := samples.At(i, f)
			threshold := v
			if pos < len(rows)-1 {
				next := samples.At(rows[pos+1], f)
				if next == v {
					continue
				}
				threshold = (v + next) / 2
			}

			rightSum := totalSum - leftSum
			for _, l := range only {
				for _, r := range only {
					if l == r {
						continue
					}
					cost := leftSum - left[l] + rightSum - (total[r] - left[r])
					if cost < best.cost {
						best = Stump{
							feature:   f,
							threshold: threshold,
							left:      float64(l),
							right:     float64(r),
							cost:      cost,
						}
					}
				}
			}
		}
	}

	best.trained = true
	*s = best
	return nil
}

// LearnOne is not supported; the stump is a batch learner.
func (s *Stump) LearnOne([]float64, float64, float64) float64 { return math.NaN() }

// Converged reports whether a split has been selected.
func (s *Stump) Converged() bool { return s.trained }

// Capabilities implements learning.Algorithm.
func (s *Stump) Capabilities() learning.Capabilities { return learning.WeightedLearner }

var _ learning.Model = (*Stump)(nil)

// Snapshot is the persisted form of a Stump.
type Snapshot struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      float64 `json:"left"`
	Right     float64 `json:"right"`
	Trained   bool    `json:"trained"`
}

// Snapshot captures the stump.
func (s *Stump) Snapshot() Snapshot {
	return Snapshot{
		Feature:   s.feature,
		Threshold: s.threshold,
		Left:      s.left,
		Right:     s.right,
		Trained:   s.trained,
	}
}

// FromSnapshot restores a stump.
func FromSnapshot(snap Snapshot) (*Stump, error) {
	if snap.Feature < 0 {
		return nil, learning.Errorf(learning.CodeInvalidArgument, "invalid feature index %d", snap.Feature)
	}
	return &Stump{
		feature:   snap.Feature,
		threshold: snap.Threshold,
		left:      snap.Left,
		right:     snap.Right,
		trained:   snap.Trained,
	}, nil
}
