// Package vq implements vector quantization and k-nearest-neighbor
// classification over a code book of model vectors.
//
// A Quantizer compares a query against every model vector with a pluggable
// distance measure. For the squared geometric measure the linear scan can be
// replaced with a k-d tree via UseTree.
package vq

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vecml/distance"
	"github.com/hupe1980/vecml/kdtree"
	"github.com/hupe1980/vecml/learning"
	"github.com/hupe1980/vecml/neighbor"
	"github.com/hupe1980/vecml/sampleset"
)

// customMetric marks a measure installed with WithMeasure.
const customMetric distance.Metric = -1

// Quantizer classifies feature vectors by their nearest model vectors.
//
// A Quantizer is safe for concurrent Classify calls as long as no Learn,
// LearnOne or setter runs at the same time.
type Quantizer struct {
	models  *sampleset.SampleSet
	labels  []float64
	measure distance.Measure
	metric  distance.Metric
	reject  float64
	k       int

	tree           *kdtree.Tree
	useTree        bool
	maxEvaluations int
}

// Option configures a Quantizer.
type Option func(*Quantizer)

// WithMetric selects a built-in distance measure.
func WithMetric(m distance.Metric) Option {
	return func(q *Quantizer) {
		if f, err := distance.Provider(m); err == nil {
			q.measure, q.metric = f, m
		}
	}
}

// WithMeasure installs a custom distance measure, e.g. a distance.Multi.
// Quantizers with a custom measure cannot use a k-d tree and cannot be
// persisted.
func WithMeasure(m distance.Measure) Option {
	return func(q *Quantizer) {
		if m != nil {
			q.measure, q.metric = m, customMetric
		}
	}
}

// WithLabels attaches one class label per model vector.
func WithLabels(labels []float64) Option {
	return func(q *Quantizer) { q.labels = labels }
}

// WithRejectThreshold rejects queries whose nearest model is farther than t.
func WithRejectThreshold(t float64) Option {
	return func(q *Quantizer) { q.reject = t }
}

// WithK sets the number of neighbors that vote in Classify. Values below 1
// are treated as 1.
func WithK(k int) Option {
	return func(q *Quantizer) { q.k = max(k, 1) }
}

// New creates a quantizer over models. models may be nil.
func New(models *sampleset.SampleSet, opts ...Option) *Quantizer {
	if models == nil {
		models = sampleset.New(0)
	}
	q := &Quantizer{
		models:  models,
		measure: distance.Func(distance.SquaredGeometric),
		metric:  distance.MetricSquaredGeometric,
		reject:  math.Inf(1),
		k:       1,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Models returns the code book.
func (q *Quantizer) Models() *sampleset.SampleSet { return q.models }

// Labels returns the model labels, or nil.
func (q *Quantizer) Labels() []float64 { return q.labels }

// Metric returns the built-in metric in use. ok is false for a custom measure.
func (q *Quantizer) Metric() (m distance.Metric, ok bool) {
	return q.metric, q.metric != customMetric
}

// K returns the number of voting neighbors.
func (q *Quantizer) K() int { return q.k }

// RejectThreshold returns the reject distance.
func (q *Quantizer) RejectThreshold() float64 { return q.reject }

// SetRejectThreshold changes the reject distance.
func (q *Quantizer) SetRejectThreshold(t float64) { q.reject = t }

// SetK changes the number of voting neighbors.
func (q *Quantizer) SetK(k int) { q.k = max(k, 1) }

// SetModels replaces the code book and its labels. A tree in use is
// rebuilt.
func (q *Quantizer) SetModels(ctx context.Context, models *sampleset.SampleSet, labels []float64) error {
	if models == nil {
		models = sampleset.New(0)
	}
	if labels != nil && len(labels) != models.Len() {
		return learning.Errorf(learning.CodeInvalidArgument,
			"label count %d does not match model count %d", len(labels), models.Len())
	}
	if q.useTree {
		tree, err := kdtree.Build(ctx, models, nil)
		if err != nil {
			return err
		}
		q.tree = tree
	}
	q.models, q.labels = models, labels
	return nil
}

// UseTree replaces the linear scan with a k-d tree built over the current
// code book. maxEvaluations bounds the nodes visited per query; <= 0 means
// exact search. Only the squared geometric measure can be indexed.
func (q *Quantizer) UseTree(ctx context.Context, maxEvaluations int) error {
	if q.metric != distance.MetricSquaredGeometric {
		return learning.NewError(learning.CodeInvalidArgument,
			"k-d tree requires the squared geometric distance")
	}
	tree, err := kdtree.Build(ctx, q.models, nil)
	if err != nil {
		return err
	}
	q.tree, q.useTree, q.maxEvaluations = tree, true, maxEvaluations
	return nil
}

// DisableTree returns to linear search.
func (q *Quantizer) DisableTree() {
	q.tree, q.useTree, q.maxEvaluations = nil, false, 0
}

// TreeEnabled reports whether queries go through a k-d tree.
func (q *Quantizer) TreeEnabled() bool { return q.useTree }

// FindClosestMatch returns the index of the nearest model and its distance.
// An empty code book returns (-1, +Inf). Ties go to the lowest index.
func (q *Quantizer) FindClosestMatch(features []float64) (int, float64) {
	if q.useTree {
		if q.maxEvaluations > 0 {
			return q.tree.FindClosestMatchBounded(features, q.maxEvaluations)
		}
		return q.tree.FindClosestMatch(features)
	}

	best, bestD := -1, math.Inf(1)
	for i := range q.models.Len() {
		if d := q.measure.Distance(features, q.models.Row(i)); d < bestD {
			best, bestD = i, d
		}
	}
	return best, bestD
}

// FindClosestMatches returns up to n nearest models in ascending distance.
func (q *Quantizer) FindClosestMatches(features []float64, n int) []neighbor.Match {
	if q.useTree {
		if q.maxEvaluations > 0 {
			return q.tree.FindClosestMatchesBounded(features, n, q.maxEvaluations)
		}
		return q.tree.FindClosestMatches(features, n)
	}

	l := neighbor.NewList(min(n, q.models.Len()))
	for i := range q.models.Len() {
		l.Offer(q.measure.Distance(features, q.models.Row(i)), i)
	}
	return l.Sorted()
}

// Classify returns the label of the nearest model, or its index if the
// quantizer has no labels. With k > 1 the neighbors vote (see
// KnnClassify).
//
// An empty code book yields NaN. A query farther than the reject threshold
// yields NaN with labels and -1 without.
func (q *Quantizer) Classify(features []float64) float64 {
	if q.k > 1 {
		return q.KnnClassify(features, q.k)
	}

	idx, d := q.FindClosestMatch(features)
	if idx < 0 {
		return math.NaN()
	}
	if d > q.reject {
		return q.rejected()
	}
	return q.label(idx)
}

// KnnClassify takes a vote among the k nearest models. The label with the
// most votes wins; among equally voted labels the one held by the nearest
// neighbor wins. Models with NaN labels do not vote. Without labels the
// nearest model index is returned.
func (q *Quantizer) KnnClassify(features []float64, k int) float64 {
	matches := q.FindClosestMatches(features, max(k, 1))
	if len(matches) == 0 {
		return math.NaN()
	}
	if matches[0].Distance > q.reject {
		return q.rejected()
	}
	if q.labels == nil {
		return float64(matches[0].Index)
	}

	votes := make(map[float64]int, len(matches))
	most := 0
	for _, m := range matches {
		l := q.label(m.Index)
		if math.IsNaN(l) {
			continue
		}
		votes[l]++
		most = max(most, votes[l])
	}
	for _, m := range matches {
		if l := q.label(m.Index); !math.IsNaN(l) && votes[l] == most {
			return l
		}
	}
	return math.NaN()
}

func (q *Quantizer) label(idx int) float64 {
	if q.labels == nil {
		return float64(idx)
	}
	if idx >= len(q.labels) {
		return math.NaN()
	}
	return q.labels[idx]
}

func (q *Quantizer) rejected() float64 {
	if q.labels != nil {
		return math.NaN()
	}
	return -1
}

// ClassifyBatch classifies every row of samples concurrently.
func (q *Quantizer) ClassifyBatch(ctx context.Context, samples *sampleset.SampleSet) ([]float64, error) {
	n := samples.Len()
	out := make([]float64, n)
	workers := runtime.GOMAXPROCS(0)
	chunk := max((n+workers-1)/workers, 1)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return learning.WrapError(learning.CodeLearningInterrupted, "classification interrupted", err)
				}
				out[i] = q.Classify(samples.Row(i))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Learn replaces the code book with samples. Every sample becomes a model;
// labels may be nil. weights are ignored.
func (q *Quantizer) Learn(ctx context.Context, samples *sampleset.SampleSet, labels, weights []float64) error {
	if err := learning.CheckInputs(samples, labels, weights); err != nil {
		return err
	}
	if err := learning.Poll(ctx, nil, 0); err != nil {
		return err
	}
	var ls []float64
	if labels != nil {
		ls = append([]float64(nil), labels...)
	}
	return q.SetModels(ctx, samples.Clone(), ls)
}

// LearnOne classifies features and then appends them to the code book. A
// tree in use goes stale and is dropped; call UseTree again to rebuild it.
// The first usable label switches an unlabeled code book to labeled mode,
// with NaN for the models learned before it.
func (q *Quantizer) LearnOne(features []float64, label, _ float64) float64 {
	result := q.Classify(features)
	if q.useTree {
		q.DisableTree()
	}
	if err := q.models.Append(features); err != nil {
		return math.NaN()
	}
	switch {
	case q.labels != nil:
		q.labels = append(q.labels, label)
	case learning.IsLabel(label):
		// Earlier models were unlabeled.
		q.labels = make([]float64, q.models.Len())
		for i := range q.labels {
			q.labels[i] = math.NaN()
		}
		q.labels[len(q.labels)-1] = label
	}
	return result
}

// Converged always returns false; every new sample extends the code book.
func (q *Quantizer) Converged() bool { return false }

// Capabilities implements learning.Algorithm.
func (q *Quantizer) Capabilities() learning.Capabilities {
	return learning.NonSupervisedLearner | learning.OnlineLearner
}

var _ learning.Model = (*Quantizer)(nil)
