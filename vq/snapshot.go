package vq

import (
	"context"
	"math"

	"github.com/hupe1980/vecml/distance"
	"github.com/hupe1980/vecml/learning"
	"github.com/hupe1980/vecml/sampleset"
)

// Snapshot is the persisted form of a Quantizer.
//
// JSON has no NaN or Inf, so missing labels are stored as -1 and an
// infinite reject threshold as a nil pointer.
type Snapshot struct {
	Metric         string    `json:"metric"`
	Features       int       `json:"features"`
	Models         []float64 `json:"models"`
	Labels         []float64 `json:"labels,omitempty"`
	Reject         *float64  `json:"reject,omitempty"`
	K              int       `json:"k"`
	Tree           bool      `json:"tree,omitempty"`
	MaxEvaluations int       `json:"max_evaluations,omitempty"`
}

// Snapshot captures the quantizer state. Quantizers with a custom measure
// cannot be captured.
func (q *Quantizer) Snapshot() (Snapshot, error) {
	if q.metric == customMetric {
		return Snapshot{}, learning.NewError(learning.CodeInvalidArgument,
			"custom distance measures cannot be persisted")
	}

	s := Snapshot{
		Metric:         q.metric.String(),
		Features:       q.models.Features(),
		Models:         append([]float64(nil), q.models.Data()...),
		K:              q.k,
		Tree:           q.useTree,
		MaxEvaluations: q.maxEvaluations,
	}
	if q.labels != nil {
		s.Labels = make([]float64, len(q.labels))
		for i, l := range q.labels {
			if math.IsNaN(l) {
				l = -1
			}
			s.Labels[i] = l
		}
	}
	if !math.IsInf(q.reject, 1) {
		r := q.reject
		s.Reject = &r
	}
	return s, nil
}

// FromSnapshot restores a quantizer, rebuilding its tree if one was in use.
func FromSnapshot(ctx context.Context, s Snapshot) (*Quantizer, error) {
	m, err := distance.ParseMetric(s.Metric)
	if err != nil {
		return nil, learning.WrapError(learning.CodeInvalidArgument, "invalid snapshot", err)
	}
	models, err := sampleset.FromData(append([]float64(nil), s.Models...), s.Features)
	if err != nil {
		return nil, learning.WrapError(learning.CodeInvalidArgument, "invalid snapshot", err)
	}

	var labels []float64
	if s.Labels != nil {
		labels = make([]float64, len(s.Labels))
		for i, l := range s.Labels {
			if l < 0 {
				l = math.NaN()
			}
			labels[i] = l
		}
	}

	opts := []Option{WithMetric(m), WithK(s.K)}
	if s.Reject != nil {
		opts = append(opts, WithRejectThreshold(*s.Reject))
	}
	q := New(nil, opts...)
	if err := q.SetModels(ctx, models, labels); err != nil {
		return nil, err
	}
	if s.Tree {
		if err := q.UseTree(ctx, s.MaxEvaluations); err != nil {
			return nil, err
		}
	}
	return q, nil
}
