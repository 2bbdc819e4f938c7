// Package sampleset provides the row-major feature matrix shared by all
// learning algorithms, together with helpers for parallel label and weight
// vectors.
package sampleset

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// ErrFeatureCountMismatch is returned when a vector does not match the
// dimensionality fixed by the first sample.
var ErrFeatureCountMismatch = errors.New("feature count mismatch")

// SampleSet is an ordered sequence of feature vectors of identical length.
//
// The dimensionality is fixed either at construction or by the first
// appended sample. Rows are stored contiguously.
type SampleSet struct {
	data     []float64
	features int
}

// New creates an empty sample set. features may be 0, in which case the
// first appended sample decides the dimensionality.
func New(features int) *SampleSet {
	if features < 0 {
		features = 0
	}
	return &SampleSet{features: features}
}

// FromRows copies rows into a new sample set.
func FromRows(rows [][]float64) (*SampleSet, error) {
	s := New(0)
	for i, r := range rows {
		if err := s.Append(r); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return s, nil
}

// FromData wraps a flat row-major buffer. The buffer is not copied.
func FromData(data []float64, features int) (*SampleSet, error) {
	if features <= 0 {
		if len(data) == 0 {
			return New(0), nil
		}
		return nil, fmt.Errorf("%w: invalid dimension %d", ErrFeatureCountMismatch, features)
	}
	if len(data)%features != 0 {
		return nil, fmt.Errorf("%w: %d values is not a multiple of %d", ErrFeatureCountMismatch, len(data), features)
	}
	return &SampleSet{data: data, features: features}, nil
}

// Len returns the number of samples.
func (s *SampleSet) Len() int {
	if s == nil || s.features == 0 {
		return 0
	}
	return len(s.data) / s.features
}

// Features returns the dimensionality, 0 if not yet known.
func (s *SampleSet) Features() int {
	if s == nil {
		return 0
	}
	return s.features
}

// Row returns the i-th sample. The returned slice aliases internal storage.
func (s *SampleSet) Row(i int) []float64 {
	return s.data[i*s.features : (i+1)*s.features : (i+1)*s.features]
}

// At returns feature j of sample i.
func (s *SampleSet) At(i, j int) float64 {
	return s.data[i*s.features+j]
}

// Data returns the row-major backing buffer.
func (s *SampleSet) Data() []float64 {
	if s == nil {
		return nil
	}
	return s.data
}

// Append copies v to the end of the set.
func (s *SampleSet) Append(v []float64) error {
	if s.features == 0 {
		if len(v) == 0 {
			return fmt.Errorf("%w: empty vector", ErrFeatureCountMismatch)
		}
		s.features = len(v)
	}
	if len(v) != s.features {
		return fmt.Errorf("%w: expected %d, got %d", ErrFeatureCountMismatch, s.features, len(v))
	}
	s.data = append(s.data, v...)
	return nil
}

// Set overwrites sample i with v.
func (s *SampleSet) Set(i int, v []float64) error {
	if len(v) != s.features {
		return fmt.Errorf("%w: expected %d, got %d", ErrFeatureCountMismatch, s.features, len(v))
	}
	copy(s.Row(i), v)
	return nil
}

// Remove deletes sample i, shifting later samples down.
func (s *SampleSet) Remove(i int) {
	s.data = slices.Delete(s.data, i*s.features, (i+1)*s.features)
}

// Resize truncates the set to n samples. Growing pads with zero vectors.
func (s *SampleSet) Resize(n int) {
	if n < 0 {
		n = 0
	}
	size := n * s.features
	if size <= len(s.data) {
		s.data = s.data[:size]
		return
	}
	s.data = append(s.data, make([]float64, size-len(s.data))...)
}

// Reset removes all samples and forgets the dimensionality.
func (s *SampleSet) Reset() {
	s.data = nil
	s.features = 0
}

// Clone returns a deep copy.
func (s *SampleSet) Clone() *SampleSet {
	if s == nil {
		return nil
	}
	return &SampleSet{data: slices.Clone(s.data), features: s.features}
}

// UniformWeights returns n weights of 1.
func UniformWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

// NormalizeWeights scales w to sum to one in place. A zero sum leaves w
// untouched and reports false.
func NormalizeWeights(w []float64) bool {
	sum := floats.Sum(w)
	if sum == 0 {
		return false
	}
	floats.Scale(1/sum, w)
	return true
}

// ClassCount returns the largest label plus one. NaN labels are ignored.
func ClassCount(labels []float64) int {
	count := 0
	for _, l := range labels {
		if math.IsNaN(l) || l < 0 {
			continue
		}
		if c := int(l) + 1; c > count {
			count = c
		}
	}
	return count
}

// DistinctClasses returns the number of different non-NaN labels.
func DistinctClasses(labels []float64) int {
	seen := make(map[int]struct{})
	for _, l := range labels {
		if math.IsNaN(l) || l < 0 {
			continue
		}
		seen[int(l)] = struct{}{}
	}
	return len(seen)
}
