package testutil

import (
	"cmp"
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/vecml/distance"
	"github.com/hupe1980/vecml/sampleset"
)

// SearchResult represents a search result.
type SearchResult struct {
	Index    int
	Distance float64
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformVector returns a vector with values in [0, 1).
func (r *RNG) UniformVector(dimensions int) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := make([]float64, dimensions)
	for i := range v {
		v[i] = r.rand.Float64()
	}
	return v
}

// UniformSampleSet generates num samples with values in [0, 1).
func (r *RNG) UniformSampleSet(num, dimensions int) *sampleset.SampleSet {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dimensions)
	for i := range data {
		data[i] = r.rand.Float64()
	}
	s, _ := sampleset.FromData(data, dimensions)
	return s
}

// GaussianSampleSet generates samples from a standard normal distribution,
// scaled per dimension by scales (nil means 1). Unequal scales give the
// elongated distributions a variance-based split has to adapt to.
func (r *RNG) GaussianSampleSet(num, dimensions int, scales []float64) *sampleset.SampleSet {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dimensions)
	for i := range num {
		for j := range dimensions {
			s := 1.0
			if scales != nil {
				s = scales[j]
			}
			data[i*dimensions+j] = r.rand.NormFloat64() * s
		}
	}
	s, _ := sampleset.FromData(data, dimensions)
	return s
}

// Blobs generates num labelled samples around classes Gaussian centers
// placed on a coarse grid. spread is the standard deviation of each blob.
// Labels cycle through 0..classes-1.
func (r *RNG) Blobs(num, dimensions, classes int, spread float64) (*sampleset.SampleSet, []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	centers := make([][]float64, classes)
	for c := range centers {
		centers[c] = make([]float64, dimensions)
		for j := range dimensions {
			centers[c][j] = float64(r.rand.Intn(4)*5) + float64(c*5*((j+c)%2))
		}
	}

	data := make([]float64, num*dimensions)
	labels := make([]float64, num)
	for i := range num {
		c := i % classes
		labels[i] = float64(c)
		for j := range dimensions {
			data[i*dimensions+j] = centers[c][j] + r.rand.NormFloat64()*spread
		}
	}
	s, _ := sampleset.FromData(data, dimensions)
	return s, labels
}

// ComputeRecall computes recall@k by comparing approximate results against ground truth.
func ComputeRecall(groundTruth, approximate []SearchResult) float64 {
	if len(groundTruth) == 0 || len(approximate) == 0 {
		if len(groundTruth) == 0 && len(approximate) == 0 {
			return 1.0
		}
		return 0.0
	}

	k := min(len(approximate), len(groundTruth))

	truthSet := make(map[int]struct{}, k)
	for i := range k {
		truthSet[groundTruth[i].Index] = struct{}{}
	}

	hits := 0
	for _, r := range approximate {
		if _, ok := truthSet[r.Index]; ok {
			hits++
		}
	}

	return float64(hits) / float64(k)
}

// BruteForceSearch performs an exact squared-Euclidean search for ground truth.
// Results are ordered by distance, then index.
func BruteForceSearch(samples *sampleset.SampleSet, query []float64, k int) []SearchResult {
	results := make([]SearchResult, samples.Len())
	for i := range results {
		results[i] = SearchResult{Index: i, Distance: distance.SquaredGeometric(query, samples.Row(i))}
	}

	slices.SortFunc(results, func(a, b SearchResult) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}
