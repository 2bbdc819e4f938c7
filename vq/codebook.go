package vq

import (
	"context"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/vecml/distance"
	"github.com/hupe1980/vecml/learning"
	"github.com/hupe1980/vecml/sampleset"
)

// TrainCodeBook derives k model vectors from samples with Lloyd's k-means
// under the squared geometric distance. Centroids start at k distinct
// random samples chosen with seed. Training stops after maxIter iterations
// or once no assignment changes.
//
// It returns the code book and, for every sample, the index of its centroid.
func TrainCodeBook(ctx context.Context, samples *sampleset.SampleSet, k, maxIter int, seed int64) (*sampleset.SampleSet, []int, error) {
	n, dim := samples.Len(), samples.Features()
	if k <= 0 || n < k {
		return nil, nil, learning.Errorf(learning.CodeInvalidArgument,
			"cannot train %d centroids from %d samples", k, n)
	}

	rng := rand.New(rand.NewSource(seed))
	centroids := sampleset.New(dim)
	for _, i := range rng.Perm(n)[:k] {
		_ = centroids.Append(samples.Row(i))
	}

	assignments := make([]int, n)
	for i := range assignments {
		assignments[i] = -1
	}
	counts := make([]int, k)
	sums := sampleset.New(dim)
	sums.Resize(k)

	for iter := range maxIter {
		if err := learning.Poll(ctx, nil, float64(iter)/float64(maxIter)); err != nil {
			return nil, nil, err
		}

		changed := false
		for i := range n {
			if c := nearest(samples.Row(i), centroids); assignments[i] != c {
				assignments[i] = c
				changed = true
			}
		}
		if !changed {
			break
		}

		clear(sums.Data())
		clear(counts)
		for i, c := range assignments {
			floats.Add(sums.Row(c), samples.Row(i))
			counts[c]++
		}
		for c := range k {
			if counts[c] == 0 {
				// Reseed an empty cluster from a random sample.
				_ = centroids.Set(c, samples.Row(rng.Intn(n)))
				continue
			}
			row := centroids.Row(c)
			copy(row, sums.Row(c))
			floats.Scale(1/float64(counts[c]), row)
		}
	}

	return centroids, assignments, nil
}

func nearest(v []float64, centroids *sampleset.SampleSet) int {
	best, bestD := 0, math.Inf(1)
	for c := range centroids.Len() {
		if d := distance.SquaredGeometric(v, centroids.Row(c)); d < bestD {
			best, bestD = c, d
		}
	}
	return best
}

// AssignLabels labels each of k centroids with the majority label of the
// samples assigned to it. Ties go to the smaller label. Centroids without
// labelled members get NaN.
func AssignLabels(k int, assignments []int, labels []float64) []float64 {
	votes := make([]map[float64]int, k)
	for i, c := range assignments {
		if c < 0 || c >= k || !learning.IsLabel(labels[i]) {
			continue
		}
		if votes[c] == nil {
			votes[c] = make(map[float64]int)
		}
		votes[c][labels[i]]++
	}

	out := make([]float64, k)
	for c := range out {
		out[c] = math.NaN()
		most := 0
		for l, n := range votes[c] {
			if n > most || (n == most && l < out[c]) {
				out[c], most = l, n
			}
		}
	}
	return out
}
