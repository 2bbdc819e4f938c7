// Package testutil provides testing utilities for vecml.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating reproducible random data sets and
// computing exact nearest neighbors as ground truth.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	samples := rng.UniformSampleSet(100, 8)            // uniform [0, 1)
//	samples, labels := rng.Blobs(200, 2, 3, 0.5)        // labelled clusters
//
// # Exact Search (Ground Truth)
//
//	results := testutil.BruteForceSearch(samples, query, k)
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(exact, approx)
package testutil
