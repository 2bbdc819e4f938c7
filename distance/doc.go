// Package distance provides the measures used to compare a sample vector
// against a model vector.
//
// # Supported Metrics
//
//   - MetricSquaredGeometric: squared Euclidean distance (default)
//   - MetricGeometric: Euclidean distance
//   - MetricCosine: one minus cosine similarity
//   - MetricHistogramIntersection: negated histogram intersection
//   - MetricChiSquared: chi-squared distance
//   - MetricHamming: number of differing elements
//   - MetricLogLikelihood: negated log-likelihood of a sample histogram under a model distribution
//   - MetricJeffreysDivergence: symmetrized Kullback-Leibler divergence
//
// Vectors that concatenate independently measured features are compared with
// Multi, which splits them at boundary indices and reduces the per-segment
// distances.
//
// # Usage
//
//	d := distance.SquaredGeometric(a, b)
//	f, _ := distance.Provider(distance.MetricChiSquared)
//	m, _ := distance.NewMulti([]distance.Measure{f, distance.Func(distance.Hamming)}, []int{16, 24})
package distance
