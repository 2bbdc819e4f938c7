// Package kdtree implements a balanced k-d tree over a static sample set
// for exact and budgeted nearest-neighbor queries.
//
// The tree always measures squared Euclidean distance; the pruning bound
// (split - query)^2 is only valid for that measure. Use a linear scan for
// other measures.
//
// Nodes live in a flat arena and reference their children by index, so a
// tree is a plain value graph: copying it is a slice copy, and a failed
// build simply drops the arena.
package kdtree

import (
	"context"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/hupe1980/vecml/distance"
	"github.com/hupe1980/vecml/internal/searcher"
	"github.com/hupe1980/vecml/learning"
	"github.com/hupe1980/vecml/neighbor"
	"github.com/hupe1980/vecml/sampleset"
)

const nilNode = -1

// node splits its subtree at samples[sample][dim] == split. Every sample
// reachable via smaller had feature dim <= split at build time; larger holds
// the rest.
type node struct {
	sample  int
	dim     int
	split   float64
	smaller int
	larger  int
}

// Tree is an immutable k-d tree. It is safe for concurrent queries.
type Tree struct {
	samples *sampleset.SampleSet
	nodes   []node
	root    int
}

// New returns an empty tree. Queries on it return index -1.
func New() *Tree {
	return &Tree{samples: sampleset.New(0), root: nilNode}
}

// Build constructs a tree over samples. The tree takes ownership of the
// sample set; it must not be modified afterwards.
//
// ctrl (may be nil) and ctx are polled after every subtree. If either asks
// to stop, Build returns an error carrying learning.CodeLearningInterrupted
// and no tree.
func Build(ctx context.Context, samples *sampleset.SampleSet, ctrl learning.Controller) (*Tree, error) {
	if samples == nil {
		samples = sampleset.New(0)
	}
	t := &Tree{samples: samples, root: nilNode}
	n := samples.Len()
	if n == 0 || samples.Features() == 0 {
		return t, nil
	}

	b := &builder{
		ctx:     ctx,
		ctrl:    ctrl,
		samples: samples,
		nodes:   make([]node, 0, n),
		column:  make([]float64, n),
		total:   float64(n),
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	root, err := b.build(indices)
	if err != nil {
		return nil, err
	}
	if err := learning.Poll(ctx, ctrl, 1); err != nil {
		return nil, err
	}

	t.nodes = b.nodes
	t.root = root
	return t, nil
}

type builder struct {
	ctx     context.Context
	ctrl    learning.Controller
	samples *sampleset.SampleSet
	nodes   []node
	column  []float64
	total   float64
}

func (b *builder) build(indices []int) (int, error) {
	switch len(indices) {
	case 0:
		return nilNode, nil
	case 1:
		return b.add(node{
			sample:  indices[0],
			split:   b.samples.At(indices[0], 0),
			smaller: nilNode,
			larger:  nilNode,
		}), nil
	}

	dim := b.splitDimension(indices)
	half := (len(indices) - 1) / 2
	selectNth(indices, half, func(i int) float64 { return b.samples.At(i, dim) })
	median := indices[half]

	smaller, err := b.build(indices[:half])
	if err != nil {
		return nilNode, err
	}
	if err := b.poll(); err != nil {
		return nilNode, err
	}

	larger, err := b.build(indices[half+1:])
	if err != nil {
		return nilNode, err
	}
	if err := b.poll(); err != nil {
		return nilNode, err
	}

	return b.add(node{
		sample:  median,
		dim:     dim,
		split:   b.samples.At(median, dim),
		smaller: smaller,
		larger:  larger,
	}), nil
}

func (b *builder) add(n node) int {
	b.nodes = append(b.nodes, n)
	return len(b.nodes) - 1
}

func (b *builder) poll() error {
	return learning.Poll(b.ctx, b.ctrl, float64(len(b.nodes))/b.total)
}

// splitDimension returns the dimension of maximum variance over indices.
// Ties go to the lowest dimension.
func (b *builder) splitDimension(indices []int) int {
	col := b.column[:len(indices)]
	best, bestVar := 0, math.Inf(-1)
	for d := range b.samples.Features() {
		for i, idx := range indices {
			col[i] = b.samples.At(idx, d)
		}
		_, v := stat.MeanVariance(col, nil)
		if v > bestVar {
			best, bestVar = d, v
		}
	}
	return best
}

// selectNth reorders indices so that the element at position k has the key
// it would have after sorting, with no larger key before it and no smaller
// key after it. Three-way partitioning keeps duplicate keys linear.
func selectNth(indices []int, k int, key func(int) float64) {
	lo, hi := 0, len(indices)-1
	for lo < hi {
		pivot := key(indices[lo+(hi-lo)/2])
		lt, i, gt := lo, lo, hi
		for i <= gt {
			v := key(indices[i])
			switch {
			case v < pivot:
				indices[lt], indices[i] = indices[i], indices[lt]
				lt++
				i++
			case v > pivot:
				indices[i], indices[gt] = indices[gt], indices[i]
				gt--
			default:
				i++
			}
		}
		switch {
		case k < lt:
			hi = lt - 1
		case k > gt:
			lo = gt + 1
		default:
			return
		}
	}
}

// Samples returns the indexed sample set.
func (t *Tree) Samples() *sampleset.SampleSet { return t.samples }

// Len returns the number of indexed samples.
func (t *Tree) Len() int { return len(t.nodes) }

// Features returns the dimensionality of the indexed samples.
func (t *Tree) Features() int { return t.samples.Features() }

// Depth returns the number of nodes on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	var depth func(int) int
	depth = func(ni int) int {
		if ni == nilNode {
			return 0
		}
		return 1 + max(depth(t.nodes[ni].smaller), depth(t.nodes[ni].larger))
	}
	return depth(t.root)
}

// Clone returns a deep copy of the tree and its samples.
func (t *Tree) Clone() *Tree {
	nodes := make([]node, len(t.nodes))
	copy(nodes, t.nodes)
	return &Tree{
		samples: t.samples.Clone(),
		nodes:   nodes,
		root:    t.root,
	}
}

// resultSet collects candidates during a search. Worst is the pruning
// bound: a candidate is kept only if strictly closer than it.
type resultSet interface {
	Offer(distance float64, index int) bool
	Worst() float64
}

type single struct {
	index    int
	distance float64
}

func (s *single) Offer(d float64, index int) bool {
	if d < s.distance {
		s.index, s.distance = index, d
		return true
	}
	return false
}

func (s *single) Worst() float64 { return s.distance }

// FindClosestMatch returns the index of the nearest sample and its squared
// distance. An empty tree returns (-1, +Inf).
func (t *Tree) FindClosestMatch(query []float64) (int, float64) {
	best := &single{index: -1, distance: math.Inf(1)}
	t.search(t.root, query, best)
	return best.index, best.distance
}

// FindClosestMatches returns up to n nearest samples in ascending distance.
func (t *Tree) FindClosestMatches(query []float64, n int) []neighbor.Match {
	l := neighbor.NewList(min(n, t.Len()))
	t.search(t.root, query, l)
	return l.Sorted()
}

// FindClosestMatchBounded runs a best-first search that evaluates at most
// maxEvaluations nodes. The answer is exact if the search completes within
// the budget; maxEvaluations <= 0 means unlimited.
func (t *Tree) FindClosestMatchBounded(query []float64, maxEvaluations int) (int, float64) {
	best := &single{index: -1, distance: math.Inf(1)}
	t.searchBounded(query, best, maxEvaluations)
	return best.index, best.distance
}

// FindClosestMatchesBounded is the k-NN variant of FindClosestMatchBounded.
func (t *Tree) FindClosestMatchesBounded(query []float64, n, maxEvaluations int) []neighbor.Match {
	l := neighbor.NewList(min(n, t.Len()))
	t.searchBounded(query, l, maxEvaluations)
	return l.Sorted()
}

func (t *Tree) sqdist(query []float64, sample int) float64 {
	return distance.SquaredGeometric(query, t.samples.Row(sample))
}

// sides returns the child on the query's side of the splitting plane first.
func (n *node) sides(query []float64) (near, far int, diff float64) {
	diff = query[n.dim] - n.split
	if diff <= 0 {
		return n.smaller, n.larger, diff
	}
	return n.larger, n.smaller, diff
}

func (t *Tree) search(ni int, query []float64, rs resultSet) {
	if ni == nilNode {
		return
	}
	n := &t.nodes[ni]
	rs.Offer(t.sqdist(query, n.sample), n.sample)

	near, far, diff := n.sides(query)
	t.search(near, query, rs)
	if far != nilNode && diff*diff <= rs.Worst() {
		t.search(far, query, rs)
	}
}

func (t *Tree) searchBounded(query []float64, rs resultSet, maxEvaluations int) {
	if t.root == nilNode {
		return
	}
	budget := maxEvaluations
	if budget <= 0 {
		budget = len(t.nodes)
	}

	branches := searcher.NewPriorityQueue(false)
	t.descend(t.root, query, rs, branches, &budget)
	for budget > 0 {
		b, ok := branches.PopItem()
		if !ok {
			return
		}
		// The bound may have tightened since the branch was queued.
		if b.Distance > rs.Worst() {
			continue
		}
		t.descend(b.Node, query, rs, branches, &budget)
	}
}

// descend walks from ni to a leaf, queueing every far branch that could
// still hold a closer sample.
func (t *Tree) descend(ni int, query []float64, rs resultSet, branches *searcher.PriorityQueue, budget *int) {
	for ni != nilNode && *budget > 0 {
		n := &t.nodes[ni]
		*budget--
		rs.Offer(t.sqdist(query, n.sample), n.sample)

		near, far, diff := n.sides(query)
		if far != nilNode {
			if bound := diff * diff; bound <= rs.Worst() {
				branches.PushItem(searcher.PriorityQueueItem{Node: far, Distance: bound})
			}
		}
		ni = near
	}
}
