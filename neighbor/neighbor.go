// Package neighbor provides the bounded result list of k-nearest-neighbor
// queries.
package neighbor

import (
	"cmp"
	"math"
	"slices"

	"github.com/hupe1980/vecml/internal/searcher"
)

// Match is a (distance, sample index) pair.
type Match struct {
	Distance float64
	Index    int
}

// List keeps the k smallest distances offered so far.
//
// It is a max-heap: the largest admitted distance sits on top and is the
// pruning bound returned by Worst. The contents are only sorted on Sorted.
type List struct {
	pq *searcher.PriorityQueue
	k  int
}

// NewList creates a list with capacity k.
func NewList(k int) *List {
	if k < 0 {
		k = 0
	}
	return &List{
		pq: searcher.NewPriorityQueueCap(true, k),
		k:  k,
	}
}

// Offer admits (distance, index) if it is strictly closer than Worst.
func (l *List) Offer(distance float64, index int) bool {
	if !(distance < l.Worst()) {
		return false
	}
	return l.pq.PushItemBounded(searcher.PriorityQueueItem{Node: index, Distance: distance}, l.k)
}

// Worst returns the largest admitted distance once the list is full,
// +Inf before that.
func (l *List) Worst() float64 {
	if l.pq.Len() < l.k {
		return math.Inf(1)
	}
	top, ok := l.pq.TopItem()
	if !ok {
		// k == 0 admits nothing.
		return math.Inf(-1)
	}
	return top.Distance
}

// Top returns the currently worst admitted match.
func (l *List) Top() (Match, bool) {
	top, ok := l.pq.TopItem()
	if !ok {
		return Match{Index: -1, Distance: math.Inf(1)}, false
	}
	return Match{Distance: top.Distance, Index: top.Node}, true
}

// Len returns the number of admitted matches.
func (l *List) Len() int { return l.pq.Len() }

// Cap returns k.
func (l *List) Cap() int { return l.k }

// Full reports whether k matches have been admitted.
func (l *List) Full() bool { return l.pq.Len() >= l.k }

// Reset empties the list, keeping its capacity.
func (l *List) Reset() { l.pq.Reset() }

// Sorted returns the matches in ascending distance. Equal distances are
// ordered by index. The list itself is left untouched.
func (l *List) Sorted() []Match {
	items := l.pq.Items()
	out := make([]Match, len(items))
	for i, it := range items {
		out[i] = Match{Distance: it.Distance, Index: it.Node}
	}
	slices.SortFunc(out, func(a, b Match) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	return out
}

// Indices returns the sample indices of matches in ascending distance.
func Indices(matches []Match) []int {
	out := make([]int, len(matches))
	for i, m := range matches {
		out[i] = m.Index
	}
	return out
}
