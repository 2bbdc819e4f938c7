package searcher

// PriorityQueueItem is an entry of the priority queue.
// Value-based: no pointers, no back-index.
type PriorityQueueItem struct {
	Node     int     // Node is a sample or tree-node index.
	Distance float64 // Distance is the priority of the item in the queue.
}

// PriorityQueue implements a binary heap holding PriorityQueueItems.
// It does NOT implement container/heap to avoid interface overhead.
type PriorityQueue struct {
	isMaxHeap bool                // true = max heap, false = min heap
	items     []PriorityQueueItem // Value-based storage
}

// NewPriorityQueue creates a new priority queue.
func NewPriorityQueue(isMaxHeap bool) *PriorityQueue {
	return NewPriorityQueueCap(isMaxHeap, 16)
}

// NewPriorityQueueCap creates a priority queue with preallocated capacity.
func NewPriorityQueueCap(isMaxHeap bool, capacity int) *PriorityQueue {
	if capacity < 0 {
		capacity = 0
	}
	return &PriorityQueue{
		isMaxHeap: isMaxHeap,
		items:     make([]PriorityQueueItem, 0, capacity),
	}
}

// Reset clears the priority queue for reuse.
func (pq *PriorityQueue) Reset() {
	pq.items = pq.items[:0]
}

// Len returns the number of elements in the heap.
func (pq *PriorityQueue) Len() int {
	return len(pq.items)
}

// TopItem returns the top element of the heap.
func (pq *PriorityQueue) TopItem() (PriorityQueueItem, bool) {
	if len(pq.items) == 0 {
		return PriorityQueueItem{}, false
	}
	return pq.items[0], true
}

// PushItem inserts an item while maintaining the heap invariant.
func (pq *PriorityQueue) PushItem(item PriorityQueueItem) {
	pq.items = append(pq.items, item)
	pq.siftUp(len(pq.items) - 1)
}

// PushItemBounded inserts an item into a heap holding at most capacity items.
// On a full max-heap the item replaces the top only if its distance is
// strictly smaller; on a full min-heap only if strictly larger.
// It reports whether the item was admitted.
func (pq *PriorityQueue) PushItemBounded(item PriorityQueueItem, capacity int) bool {
	if len(pq.items) < capacity {
		pq.PushItem(item)
		return true
	}
	if capacity <= 0 {
		return false
	}

	top := pq.items[0]
	if pq.isMaxHeap {
		if item.Distance < top.Distance {
			pq.items[0] = item
			pq.siftDown(0)
			return true
		}
		return false
	}
	if item.Distance > top.Distance {
		pq.items[0] = item
		pq.siftDown(0)
		return true
	}
	return false
}

// PopItem removes and returns the top element from the heap.
func (pq *PriorityQueue) PopItem() (PriorityQueueItem, bool) {
	n := len(pq.items)
	if n == 0 {
		return PriorityQueueItem{}, false
	}

	item := pq.items[0]
	pq.items[0] = pq.items[n-1]
	pq.items = pq.items[:n-1]

	if len(pq.items) > 0 {
		pq.siftDown(0)
	}

	return item, true
}

// Items returns the heap contents in heap order. The slice aliases the queue.
func (pq *PriorityQueue) Items() []PriorityQueueItem {
	return pq.items
}

func (pq *PriorityQueue) less(i, j int) bool {
	if pq.isMaxHeap {
		return pq.items[i].Distance > pq.items[j].Distance
	}
	return pq.items[i].Distance < pq.items[j].Distance
}

func (pq *PriorityQueue) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !pq.less(i, parent) {
			break
		}
		pq.items[i], pq.items[parent] = pq.items[parent], pq.items[i]
		i = parent
	}
}

func (pq *PriorityQueue) siftDown(i int) {
	n := len(pq.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		right := left + 1
		if right < n && pq.less(right, left) {
			child = right
		}
		if !pq.less(child, i) {
			break
		}
		pq.items[i], pq.items[child] = pq.items[child], pq.items[i]
		i = child
	}
}
