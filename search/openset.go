package search

import "container/heap"

// Compile time check to ensure openHeap satisfies the heap interface.
var _ heap.Interface = (*openHeap)(nil)

// OpenItem is one open-set entry. Seq is the insertion sequence number: it
// breaks fScore ties in favor of earlier discovery and identifies stale
// entries left behind by re-insertion.
type OpenItem struct {
	Node uint32
	F    float64
	Seq  uint64
}

// openHeap implements heap.Interface over OpenItems. Entries are never
// updated in place (re-insertion supersedes instead), so no per-item index
// bookkeeping is needed.
type openHeap []OpenItem

// Len returns the number of elements in the heap.
func (h openHeap) Len() int { return len(h) }

// Less orders by fScore, then by insertion sequence.
func (h openHeap) Less(i, j int) bool {
	if h[i].F != h[j].F {
		return h[i].F < h[j].F
	}

	return h[i].Seq < h[j].Seq
}

// Swap swaps the elements with indexes i and j.
func (h openHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

// Push adds x to the heap.
func (h *openHeap) Push(x any) {
	item, _ := x.(OpenItem)
	*h = append(*h, item)
}

// Pop removes and returns the minimum element from the heap.
func (h *openHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1] // Reslice without creating a new underlying array

	return item
}

// OpenSet is the search frontier: a priority structure keyed by
// (fScore, insertion sequence). A node may appear multiple times after
// re-insertion with a better score; callers detect and discard the
// superseded entries on pop instead of decreasing priorities in place.
type OpenSet struct {
	h   openHeap
	seq uint64
}

// NewOpenSet creates an OpenSet with room for capacity entries.
func NewOpenSet(capacity int) *OpenSet {
	return &OpenSet{
		h: make(openHeap, 0, capacity),
	}
}

// Push inserts node with priority f and returns the assigned sequence
// number. Sequence numbers are unique and strictly increasing within a run.
func (s *OpenSet) Push(node uint32, f float64) uint64 {
	s.seq++
	heap.Push(&s.h, OpenItem{Node: node, F: f, Seq: s.seq})

	return s.seq
}

// Pop removes and returns the minimum entry. The second return is false when
// the set is empty.
func (s *OpenSet) Pop() (OpenItem, bool) {
	if len(s.h) == 0 {
		return OpenItem{}, false
	}

	item, _ := heap.Pop(&s.h).(OpenItem)

	return item, true
}

// Len returns the number of entries, counting stale ones.
func (s *OpenSet) Len() int { return len(s.h) }

// Items returns the raw heap contents in no particular order, stale entries
// included. The slice is owned by the set; callers must not mutate or
// retain it.
func (s *OpenSet) Items() []OpenItem { return s.h }

// Reset empties the set and restarts the sequence counter, retaining the
// underlying capacity.
func (s *OpenSet) Reset() {
	s.h = s.h[:0]
	s.seq = 0
}
