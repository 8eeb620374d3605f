package stats

import (
	"container/heap"
	"sync"
	"sync/atomic"
	"time"
)

// evictBatch bounds how many entries one critical section removes, so writers
// racing a large sweep wait for at most one batch.
const evictBatch = 512

// EventWindow is a concurrent min-ordered multiset of event timestamps.
// Size is kept in a counter next to the heap and can be read without taking the lock.
type EventWindow struct {
	mu    sync.Mutex
	items timestampHeap
	size  atomic.Int64
}

// NewEventWindow returns an empty window.
func NewEventWindow() *EventWindow {
	return &EventWindow{}
}

// Insert adds t. Timestamps may arrive in any order. A zero t panics.
func (w *EventWindow) Insert(t time.Time) {
	if t.IsZero() {
		panic("stats: zero timestamp inserted into event window")
	}

	w.mu.Lock()
	heap.Push(&w.items, t)
	w.size.Add(1)
	w.mu.Unlock()
}

// Size returns the number of entries currently held.
func (w *EventWindow) Size() int {
	return int(w.size.Load())
}

// Oldest returns the smallest timestamp present.
func (w *EventWindow) Oldest() (time.Time, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.items) == 0 {
		return time.Time{}, false
	}
	return w.items[0], true
}

// EvictOlderThan removes every entry strictly before cutoff and returns how many were removed.
// It stops at the first entry not before cutoff, so the cost follows the number of expired entries.
func (w *EventWindow) EvictOlderThan(cutoff time.Time) int {
	evicted := 0
	for {
		n, more := w.evictBatch(cutoff)
		evicted += n
		if !more {
			return evicted
		}
	}
}

func (w *EventWindow) evictBatch(cutoff time.Time) (int, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := 0
	for len(w.items) > 0 && w.items[0].Before(cutoff) {
		if n == evictBatch {
			return n, true
		}
		heap.Pop(&w.items)
		w.size.Add(-1)
		n++
	}
	return n, false
}

type timestampHeap []time.Time

func (h timestampHeap) Len() int           { return len(h) }
func (h timestampHeap) Less(i, j int) bool { return h[i].Before(h[j]) }
func (h timestampHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *timestampHeap) Push(x any) {
	*h = append(*h, x.(time.Time))
}

func (h *timestampHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	*h = old[:n-1]
	return t
}
