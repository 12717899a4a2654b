package evaluator

import (
	"time"

	"github.com/lmapcloud/lmapd/internal/model"
)

// armedEvent is one entry in the priority queue, spec.md §5: "a monotonic
// timer sorted by next-fire time (a priority queue)".
type armedEvent struct {
	event *model.Event
	next  time.Time
	index int
}

// armedHeap implements container/heap.Interface, ordered by next fire time.
type armedHeap []*armedEvent

func (h armedHeap) Len() int { return len(h) }

func (h armedHeap) Less(i, j int) bool { return h[i].next.Before(h[j].next) }

func (h armedHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *armedHeap) Push(x any) {
	e := x.(*armedEvent)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *armedHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}
