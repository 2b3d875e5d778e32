package loader

import (
	"container/heap"
	"math"

	"github.com/vornstream/voxelstream/pkg/voxelgrid"
)

// Item is one pending (or re-queued) load-queue entry (spec.md §3's "chunk
// load-queue item"): a TLC plus which LODs of which layers need loading.
type Item struct {
	TLC        voxelgrid.TLCPos
	LODs       map[voxelgrid.LOD]bool
	NeedEntity bool
	Priority   uint32
}

// Priority computes spec.md §4.G's fairness rule: `u32::MAX - floor(distance
// * size)`, clamped to stay non-negative.
func Priority(distanceToCenter float64, size int) uint32 {
	scaled := distanceToCenter * float64(size)
	if scaled < 0 {
		scaled = 0
	}
	floor := uint64(math.Floor(scaled))
	if floor >= math.MaxUint32 {
		return 0
	}
	return math.MaxUint32 - uint32(floor)
}

// priorityQueue is a max-heap on Item.Priority (grounded in the
// container/heap timed-scheduler pattern used for priority dispatch
// elsewhere in the ecosystem).
type priorityQueue []*Item

func (q priorityQueue) Len() int { return len(q) }
func (q priorityQueue) Less(i, j int) bool {
	return q[i].Priority > q[j].Priority
}
func (q priorityQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *priorityQueue) Push(x any) {
	*q = append(*q, x.(*Item))
}

func (q *priorityQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return it
}

func newPriorityQueue() *priorityQueue {
	q := &priorityQueue{}
	heap.Init(q)
	return q
}

func (q *priorityQueue) push(it *Item) { heap.Push(q, it) }

func (q *priorityQueue) pop() *Item {
	if q.Len() == 0 {
		return nil
	}
	return heap.Pop(q).(*Item)
}
