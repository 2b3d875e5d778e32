package loader

import (
	"testing"

	"github.com/vornstream/voxelstream/pkg/voxelgrid"
)

func TestPriorityDecreasesWithDistance(t *testing.T) {
	near := Priority(1, 100)
	far := Priority(10, 100)
	if near <= far {
		t.Fatalf("Priority(near)=%d should exceed Priority(far)=%d", near, far)
	}
}

func TestPriorityNeverUnderflows(t *testing.T) {
	if got := Priority(1e9, 1e9); got != 0 {
		t.Errorf("Priority() for a huge distance = %d, want 0 (clamped, not wrapped)", got)
	}
}

func TestPriorityZeroDistanceIsMaximal(t *testing.T) {
	if got := Priority(0, 100); got != ^uint32(0) {
		t.Errorf("Priority(0, ...) = %d, want MaxUint32", got)
	}
}

func TestPriorityQueuePopsHighestPriorityFirst(t *testing.T) {
	q := newPriorityQueue()
	low := &Item{TLC: voxelgrid.TLCPos{X: 1}, Priority: 10}
	high := &Item{TLC: voxelgrid.TLCPos{X: 2}, Priority: 100}
	mid := &Item{TLC: voxelgrid.TLCPos{X: 3}, Priority: 50}

	q.push(low)
	q.push(high)
	q.push(mid)

	order := []*Item{q.pop(), q.pop(), q.pop()}
	if order[0] != high || order[1] != mid || order[2] != low {
		t.Fatalf("pop order = %+v, want [high mid low]", order)
	}
}

func TestPriorityQueuePopOnEmptyReturnsNil(t *testing.T) {
	q := newPriorityQueue()
	if got := q.pop(); got != nil {
		t.Fatalf("pop() on an empty queue = %+v, want nil", got)
	}
}
