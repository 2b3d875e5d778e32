package voxelgrid

import (
	"sync"
	"testing"
)

func TestCellLifecycleHappyPath(t *testing.T) {
	c := NewCell[int](0)
	if c.State() != StateInvalid {
		t.Fatalf("new cell state = %v, want Invalid", c.State())
	}

	token := c.TakeForLoading()
	if c.State() != StateMissing {
		t.Fatalf("state after TakeForLoading = %v, want Missing", c.State())
	}

	*c.Payload(token) = 42
	c.FinishLoading(token)
	if c.State() != StateValid {
		t.Fatalf("state after FinishLoading = %v, want Valid", c.State())
	}

	v, ok := c.Read()
	if !ok || v != 42 {
		t.Fatalf("Read() = (%d, %v), want (42, true)", v, ok)
	}

	if !c.MarkInvalid() {
		t.Fatal("MarkInvalid() on a Valid cell should succeed")
	}
	if c.State() != StateInvalid {
		t.Fatalf("state after MarkInvalid = %v, want Invalid", c.State())
	}
}

func TestMarkInvalidRefusesWhileMissing(t *testing.T) {
	c := NewCell[int](0)
	c.TakeForLoading()
	if c.MarkInvalid() {
		t.Fatal("MarkInvalid() on a Missing cell should return false (requeue signal)")
	}
	if c.State() != StateMissing {
		t.Fatalf("state after refused MarkInvalid = %v, want Missing unchanged", c.State())
	}
}

func TestReadOnNonValidCellReturnsZeroAndFalse(t *testing.T) {
	c := NewCell[int](0)
	if v, ok := c.Read(); ok || v != 0 {
		t.Fatalf("Read() on Invalid cell = (%d, %v), want (0, false)", v, ok)
	}
}

func TestTakeForLoadingPanicsUnlessInvalid(t *testing.T) {
	c := NewCell[int](0)
	c.TakeForLoading()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic taking an already-Missing cell for loading")
		}
	}()
	c.TakeForLoading()
}

func TestFinishLoadingPanicsUnlessMissing(t *testing.T) {
	c := NewCell[int](0)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic finishing a load on an Invalid cell")
		}
	}()
	c.FinishLoading(LoadToken{})
}

// TestConcurrentTakeForLoadingOnlyOneWinner exercises the cell's
// lock-free handoff under contention: only one of many concurrent
// TakeForLoading callers on the same cell may succeed.
func TestConcurrentTakeForLoadingOnlyOneWinner(t *testing.T) {
	c := NewCell[int](0)
	const attempts = 50
	var wg sync.WaitGroup
	var successes, panics int32
	var mu sync.Mutex

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if recover() != nil {
					mu.Lock()
					panics++
					mu.Unlock()
				}
			}()
			c.TakeForLoading()
			mu.Lock()
			successes++
			mu.Unlock()
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("successes = %d, want exactly 1", successes)
	}
	if panics != attempts-1 {
		t.Fatalf("panics = %d, want %d", panics, attempts-1)
	}
}

func TestNewChunkStorageOmitsIDsWhenNotRequested(t *testing.T) {
	cs := NewChunkStorage(64, false)
	if cs.IDs != nil {
		t.Fatal("IDs should be nil when hasVoxelIDs is false")
	}
	if cs.Bitmask.Len() != 64 {
		t.Fatalf("Bitmask.Len() = %d, want 64", cs.Bitmask.Len())
	}

	withIDs := NewChunkStorage(64, true)
	if withIDs.IDs == nil || withIDs.IDs.Len() != 64 {
		t.Fatal("IDs should be allocated with length 64 when hasVoxelIDs is true")
	}
}
