package voxelgrid

import "sync/atomic"

// State is a chunk cell's ownership state (spec.md §3, §4.A).
type State int32

const (
	StateInvalid State = iota
	StateMissing
	StateValid
)

func (s State) String() string {
	switch s {
	case StateInvalid:
		return "Invalid"
	case StateMissing:
		return "Missing"
	case StateValid:
		return "Valid"
	default:
		return "Unknown"
	}
}

// LoadToken is the capability returned by TakeForLoading: proof that its
// holder has exclusive access to one cell's payload for as long as the
// cell remains Missing. It is the Go re-expression of spec.md §9's
// "lightweight capability token" — uniqueness of the token, not a raw
// pointer, is what encodes the no-aliasing invariant.
type LoadToken struct{}

// Cell holds one chunk's payload behind a three-state ownership machine
// (spec.md §4.A). It never reallocates its payload: callers are expected to
// keep Cells in a slice that is never resized so a Missing cell's storage
// never moves while a worker holds its LoadToken.
//
// The state word is the only field read from more than one goroutine. Its
// atomic compare-and-swap operations are the synchronization points: a
// worker's writes to payload while Missing happen-before the main thread's
// observation of Valid, because FinishLoading's CAS is main-thread-initiated
// only after the worker has handed the token back.
type Cell[T any] struct {
	state   atomic.Int32
	payload T
}

// NewCell creates a cell in the Invalid state with the given zero-value
// payload (callers fill it in once they own a LoadToken).
func NewCell[T any](zero T) *Cell[T] {
	c := &Cell[T]{payload: zero}
	c.state.Store(int32(StateInvalid))
	return c
}

// State returns the current state. Always safe to call from any thread.
func (c *Cell[T]) State() State {
	return State(c.state.Load())
}

// Read returns the payload and true if the cell is Valid, else the zero
// value and false. Never panics.
func (c *Cell[T]) Read() (T, bool) {
	if State(c.state.Load()) != StateValid {
		var zero T
		return zero, false
	}
	return c.payload, true
}

// WriteMut returns a pointer to the payload for in-place mutation. The
// caller must guarantee the cell is Valid and that it is the sole
// main-thread editor; it panics otherwise.
func (c *Cell[T]) WriteMut() *T {
	if State(c.state.Load()) != StateValid {
		panic("voxelgrid: WriteMut called on a cell that is not Valid")
	}
	return &c.payload
}

// TakeForLoading transitions Invalid -> Missing and returns a LoadToken.
// It panics if the cell is not Invalid: that would be an invariant breach
// (the dispatcher must only ever take Invalid cells).
func (c *Cell[T]) TakeForLoading() LoadToken {
	if !c.state.CompareAndSwap(int32(StateInvalid), int32(StateMissing)) {
		panic("voxelgrid: TakeForLoading called on a cell that is not Invalid")
	}
	return LoadToken{}
}

// Payload returns a pointer to the payload for a goroutine holding this
// cell's LoadToken. The cell must be Missing; this is not itself checked at
// runtime (the token is the proof), matching spec.md §9's capability model.
func (c *Cell[T]) Payload(_ LoadToken) *T {
	return &c.payload
}

// FinishLoading transitions Missing -> Valid, consuming the token. Panics
// if the cell is not Missing.
func (c *Cell[T]) FinishLoading(_ LoadToken) {
	if !c.state.CompareAndSwap(int32(StateMissing), int32(StateValid)) {
		panic("voxelgrid: FinishLoading called on a cell that is not Missing")
	}
}

// MarkInvalid transitions Valid or Invalid -> Invalid. It returns false
// without changing anything if the cell is Missing (spec.md §4.A, §7.2):
// the chunk is still being loaded, and the caller should requeue it at the
// same priority.
func (c *Cell[T]) MarkInvalid() bool {
	for {
		s := State(c.state.Load())
		if s == StateMissing {
			return false
		}
		if c.state.CompareAndSwap(int32(s), int32(StateInvalid)) {
			return true
		}
	}
}

// ChunkStorage is the per-chunk, per-LOD payload held by a Cell: a bitmask
// and, for LODs configured with voxel IDs, a parallel ID array
// (spec.md §4.C, §9's BitmaskOnly/BitmaskAndIDs split expressed via a
// nilable field rather than a sum type, since Go lacks one; callers test
// IDs for nil to tell the two cases apart).
type ChunkStorage struct {
	Bitmask *Bitmask
	IDs     *VoxelIDs // nil when this LOD carries no voxel IDs
}

// NewChunkStorage allocates empty storage for voxelCount voxels.
func NewChunkStorage(voxelCount int, hasVoxelIDs bool) *ChunkStorage {
	cs := &ChunkStorage{Bitmask: NewBitmask(voxelCount)}
	if hasVoxelIDs {
		cs.IDs = NewVoxelIDs(voxelCount)
	}
	return cs
}
