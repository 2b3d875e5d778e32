package worldgrid

import (
	"testing"

	"github.com/vornstream/voxelstream/pkg/voxelgrid"
)

func TestNewEntityLayerQueueLoadAllCoversActiveRegion(t *testing.T) {
	l := NewEntityLayer(3, voxelgrid.TLCPos{})
	positions := l.QueueLoadAll()
	if len(positions) != 27 {
		t.Fatalf("QueueLoadAll() returned %d positions, want 27", len(positions))
	}
	for _, p := range positions {
		if l.Cell(p) == nil {
			t.Errorf("position %+v from QueueLoadAll() has no backing cell", p)
		}
	}
}

func TestEntityLayerCellOutOfRangeIsNil(t *testing.T) {
	l := NewEntityLayer(3, voxelgrid.TLCPos{})
	if l.Cell(voxelgrid.TLCPos{X: 1000}) != nil {
		t.Fatal("Cell() for an out-of-range TLC should be nil")
	}
}

func TestEntityLayerAllocateForLoadRoundtrip(t *testing.T) {
	l := NewEntityLayer(3, voxelgrid.TLCPos{})
	target := voxelgrid.TLCPos{X: 1, Y: 1, Z: 1}

	cell := l.Cell(target)
	if cell == nil {
		t.Fatal("target cell should be in range")
	}
	token := cell.TakeForLoading()
	chunk := &EntityChunk{IDs: []EntityID{7}}
	if !l.AllocateForLoad(target, token, chunk) {
		t.Fatal("AllocateForLoad should succeed for an in-range, Missing cell")
	}

	got, ok := l.Cell(target).Read()
	if !ok || len(got.IDs) != 1 || got.IDs[0] != 7 {
		t.Fatalf("Read() after AllocateForLoad = (%+v, %v), want ([7], true)", got, ok)
	}
}

func TestEntityLayerAllocateForLoadOutOfRangeFails(t *testing.T) {
	l := NewEntityLayer(3, voxelgrid.TLCPos{})
	if l.AllocateForLoad(voxelgrid.TLCPos{X: 1000}, voxelgrid.LoadToken{}, &EntityChunk{}) {
		t.Fatal("AllocateForLoad should fail for an out-of-range TLC")
	}
}

func TestEntityLayerShiftPreservesResidentCellAcrossASmallShift(t *testing.T) {
	l := NewEntityLayer(3, voxelgrid.TLCPos{})
	resident := voxelgrid.TLCPos{X: 1, Y: 1, Z: 1}
	cell := l.Cell(resident)
	token := cell.TakeForLoading()
	chunk := &EntityChunk{IDs: []EntityID{1}}
	l.AllocateForLoad(resident, token, chunk)

	// A shift of 1 is absorbed by the extra padding slot (size ==
	// renderAreaSize+1), so nothing in the active region is newly entering
	// yet, and the resident cell (still in range after the shift) keeps its
	// payload.
	l.Shift([3]int{1, 0, 0})

	got, ok := l.Cell(resident).Read()
	if !ok || len(got.IDs) != 1 || got.IDs[0] != 1 {
		t.Fatalf("resident cell lost its payload across a shift that keeps it resident: (%+v, %v)", got, ok)
	}
}

func TestEntityLayerShiftReportsEnteringFaceOnceItReachesTheActiveRegion(t *testing.T) {
	l := NewEntityLayer(3, voxelgrid.TLCPos{})

	// A shift of 2 moves one plane beyond the old padding slot into the
	// active region: the entering list should contain exactly one full active
	// face (3x3 = 9 positions), all at the new leading edge (new start X 1 +
	// renderAreaSize 3 - 1 = 3).
	entering := l.Shift([3]int{2, 0, 0})

	if got := len(entering); got != 9 {
		t.Fatalf("Shift(2,0,0) entering length = %d, want 9 (one full active face)", got)
	}
	for _, p := range entering {
		if p.X != 3 {
			t.Errorf("entering position %+v has X = %d, want 3", p, p.X)
		}
	}
}
