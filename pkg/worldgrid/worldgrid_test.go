package worldgrid

import (
	"testing"

	"github.com/vornstream/voxelstream/pkg/voxelgrid"
)

func worldTestConfig() voxelgrid.Config {
	return voxelgrid.Config{
		ChunkEdgeExp:  2,
		LargestLevel:  0,
		FillThreshold: 0.5,
		LODs: []voxelgrid.LODSpec{
			{Level: 0, Sublevel: 0, RenderAreaSize: 3, HasVoxelIDs: true},
		},
	}
}

func newTestWorldGrid(t *testing.T, entityRenderAreaSize int) *WorldGrid {
	t.Helper()
	voxel, err := voxelgrid.NewVoxelGrid(worldTestConfig(), voxelgrid.TLCPos{})
	if err != nil {
		t.Fatalf("NewVoxelGrid: %v", err)
	}
	return NewWorldGrid(voxel, voxelgrid.TLCPos{}, entityRenderAreaSize)
}

func TestNewWorldGridWithoutEntityTrackingLeavesEntitiesNil(t *testing.T) {
	w := newTestWorldGrid(t, 0)
	if w.Entities != nil {
		t.Fatal("Entities should be nil when entityRenderAreaSize is 0")
	}
}

func TestQueueLoadAllMergesVoxelAndEntityByTLC(t *testing.T) {
	w := newTestWorldGrid(t, 3)
	items := w.QueueLoadAll()

	seen := make(map[voxelgrid.TLCPos]WorldLoadItem, len(items))
	for _, it := range items {
		seen[it.TLC] = it
	}
	if len(seen) != len(items) {
		t.Fatal("QueueLoadAll() should not report the same TLC twice")
	}
	for _, it := range items {
		if !it.NeedEntity {
			t.Errorf("item for %+v should need an entity load (same render area as the voxel grid)", it.TLC)
		}
		if len(it.VoxelLODs) == 0 {
			t.Errorf("item for %+v should need at least one voxel LOD", it.TLC)
		}
	}
}

func TestQueueLoadAllWithoutEntityTrackingLeavesNeedEntityFalse(t *testing.T) {
	w := newTestWorldGrid(t, 0)
	items := w.QueueLoadAll()
	if len(items) == 0 {
		t.Fatal("expected at least one load item from the voxel grid")
	}
	for _, it := range items {
		if it.NeedEntity {
			t.Errorf("item for %+v should not need an entity load when entity tracking is disabled", it.TLC)
		}
	}
}

func TestEditReturnsVoxelAndEntityEditorsTogether(t *testing.T) {
	w := newTestWorldGrid(t, 3)
	target := voxelgrid.TLCPos{X: 1, Y: 1, Z: 1}

	lod := voxelgrid.LOD{Level: 0, Sublevel: 0}
	layer := w.Voxel.Layer(lod)
	if layer == nil {
		t.Fatal("voxel layer for the configured LOD should exist")
	}
	vtoken := layer.Cell(target).TakeForLoading()
	layer.AllocateForLoad(target, vtoken, voxelgrid.NewChunkStorage(lod.VoxelCount(worldTestConfig()), true))

	ecell := w.Entities.Cell(target)
	etoken := ecell.TakeForLoading()
	w.Entities.AllocateForLoad(target, etoken, &EntityChunk{})

	edit := w.Edit(target)
	if len(edit.Voxel.Editors) != 1 {
		t.Errorf("Edit() voxel editors = %d, want 1", len(edit.Voxel.Editors))
	}
	if edit.Entity == nil {
		t.Fatal("Edit() entity cell should be present for an in-range TLC")
	}
}
