package worldgrid

import "github.com/vornstream/voxelstream/pkg/voxelgrid"

// WorldGrid wraps a voxelgrid.VoxelGrid with zero or more named side layers
// that share its TLC keying, merging all of their load queues into one
// stream (spec.md §4.D, grounded in original_source/example_game/src/
// world.rs's WorldMemoryGrid<N>).
type WorldGrid struct {
	Voxel    *voxelgrid.VoxelGrid
	Entities *EntityLayer // nil if entities are not tracked
}

// NewWorldGrid wraps voxel with an entity side layer of the given render
// area size (0 disables entity tracking).
func NewWorldGrid(voxel *voxelgrid.VoxelGrid, center voxelgrid.TLCPos, entityRenderAreaSize int) *WorldGrid {
	w := &WorldGrid{Voxel: voxel}
	if entityRenderAreaSize > 0 {
		w.Entities = NewEntityLayer(entityRenderAreaSize, center)
	}
	return w
}

// WorldLoadItem is one TLC's combined load-queue entry across the voxel
// grid and every side layer.
type WorldLoadItem struct {
	TLC        voxelgrid.TLCPos
	VoxelLODs  map[voxelgrid.LOD]bool
	NeedEntity bool
}

func (w *WorldGrid) mergeVoxel(items []voxelgrid.LoadItem, merged map[voxelgrid.TLCPos]*WorldLoadItem) {
	for _, item := range items {
		e, ok := merged[item.TLC]
		if !ok {
			e = &WorldLoadItem{TLC: item.TLC, VoxelLODs: make(map[voxelgrid.LOD]bool)}
			merged[item.TLC] = e
		}
		for lod, need := range item.Needed {
			if need {
				e.VoxelLODs[lod] = true
			}
		}
	}
}

func (w *WorldGrid) mergeEntity(positions []voxelgrid.TLCPos, merged map[voxelgrid.TLCPos]*WorldLoadItem) {
	for _, pos := range positions {
		e, ok := merged[pos]
		if !ok {
			e = &WorldLoadItem{TLC: pos, VoxelLODs: make(map[voxelgrid.LOD]bool)}
			merged[pos] = e
		}
		e.NeedEntity = true
	}
}

// QueueLoadAll merges the initial load queue across the voxel grid and
// every side layer, keyed by TLC.
func (w *WorldGrid) QueueLoadAll() []WorldLoadItem {
	merged := make(map[voxelgrid.TLCPos]*WorldLoadItem)
	w.mergeVoxel(w.Voxel.QueueLoadAll(), merged)
	if w.Entities != nil {
		w.mergeEntity(w.Entities.QueueLoadAll(), merged)
	}
	out := make([]WorldLoadItem, 0, len(merged))
	for _, e := range merged {
		out = append(out, *e)
	}
	return out
}

// Shift advances the voxel grid's layers (per-LOD deltas) and the entity
// layer (a single delta, at LOD-zero granularity) together, merging their
// reload lists by TLC.
func (w *WorldGrid) Shift(voxelDeltas map[voxelgrid.LOD][3]int, preloaded map[voxelgrid.LOD][3]bool, entityDelta [3]int) []WorldLoadItem {
	merged := make(map[voxelgrid.TLCPos]*WorldLoadItem)
	w.mergeVoxel(w.Voxel.ShiftAll(voxelDeltas, preloaded), merged)
	if w.Entities != nil {
		w.mergeEntity(w.Entities.Shift(entityDelta), merged)
	}
	out := make([]WorldLoadItem, 0, len(merged))
	for _, e := range merged {
		out = append(out, *e)
	}
	return out
}

// ChunkEdit bundles a TLC's voxel editors with its entity chunk editor.
type ChunkEdit struct {
	Voxel  voxelgrid.ChunkEdit
	Entity *voxelgrid.Cell[*EntityChunk] // nil if entities untracked or out of range
}

// Edit returns the combined editor bundle for TLC g.
func (w *WorldGrid) Edit(g voxelgrid.TLCPos) ChunkEdit {
	out := ChunkEdit{Voxel: w.Voxel.Edit(g)}
	if w.Entities != nil {
		out.Entity = w.Entities.Cell(g)
	}
	return out
}
