package voxelgrid

import "testing"

// propagateTestCfg yields a single coarse voxel at LOD(1,0) covering all
// eight fine voxels of LOD(0,0), the minimal shape for exercising the
// majority-visible rule's boundary case.
func propagateTestCfg() Config {
	return Config{ChunkEdgeExp: 1, LargestLevel: 1}
}

func TestCoarsenExactHalfVisibleIsEmpty(t *testing.T) {
	cfg := propagateTestCfg()
	fineLOD := LOD{Level: 0, Sublevel: 0}
	coarseLOD := LOD{Level: 1, Sublevel: 0}

	fine := NewChunkStorage(fineLOD.VoxelCount(cfg), true)
	coarse := NewChunkStorage(coarseLOD.VoxelCount(cfg), true)

	// Exactly half (4 of 8) of the fine voxels visible at fill_threshold 0.5:
	// per invariant I3/scenario S6 the coarse voxel must stay empty.
	positions := [][3]int{{0, 0, 0}, {0, 0, 1}, {0, 1, 0}, {0, 1, 1}}
	for _, p := range positions {
		idx := fineLOD.VoxelIndex(p, cfg)
		fine.Bitmask.Set(idx, true)
		fine.IDs.Set(idx, 7)
	}

	Coarsen(coarseLOD, fineLOD, coarse, fine, cfg, 0.5)

	coarseIdx := coarseLOD.VoxelIndex([3]int{0, 0, 0}, cfg)
	if coarse.Bitmask.Get(coarseIdx) {
		t.Fatal("coarse voxel should be empty at exactly half visible with fill_threshold 0.5")
	}
}

func TestCoarsenMajorityVisibleBecomesVisible(t *testing.T) {
	cfg := propagateTestCfg()
	fineLOD := LOD{Level: 0, Sublevel: 0}
	coarseLOD := LOD{Level: 1, Sublevel: 0}

	fine := NewChunkStorage(fineLOD.VoxelCount(cfg), true)
	coarse := NewChunkStorage(coarseLOD.VoxelCount(cfg), true)

	positions := [][3]int{{0, 0, 0}, {0, 0, 1}, {0, 1, 0}, {0, 1, 1}, {1, 0, 0}}
	for _, p := range positions {
		idx := fineLOD.VoxelIndex(p, cfg)
		fine.Bitmask.Set(idx, true)
		fine.IDs.Set(idx, 3)
	}

	Coarsen(coarseLOD, fineLOD, coarse, fine, cfg, 0.5)

	coarseIdx := coarseLOD.VoxelIndex([3]int{0, 0, 0}, cfg)
	if !coarse.Bitmask.Get(coarseIdx) {
		t.Fatal("coarse voxel should be visible when 5 of 8 finer voxels are visible at fill_threshold 0.5")
	}
	if got := coarse.IDs.Get(coarseIdx); got != 3 {
		t.Errorf("coarse voxel ID = %d, want 3 (the majority ID among visible finer voxels)", got)
	}
}

func TestCoarsenAllEmptyStaysEmptyWithZeroID(t *testing.T) {
	cfg := propagateTestCfg()
	fineLOD := LOD{Level: 0, Sublevel: 0}
	coarseLOD := LOD{Level: 1, Sublevel: 0}

	fine := NewChunkStorage(fineLOD.VoxelCount(cfg), true)
	coarse := NewChunkStorage(coarseLOD.VoxelCount(cfg), true)

	Coarsen(coarseLOD, fineLOD, coarse, fine, cfg, 0.5)

	coarseIdx := coarseLOD.VoxelIndex([3]int{0, 0, 0}, cfg)
	if coarse.Bitmask.Get(coarseIdx) {
		t.Fatal("coarse voxel should stay empty when no finer voxel is visible")
	}
	if got := coarse.IDs.Get(coarseIdx); got != 0 {
		t.Errorf("coarse voxel ID = %d, want 0 for an empty voxel", got)
	}
}

func TestArgmaxPicksLowestIDOnTie(t *testing.T) {
	counts := map[byte]int{5: 2, 2: 2, 9: 1}
	if got := argmax(counts); got != 2 {
		t.Errorf("argmax() = %d, want 2 (lowest ID among tied counts)", got)
	}
}
