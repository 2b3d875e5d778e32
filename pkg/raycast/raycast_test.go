package raycast

import (
	"testing"

	"github.com/vornstream/voxelstream/pkg/voxelgrid"
)

func raycastTestConfig(hasVoxelIDs bool) voxelgrid.Config {
	return voxelgrid.Config{
		ChunkEdgeExp:  2,
		LargestLevel:  1,
		FillThreshold: 0.5,
		LODs: []voxelgrid.LODSpec{
			{Level: 0, Sublevel: 0, RenderAreaSize: 3, HasVoxelIDs: hasVoxelIDs},
			{Level: 1, Sublevel: 0, RenderAreaSize: 3},
		},
	}
}

// loadSolidTLC allocates and validates the LOD(0,0) cell at tlc, marking
// local voxel positions in solid as present.
func loadSolidTLC(t *testing.T, grid *voxelgrid.VoxelGrid, cfg voxelgrid.Config, tlc voxelgrid.TLCPos, solid [][3]int) {
	t.Helper()
	lod0 := voxelgrid.LOD{Level: 0, Sublevel: 0}
	layer := grid.Layer(lod0)
	cell := layer.Cell(tlc)
	if cell == nil {
		t.Fatalf("TLC %+v should be within the loaded layer's render area", tlc)
	}
	token := cell.TakeForLoading()
	storage := voxelgrid.NewChunkStorage(lod0.VoxelCount(cfg), cfg.LODs[0].HasVoxelIDs)
	for _, p := range solid {
		idx := lod0.VoxelIndex(p, cfg)
		storage.Bitmask.Set(idx, true)
		if storage.IDs != nil {
			storage.IDs.Set(idx, 1)
		}
	}
	if !layer.AllocateForLoad(tlc, token, storage) {
		t.Fatalf("AllocateForLoad failed for TLC %+v", tlc)
	}
}

func TestCastHitsASolidVoxelAlongTheDominantAxis(t *testing.T) {
	cfg := raycastTestConfig(true)
	grid, err := voxelgrid.NewVoxelGrid(cfg, voxelgrid.TLCPos{})
	if err != nil {
		t.Fatalf("NewVoxelGrid: %v", err)
	}
	loadSolidTLC(t, grid, cfg, voxelgrid.TLCPos{}, [][3]int{{2, 1, 1}})

	res := Cast(grid, voxelgrid.TLCPos{}, [3]float64{0.5, 1.5, 1.5}, [3]float64{1, 0, 0}, cfg)

	if res.Kind != Hit {
		t.Fatalf("Cast() kind = %v, want Hit", res.Kind)
	}
	lod0 := voxelgrid.LOD{Level: 0, Sublevel: 0}
	want := lod0.VoxelIndex([3]int{2, 1, 1}, cfg)
	if res.VoxelIndex != want {
		t.Errorf("VoxelIndex = %d, want %d", res.VoxelIndex, want)
	}
	if res.Face.Axis != 0 || res.Face.Positive {
		t.Errorf("Face = %+v, want {Axis:0 Positive:false}", res.Face)
	}
}

func TestCastImmediateHitWhenStartingInsideASolidVoxel(t *testing.T) {
	cfg := raycastTestConfig(true)
	grid, err := voxelgrid.NewVoxelGrid(cfg, voxelgrid.TLCPos{})
	if err != nil {
		t.Fatalf("NewVoxelGrid: %v", err)
	}
	loadSolidTLC(t, grid, cfg, voxelgrid.TLCPos{}, [][3]int{{0, 1, 1}})

	res := Cast(grid, voxelgrid.TLCPos{}, [3]float64{0.5, 1.5, 1.5}, [3]float64{1, 0, 0}, cfg)

	if res.Kind != Hit {
		t.Fatalf("Cast() kind = %v, want Hit", res.Kind)
	}
	lod0 := voxelgrid.LOD{Level: 0, Sublevel: 0}
	want := lod0.VoxelIndex([3]int{0, 1, 1}, cfg)
	if res.VoxelIndex != want {
		t.Errorf("VoxelIndex = %d, want %d", res.VoxelIndex, want)
	}
}

func TestCastRunsIntoAnUnloadedNeighborAfterMissingThroughTheWholeTLC(t *testing.T) {
	cfg := raycastTestConfig(true)
	grid, err := voxelgrid.NewVoxelGrid(cfg, voxelgrid.TLCPos{})
	if err != nil {
		t.Fatalf("NewVoxelGrid: %v", err)
	}
	// Load the starting TLC with no solid voxels; the neighboring TLC the
	// ray exits into is within the render area but never loaded (Invalid).
	loadSolidTLC(t, grid, cfg, voxelgrid.TLCPos{}, nil)

	res := Cast(grid, voxelgrid.TLCPos{}, [3]float64{0.5, 1.5, 1.5}, [3]float64{1, 0, 0}, cfg)

	if res.Kind != Unloaded {
		t.Fatalf("Cast() kind = %v, want Unloaded", res.Kind)
	}
}

func TestCastReturnsOutOfAreaWhenStartingOutsideTheLoadedRegion(t *testing.T) {
	cfg := raycastTestConfig(true)
	grid, err := voxelgrid.NewVoxelGrid(cfg, voxelgrid.TLCPos{})
	if err != nil {
		t.Fatalf("NewVoxelGrid: %v", err)
	}

	res := Cast(grid, voxelgrid.TLCPos{X: 1000, Y: 1000, Z: 1000}, [3]float64{0.5, 0.5, 0.5}, [3]float64{1, 0, 0}, cfg)

	if res.Kind != OutOfArea {
		t.Fatalf("Cast() kind = %v, want OutOfArea", res.Kind)
	}
}

func TestCastReturnsOutOfAreaWhenLOD0HasNoVoxelIDs(t *testing.T) {
	cfg := raycastTestConfig(false)
	grid, err := voxelgrid.NewVoxelGrid(cfg, voxelgrid.TLCPos{})
	if err != nil {
		t.Fatalf("NewVoxelGrid: %v", err)
	}
	loadSolidTLC(t, grid, cfg, voxelgrid.TLCPos{}, nil)

	res := Cast(grid, voxelgrid.TLCPos{}, [3]float64{0.5, 1.5, 1.5}, [3]float64{1, 0, 0}, cfg)

	if res.Kind != OutOfArea {
		t.Fatalf("Cast() kind = %v, want OutOfArea (LOD0 carries no voxel IDs)", res.Kind)
	}
}
