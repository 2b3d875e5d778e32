package voxelgrid

import "testing"

func gridTestConfig() Config {
	return Config{
		ChunkEdgeExp:  2,
		LargestLevel:  1,
		FillThreshold: 0.5,
		LODs: []LODSpec{
			{Level: 0, Sublevel: 0, RenderAreaSize: 3, HasVoxelIDs: true},
			{Level: 1, Sublevel: 0, RenderAreaSize: 3},
		},
	}
}

func TestNewVoxelGridOrdersLayersCoarsestFirst(t *testing.T) {
	g, err := NewVoxelGrid(gridTestConfig(), TLCPos{})
	if err != nil {
		t.Fatalf("NewVoxelGrid: %v", err)
	}
	lods := g.LODs()
	if len(lods) != 2 {
		t.Fatalf("LODs() length = %d, want 2", len(lods))
	}
	if lods[0].Level != 1 || lods[1].Level != 0 {
		t.Fatalf("LODs() = %+v, want coarsest (level 1) first", lods)
	}
}

func TestNewVoxelGridRejectsInvalidConfig(t *testing.T) {
	cfg := gridTestConfig()
	cfg.FillThreshold = 2
	if _, err := NewVoxelGrid(cfg, TLCPos{}); err == nil {
		t.Fatal("expected an error from an invalid config")
	}
}

func TestQueueLoadAllMergesByTLC(t *testing.T) {
	g, err := NewVoxelGrid(gridTestConfig(), TLCPos{})
	if err != nil {
		t.Fatalf("NewVoxelGrid: %v", err)
	}
	items := g.QueueLoadAll()
	seen := make(map[TLCPos]bool, len(items))
	for _, it := range items {
		if seen[it.TLC] {
			t.Fatalf("TLC %+v appears more than once in the merged queue", it.TLC)
		}
		seen[it.TLC] = true
		if len(it.Needed) == 0 {
			t.Errorf("item for %+v has no needed LODs", it.TLC)
		}
	}
}

func TestEditAbsentForOutOfRangeTLC(t *testing.T) {
	g, err := NewVoxelGrid(gridTestConfig(), TLCPos{})
	if err != nil {
		t.Fatalf("NewVoxelGrid: %v", err)
	}
	edit := g.Edit(TLCPos{X: 1000, Y: 1000, Z: 1000})
	if len(edit.Editors) != 0 {
		t.Fatalf("Edit() for an out-of-range TLC returned %d editors, want 0", len(edit.Editors))
	}
}

func TestDrainUpdatesOmitsLayersWithNoActivity(t *testing.T) {
	g, err := NewVoxelGrid(gridTestConfig(), TLCPos{})
	if err != nil {
		t.Fatalf("NewVoxelGrid: %v", err)
	}
	if got := g.DrainUpdates(); len(got) != 0 {
		t.Fatalf("DrainUpdates() on a freshly-constructed grid = %+v, want empty", got)
	}
}
