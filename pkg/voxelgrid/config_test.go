package voxelgrid

import "testing"

func TestConfigValidate(t *testing.T) {
	base := func() Config {
		return Config{
			ChunkEdgeExp:  4,
			LargestLevel:  1,
			FillThreshold: 0.5,
			LODs: []LODSpec{
				{Level: 0, Sublevel: 0, RenderAreaSize: 9, HasVoxelIDs: true},
				{Level: 1, Sublevel: 0, RenderAreaSize: 5},
			},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		if err := base().Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("even render area rejected", func(t *testing.T) {
		cfg := base()
		cfg.LODs[0].RenderAreaSize = 8
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error for even render_area_size")
		}
	})

	t.Run("missing coarsest level rejected", func(t *testing.T) {
		cfg := base()
		cfg.LargestLevel = 2
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error for missing level 2 entry")
		}
	})

	t.Run("duplicate LOD identity rejected", func(t *testing.T) {
		cfg := base()
		cfg.LODs = append(cfg.LODs, LODSpec{Level: 0, Sublevel: 0, RenderAreaSize: 3})
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error for duplicate (level, sublevel)")
		}
	})

	t.Run("fill threshold out of range rejected", func(t *testing.T) {
		cfg := base()
		cfg.FillThreshold = 1.5
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error for fill_threshold > 1")
		}
	})

	t.Run("non-coarsest LOD sharing the largest render area rejected", func(t *testing.T) {
		cfg := base()
		cfg.LODs = append(cfg.LODs, LODSpec{Level: 0, Sublevel: 1, RenderAreaSize: 9})
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error: sublevel 1 cannot share the max render area")
		}
	})
}

func TestChunkEdgeAndTLCSize(t *testing.T) {
	cfg := Config{ChunkEdgeExp: 4, LargestLevel: 2}
	if got := cfg.ChunkEdge(); got != 16 {
		t.Fatalf("ChunkEdge() = %d, want 16", got)
	}
	if got := cfg.TLCSize(); got != 16*16 {
		t.Fatalf("TLCSize() = %d, want %d", got, 16*16)
	}
}
