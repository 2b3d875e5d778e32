// Package voxelgrid implements the streaming memory grid and LOD pyramid
// that keeps a bounded, multi-resolution working set of voxel data around a
// moving viewpoint.
package voxelgrid

import "fmt"

// LODSpec describes one (level, sublevel) tier tracked by a VoxelGrid.
type LODSpec struct {
	Level          int
	Sublevel       int
	RenderAreaSize int // chunks per axis of the LOD layer's render area; must be odd
	HasVoxelIDs    bool
}

// Config holds the recognized configuration options (spec.md §6).
type Config struct {
	// ChunkEdgeExp governs the index math: edge = 2^ChunkEdgeExp.
	ChunkEdgeExp int
	// LargestLevel: a TLC covers ChunkEdge()^LargestLevel voxels per axis.
	LargestLevel int
	// LODs is the ordered set of tracked (level, sublevel) tiers.
	LODs []LODSpec
	// WorkerThreads sizes the chunk loader's worker pool. Zero selects a
	// default of 2x hardware concurrency.
	WorkerThreads int
	// TLCLoadDistanceThreshold: voxels inside a TLC face within which the
	// prefetch buffer on that face must be loaded.
	TLCLoadDistanceThreshold float64
	// FillThreshold: fraction in [0,1] governing coarse-LOD visibility.
	FillThreshold float64
}

// ChunkEdge returns CHUNK_EDGE = 2^ChunkEdgeExp.
func (c Config) ChunkEdge() int {
	return 1 << uint(c.ChunkEdgeExp)
}

// TLCSize returns the number of voxels per axis covered by one TLC at the
// finest LOD, CHUNK_EDGE^LargestLevel.
func (c Config) TLCSize() int64 {
	size := int64(1)
	edge := int64(c.ChunkEdge())
	for i := 0; i < c.LargestLevel; i++ {
		size *= edge
	}
	return size
}

// ConfigError reports a configuration violation detected at construction
// time (spec.md §7.5): these are always fatal at the point of construction
// and never surface later.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("voxelgrid: invalid configuration: %s", e.Reason)
}

// Validate checks the invariants from the data model (spec.md §3):
// exactly one LOD per distinct (level, sublevel); every level in
// [0, LargestLevel] has at least an (L, 0) entry; render areas are odd;
// the LOD(s) with the largest render area carry sublevel 0; fill threshold
// is a fraction.
func (c Config) Validate() error {
	if c.ChunkEdgeExp < 1 {
		return &ConfigError{Reason: "chunk_edge_exp must be >= 1"}
	}
	if c.LargestLevel < 0 {
		return &ConfigError{Reason: "largest_level must be >= 0"}
	}
	if c.FillThreshold < 0 || c.FillThreshold > 1 {
		return &ConfigError{Reason: "fill_threshold must be in [0, 1]"}
	}
	if len(c.LODs) == 0 {
		return &ConfigError{Reason: "at least one LOD spec is required"}
	}

	seen := make(map[[2]int]bool, len(c.LODs))
	haveCoarsestS0 := make(map[int]bool, c.LargestLevel+1)
	maxRenderArea := 0
	for _, spec := range c.LODs {
		key := [2]int{spec.Level, spec.Sublevel}
		if seen[key] {
			return &ConfigError{Reason: fmt.Sprintf("duplicate LOD identity (%d, %d)", spec.Level, spec.Sublevel)}
		}
		seen[key] = true

		if spec.RenderAreaSize%2 == 0 {
			return &ConfigError{Reason: fmt.Sprintf("LOD (%d, %d) render_area_size must be odd, got %d", spec.Level, spec.Sublevel, spec.RenderAreaSize)}
		}
		if spec.Level < 0 || spec.Level > c.LargestLevel {
			return &ConfigError{Reason: fmt.Sprintf("LOD level %d out of range [0, %d]", spec.Level, c.LargestLevel)}
		}
		if spec.Sublevel == 0 {
			haveCoarsestS0[spec.Level] = true
		}
		if spec.RenderAreaSize > maxRenderArea {
			maxRenderArea = spec.RenderAreaSize
		}
	}

	for l := 0; l <= c.LargestLevel; l++ {
		if !haveCoarsestS0[l] {
			return &ConfigError{Reason: fmt.Sprintf("level %d is missing its (%d, 0) entry", l, l)}
		}
	}

	for _, spec := range c.LODs {
		if spec.RenderAreaSize == maxRenderArea && spec.Sublevel != 0 {
			return &ConfigError{Reason: fmt.Sprintf("the largest-render LOD (%d, %d) must have sublevel 0", spec.Level, spec.Sublevel)}
		}
	}

	return nil
}
