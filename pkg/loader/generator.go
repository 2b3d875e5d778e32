// Package loader implements the chunk loader (spec.md §4.G): a priority
// queue of pending load items serviced by a fixed worker pool, with a
// non-blocking per-frame Sync cycle driven entirely from the main thread.
package loader

import "github.com/vornstream/voxelstream/pkg/voxelgrid"

// Generator is the external callback that fills LOD-(0,0) voxel IDs for one
// TLC (spec.md §6). Implementations must be deterministic and pure; they
// may run on any worker goroutine.
type Generator interface {
	Generate(tlc voxelgrid.TLCPos, level, sublevel int, out []byte, tlcSize int64, largestLevel int)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(tlc voxelgrid.TLCPos, level, sublevel int, out []byte, tlcSize int64, largestLevel int)

// Generate calls f.
func (f GeneratorFunc) Generate(tlc voxelgrid.TLCPos, level, sublevel int, out []byte, tlcSize int64, largestLevel int) {
	f(tlc, level, sublevel, out, tlcSize, largestLevel)
}
