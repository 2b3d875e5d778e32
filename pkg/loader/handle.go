package loader

import (
	"github.com/vornstream/voxelstream/pkg/voxelgrid"
	"github.com/vornstream/voxelstream/pkg/worldgrid"
)

// lodSlot is one LOD's Missing cell, held for the duration of a load.
type lodSlot struct {
	lod   voxelgrid.LOD
	spec  voxelgrid.LODSpec
	cell  *voxelgrid.Cell[*voxelgrid.ChunkStorage]
	token voxelgrid.LoadToken
}

// BorrowedChunkHandle is a Send-safe bundle of references to the Missing
// cells of every LOD (and the entity layer, if tracked) of one chunk
// (spec.md §3, §4.G). Every cell it references is Missing for the handle's
// entire lifetime — no other goroutine may touch the same cells until the
// handle is consumed by finishing each cell back to Valid.
type BorrowedChunkHandle struct {
	TLC         voxelgrid.TLCPos
	slots       []lodSlot
	entityCell  *voxelgrid.Cell[*worldgrid.EntityChunk]
	entityToken voxelgrid.LoadToken
	hasEntity   bool
}
