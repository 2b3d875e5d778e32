// Package stage adapts the teacher's persistent-mapped, triple-buffered
// GPU buffer objects (internal/openglhelper) into the "GPU staging
// interface" spec.md §6 describes: per-LOD byte copies of dirtied bitmask
// and voxel-ID regions into device-local buffers, instead of vertex/index
// mesh data.
package stage

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"

	"openglhelper"

	"github.com/vornstream/voxelstream/pkg/voxelgrid"
)

// lodBuffers holds one LOD's staging buffers: a triple-buffered bitmask
// region per chunk slot, and (when the LOD carries voxel IDs) a parallel
// ID region.
type lodBuffers struct {
	bitmask       *openglhelper.TripleBuffer
	ids           *openglhelper.TripleBuffer // nil when the LOD has no voxel IDs
	bitmaskStride int                        // bytes per chunk's serialized bitmask
	idsStride     int                        // bytes per chunk's serialized IDs (0 if absent)
}

// Buffers is the set of GPU staging buffers for every tracked LOD of one
// VoxelGrid.
type Buffers struct {
	perLOD map[voxelgrid.LOD]*lodBuffers
}

// New allocates staging buffers sized for every LOD layer in grid: each
// layer's physical chunk slot count times that LOD's per-chunk byte size,
// triple-buffered (grounded in pkg/render/chunkBufferManager.go's
// NewChunkBufferManager and internal/openglhelper/buffer.go's
// NewTripleBuffer).
func New(grid *voxelgrid.VoxelGrid, cfg voxelgrid.Config) (*Buffers, error) {
	b := &Buffers{perLOD: make(map[voxelgrid.LOD]*lodBuffers)}
	for _, lod := range grid.LODs() {
		layer := grid.Layer(lod)
		slots := layer.Size() * layer.Size() * layer.Size()
		voxelCount := lod.VoxelCount(cfg)
		bitmaskStride := ((voxelCount + 127) / 128) * 16

		bitmaskBuf, err := openglhelper.NewTripleBuffer(gl.SHADER_STORAGE_BUFFER, slots*bitmaskStride, 3)
		if err != nil {
			return nil, fmt.Errorf("stage: allocating bitmask buffer for LOD %+v: %w", lod, err)
		}

		lb := &lodBuffers{bitmask: bitmaskBuf, bitmaskStride: bitmaskStride}
		if layer.Spec.HasVoxelIDs {
			idsBuf, err := openglhelper.NewTripleBuffer(gl.SHADER_STORAGE_BUFFER, slots*voxelCount, 3)
			if err != nil {
				return nil, fmt.Errorf("stage: allocating id buffer for LOD %+v: %w", lod, err)
			}
			lb.ids = idsBuf
			lb.idsStride = voxelCount
		}
		b.perLOD[lod] = lb
	}
	return b, nil
}

// ApplyDrain copies every dirtied region from grid's drain output into the
// current triple-buffer section, matching each region's exact byte range so
// a re-apply from a fresh copy is byte-identical (invariant I4).
func (b *Buffers) ApplyDrain(drains []voxelgrid.DrainedUpdate, grid *voxelgrid.VoxelGrid) {
	for _, d := range drains {
		lb, ok := b.perLOD[d.LOD]
		if !ok {
			continue
		}
		layer := grid.Layer(d.LOD)
		for _, region := range d.Regions {
			cell := layer.CellAt(region.ChunkIndex)
			storage, valid := cell.Read()
			if !valid {
				continue
			}
			bmOff := storage.Bitmask.RegionByteOffset(region.FirstVoxel)
			bmBytes := storage.Bitmask.RegionBytes(region.FirstVoxel, region.Count)
			copyInto(lb.bitmask, region.ChunkIndex*lb.bitmaskStride+bmOff, bmBytes)

			if lb.ids != nil && storage.IDs != nil {
				idBytes := storage.IDs.RegionBytes(region.FirstVoxel, region.Count)
				copyInto(lb.ids, region.ChunkIndex*lb.idsStride+region.FirstVoxel, idBytes)
			}
		}
	}
}

// copyInto writes src into buf's current triple-buffer section at the given
// intra-section byte offset (mirrors chunkBufferManager.AddChunk's
// persistent-pointer memcpy).
func copyInto(buf *openglhelper.TripleBuffer, offset int, src []byte) {
	if len(src) == 0 {
		return
	}
	dest := unsafe.Pointer(uintptr(buf.MappedMemory) + uintptr(buf.CurrentOffsetBytes()+offset))
	dst := unsafe.Slice((*byte)(dest), len(src))
	copy(dst, src)
}

// Advance waits for the GPU to finish with the next triple-buffer section
// and rotates every tracked LOD's buffers into it, to be called once per
// frame after ApplyDrain and before the renderer issues its draw/dispatch
// calls against the new section.
func (b *Buffers) Advance() {
	for _, lb := range b.perLOD {
		lb.bitmask.CreateFenceSync()
		lb.bitmask.Advance()
		lb.bitmask.WaitForSync()
		if lb.ids != nil {
			lb.ids.CreateFenceSync()
			lb.ids.Advance()
			lb.ids.WaitForSync()
		}
	}
}

// Cleanup releases every underlying OpenGL buffer.
func (b *Buffers) Cleanup() {
	for _, lb := range b.perLOD {
		lb.bitmask.Cleanup()
		if lb.ids != nil {
			lb.ids.Cleanup()
		}
	}
}
