package voxelgrid

// LOD identifies one (level, sublevel) resolution tier (spec.md §3, §GLOSSARY).
type LOD struct {
	Level    int
	Sublevel int
}

// EdgeLength returns the voxel edge length of this LOD in world units:
// CHUNK_EDGE^Level * 2^Sublevel.
func (l LOD) EdgeLength(cfg Config) int64 {
	edge := int64(1)
	chunkEdge := int64(cfg.ChunkEdge())
	for i := 0; i < l.Level; i++ {
		edge *= chunkEdge
	}
	return edge << uint(l.Sublevel)
}

// VoxelsPerAxis returns the number of voxels per TLC edge at this LOD:
// TLC_SIZE / EdgeLength.
func (l LOD) VoxelsPerAxis(cfg Config) int {
	return int(cfg.TLCSize() / l.EdgeLength(cfg))
}

// bitsPerAxis returns how many bits are needed to index one axis of this
// LOD's per-TLC voxel grid. Because CHUNK_EDGE and the sublevel factor are
// both powers of two, VoxelsPerAxis is always itself a power of two, so this
// is exact.
func (l LOD) bitsPerAxis(cfg Config) int {
	n := cfg.ChunkEdgeExp*(cfg.LargestLevel-l.Level) - l.Sublevel
	if n < 0 {
		n = 0
	}
	return n
}

// VoxelIndex computes the linear index of a local voxel position within one
// TLC at this LOD.
//
// The layout is a nested per-level digit decomposition (the "Morton-like
// tiling" of spec.md §4.B): position bits are split into CHUNK_EDGE-ary
// groups, one per enclosing level from LargestLevel-1 down to Level+1 (most
// significant first), with the remaining low-order bits folded as a single
// residual sub-cube. This keeps contiguous index ranges spatially coherent:
// a contiguous slice of indices always corresponds to an axis-aligned
// sub-cube at some enclosing level.
func (l LOD) VoxelIndex(p [3]int, cfg Config) int {
	chunkEdge := cfg.ChunkEdge()
	totalBits := l.bitsPerAxis(cfg)
	ceBits := cfg.ChunkEdgeExp
	numGroups := totalBits / ceBits
	residualBits := totalBits - numGroups*ceBits

	index := 0
	for g := numGroups - 1; g >= 0; g-- {
		shift := uint(residualBits + g*ceBits)
		var digit [3]int
		for a := 0; a < 3; a++ {
			digit[a] = (p[a] >> shift) & (chunkEdge - 1)
		}
		index = index*(chunkEdge*chunkEdge*chunkEdge) + (digit[0]*chunkEdge*chunkEdge + digit[1]*chunkEdge + digit[2])
	}

	side := 1 << uint(residualBits)
	mask := side - 1
	var local [3]int
	for a := 0; a < 3; a++ {
		local[a] = p[a] & mask
	}
	index = index*(side*side*side) + (local[0]*side*side + local[1]*side + local[2])
	return index
}

// VoxelCount returns the total number of voxels stored per TLC at this LOD.
func (l LOD) VoxelCount(cfg Config) int {
	n := l.VoxelsPerAxis(cfg)
	return n * n * n
}

// FinerBox describes, for one coarse voxel, the axis-aligned box of finer
// voxel positions it covers at a finer LOD.
type FinerBox struct {
	Origin [3]int // inclusive start, in the finer LOD's local coordinates
	Side   int    // box side length, in finer voxels
}

// CoveredBox returns the box of (lodFine) voxel positions covered by one
// voxel of (l) at local position coarsePos.
//
// side = CHUNK_EDGE^(l.Level-lodFine.Level) * 2^(l.Sublevel-lodFine.Sublevel).
// (spec.md §4.B states the sublevel exponent as Sf-S; that sign makes the
// side shrink as the coarse LOD's sublevel grows, which is backwards, since
// a coarser sublevel must cover *more* finer voxels. We use S-Sf, which is
// the only sign that keeps CoveredBox consistent with EdgeLength's ratio
// and with invariant I5's byte-count accounting.)
func (l LOD) CoveredBox(lodFine LOD, coarsePos [3]int, cfg Config) FinerBox {
	levelExp := l.Level - lodFine.Level
	subExp := l.Sublevel - lodFine.Sublevel
	side := 1
	chunkEdge := cfg.ChunkEdge()
	for i := 0; i < levelExp; i++ {
		side *= chunkEdge
	}
	if subExp >= 0 {
		side <<= uint(subExp)
	} else {
		side >>= uint(-subExp)
	}
	if side < 1 {
		side = 1
	}
	var origin [3]int
	for a := 0; a < 3; a++ {
		origin[a] = coarsePos[a] * side
	}
	return FinerBox{Origin: origin, Side: side}
}

// ForEachCovered enumerates, without materializing a slice, every local
// voxel position in the box, calling fn(pos) for each. This is the
// restartable lazy sequence spec.md §9 calls for.
func (b FinerBox) ForEachCovered(fn func(pos [3]int)) {
	for x := b.Origin[0]; x < b.Origin[0]+b.Side; x++ {
		for y := b.Origin[1]; y < b.Origin[1]+b.Side; y++ {
			for z := b.Origin[2]; z < b.Origin[2]+b.Side; z++ {
				fn([3]int{x, y, z})
			}
		}
	}
}

// Count returns the number of finer voxels covered (Side^3).
func (b FinerBox) Count() int {
	return b.Side * b.Side * b.Side
}
