package voxelgrid

import "math"

// TLCPos is an integer lattice point in chunk space (spec.md §3): a 64-bit
// signed coordinate per axis naming one Top-Level Chunk.
//
// Adapted from the teacher's voxel.ChunkCoord (pkg/voxel/coord.go), widened
// to int64 since a TLC may sit arbitrarily far from the origin in an
// infinite world.
type TLCPos struct {
	X, Y, Z int64
}

// Add returns the component-wise sum.
func (p TLCPos) Add(o TLCPos) TLCPos {
	return TLCPos{p.X + o.X, p.Y + o.Y, p.Z + o.Z}
}

// Sub returns the component-wise difference.
func (p TLCPos) Sub(o TLCPos) TLCPos {
	return TLCPos{p.X - o.X, p.Y - o.Y, p.Z - o.Z}
}

// DistanceTo returns the Euclidean distance between two TLCs, in TLC units.
func (p TLCPos) DistanceTo(o TLCPos) float64 {
	dx := float64(p.X - o.X)
	dy := float64(p.Y - o.Y)
	dz := float64(p.Z - o.Z)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// WorldToTLC converts a global voxel position to the TLC that contains it,
// given the TLC edge length in voxels.
func WorldToTLC(worldX, worldY, worldZ int64, tlcSize int64) TLCPos {
	return TLCPos{
		X: floorDiv(worldX, tlcSize),
		Y: floorDiv(worldY, tlcSize),
		Z: floorDiv(worldZ, tlcSize),
	}
}

// WorldToLocal converts a global voxel position to its position within its
// owning TLC, given the TLC edge length in voxels.
func WorldToLocal(worldX, worldY, worldZ int64, tlcSize int64) (int64, int64, int64) {
	return floorMod(worldX, tlcSize), floorMod(worldY, tlcSize), floorMod(worldZ, tlcSize)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}

// mod3 is the toroidal addressing helper used throughout the LOD layer:
// (g - start + offset) mod size, always returned non-negative.
func mod3(v, size int) int {
	m := v % size
	if m < 0 {
		m += size
	}
	return m
}
