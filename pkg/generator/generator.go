// Package generator provides demo implementations of the loader's external
// Generator callback (spec.md §6), adapted from the teacher's block palette
// (pkg/voxel/block.go) trimmed down to a handful of solid/air IDs.
package generator

import (
	"github.com/vornstream/voxelstream/pkg/voxelgrid"
)

// Block IDs for the demo generators. 0 (Air) must stay the "empty" sentinel
// the loader treats as not-visible.
const (
	Air byte = iota
	Stone
	Grass
	Dirt
)

// Sphere generates a solid sphere of the given radius centered at the
// origin, useful for exercising LOD coarsening visually.
type Sphere struct {
	Radius  float64
	CenterX int64
	CenterY int64
	CenterZ int64
}

// Generate implements loader.Generator. The loader only ever calls
// generators at LOD (0,0), so level/sublevel are unused here.
func (s Sphere) Generate(tlc voxelgrid.TLCPos, level, sublevel int, out []byte, tlcSize int64, largestLevel int) {
	edge := cubeRootLen(len(out))
	base := [3]int64{tlc.X * tlcSize, tlc.Y * tlcSize, tlc.Z * tlcSize}
	idx := 0
	for x := 0; x < edge; x++ {
		for y := 0; y < edge; y++ {
			for z := 0; z < edge; z++ {
				wx := float64(base[0] + int64(x))
				wy := float64(base[1] + int64(y))
				wz := float64(base[2] + int64(z))
				dx, dy, dz := wx-float64(s.CenterX), wy-float64(s.CenterY), wz-float64(s.CenterZ)
				if dx*dx+dy*dy+dz*dz <= s.Radius*s.Radius {
					out[idx] = Stone
				} else {
					out[idx] = Air
				}
				idx++
			}
		}
	}
}

// Flat generates a flat ground plane at the given world-space Y height.
type Flat struct {
	GroundY int64
}

// Generate implements loader.Generator.
func (f Flat) Generate(tlc voxelgrid.TLCPos, level, sublevel int, out []byte, tlcSize int64, largestLevel int) {
	edge := cubeRootLen(len(out))
	baseY := tlc.Y * tlcSize
	idx := 0
	for x := 0; x < edge; x++ {
		for y := 0; y < edge; y++ {
			wy := baseY + int64(y)
			for z := 0; z < edge; z++ {
				if wy < f.GroundY {
					out[idx] = Dirt
				} else if wy == f.GroundY {
					out[idx] = Grass
				} else {
					out[idx] = Air
				}
				idx++
			}
		}
	}
}

// cubeRootLen returns n such that n^3 == length, for the cube buffers the
// loader always allocates.
func cubeRootLen(length int) int {
	n := 1
	for n*n*n < length {
		n++
	}
	return n
}
