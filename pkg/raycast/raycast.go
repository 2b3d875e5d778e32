// Package raycast implements the LOD-0 voxel picking ray caster
// (spec.md §4.I): an Amanatides-Woo-style DDA restricted to one TLC at a
// time, with inter-chunk continuation records carrying the traversal across
// TLC boundaries.
package raycast

import (
	"math"

	"github.com/vornstream/voxelstream/pkg/voxelgrid"
)

const traversalSafetyLimit = 10000

// maxTLCHops bounds how many TLC-boundary crossings one Cast follows before
// giving up with Miss. A ray may legitimately cross many empty TLCs before
// hitting something (or running off loaded/out-of-area space), so this must
// not be a small constant tied to a single boundary crossing.
const maxTLCHops = 256

// Face identifies which face of a voxel the ray crossed to hit it.
type Face struct {
	Axis     int // 0, 1, or 2 in world xyz
	Positive bool
}

// Kind distinguishes the possible outcomes of a cast (spec.md §7.3/§7.4).
type Kind int

const (
	Hit Kind = iota
	Miss
	OutOfArea // the ray entered a TLC outside the LOD-0 layer, or LOD 0 carries no voxel IDs
	Unloaded  // a required chunk's LOD-0 is Missing; caller may retry
)

// Result is the outcome of Cast.
type Result struct {
	Kind        Kind
	TLC         voxelgrid.TLCPos
	VoxelIndex  int
	Face        Face
}

// rayState carries the traversal across a TLC boundary: the spec.md §4.I
// "inter-chunk continuation record" {tlc_new, pos, ipos}.
type rayState struct {
	tlc  voxelgrid.TLCPos
	pos  [3]float64 // position within the TLC, in LOD-0 voxel units
	ipos [3]int     // integer voxel position last touched
}

// Cast fires a ray from startPos (LOD-0 voxel units, relative to the
// minimum corner of startTLC) in direction rayDir, restricted to the LOD-0
// layer of grid.
func Cast(grid *voxelgrid.VoxelGrid, startTLC voxelgrid.TLCPos, startPos [3]float64, rayDir [3]float64, cfg voxelgrid.Config) Result {
	lod0 := voxelgrid.LOD{Level: 0, Sublevel: 0}
	layer := grid.Layer(lod0)
	if layer == nil {
		return Result{Kind: OutOfArea}
	}

	state := rayState{
		tlc:  startTLC,
		pos:  startPos,
		ipos: [3]int{int(math.Floor(startPos[0])), int(math.Floor(startPos[1])), int(math.Floor(startPos[2]))},
	}

	for hop := 0; hop < maxTLCHops; hop++ {
		res, next, ok := castInTLC(layer, state, rayDir, cfg)
		if !ok {
			return res
		}
		if res.Kind == Hit {
			return res
		}
		state = next
	}
	return Result{Kind: Miss}
}

// castInTLC runs the DDA within one TLC. ok is false when the result is
// terminal (Hit, OutOfArea, Unloaded, or Miss once traversalSafetyLimit
// steps are used up); when ok is true, next carries the
// continuation into the neighboring TLC and res.Kind is Miss (unused).
func castInTLC(layer *voxelgrid.Layer, start rayState, rayDirIn [3]float64, cfg voxelgrid.Config) (res Result, next rayState, ok bool) {
	cell := layer.Cell(start.tlc)
	if cell == nil {
		return Result{Kind: OutOfArea}, rayState{}, false
	}
	storage, valid := cell.Read()
	if !valid {
		return Result{Kind: Unloaded}, rayState{}, false
	}
	if storage.IDs == nil {
		return Result{Kind: OutOfArea}, rayState{}, false
	}

	norm := normalize(rayDirIn)
	lod0 := voxelgrid.LOD{Level: 0, Sublevel: 0}
	size := lod0.VoxelsPerAxis(cfg)

	axA, axB, axC := dominantAxisOrder(norm)

	toABC := func(v [3]float64) [3]float64 {
		return [3]float64{v[axA], v[axB], v[axC]}
	}
	toABCi := func(v [3]int) [3]int {
		return [3]int{v[axA], v[axB], v[axC]}
	}
	fromABC := func(v [3]float64) [3]float64 {
		var r [3]float64
		r[axA], r[axB], r[axC] = v[0], v[1], v[2]
		return r
	}
	fromABCi := func(v [3]int) [3]int {
		var r [3]int
		r[axA], r[axB], r[axC] = v[0], v[1], v[2]
		return r
	}

	dir := toABC(norm)
	pos := toABC(start.pos)
	ipos := toABCi(start.ipos)

	minPt := -1
	maxPt := size

	aDir := 1
	if dir[0] <= 0 {
		aDir = -1
	}

	voxIdx := func(ipos [3]int) int {
		xyz := fromABCi(ipos)
		return lod0.VoxelIndex([3]int{xyz[0], xyz[1], xyz[2]}, cfg)
	}
	hitFace := func(crossedABC int) Face {
		axes := [3]int{axA, axB, axC}
		return Face{Axis: axes[crossedABC], Positive: dir[crossedABC] < 0}
	}
	stepRay := func(ipos *[3]int, pos *[3]float64) {
		ipos[0] += aDir
		pos[0] += dir[0]
		pos[1] += dir[1]
		pos[2] += dir[2]
		ipos[1] = int(math.Floor(pos[1]))
		ipos[2] = int(math.Floor(pos[2]))
	}

	inBounds := func(v, axis int) bool { return v > minPt && v < maxPt }

	makeMiss := func(ipos [3]int, pos [3]float64, crossingAxisABC int, newTLCDelta [3]int) (Result, rayState, bool) {
		newTLC := start.tlc
		newTLC = voxelgrid.TLCPos{X: newTLC.X + int64(newTLCDelta[0]), Y: newTLC.Y + int64(newTLCDelta[1]), Z: newTLC.Z + int64(newTLCDelta[2])}
		return Result{Kind: Miss}, rayState{tlc: newTLC, pos: fromABC(pos), ipos: fromABCi(ipos)}, true
	}

	if storage.Bitmask.Get(voxIdx(ipos)) {
		return Result{Kind: Hit, TLC: start.tlc, VoxelIndex: voxIdx(ipos), Face: hitFace(0)}, rayState{}, false
	}

	aFloorAmt := pos[0] - float64(ipos[0])
	if dir[0] < 0 {
		aFloorAmt = pos[0] - float64(ipos[0]+1)
	}
	pos[0] -= dir[0] * aFloorAmt * float64(aDir)
	pos[1] -= dir[1] * aFloorAmt * float64(aDir)
	pos[2] -= dir[2] * aFloorAmt * float64(aDir)

	stepRay(&ipos, &pos)

	lastB, lastC := ipos[1], ipos[2]

	for i := 0; i < traversalSafetyLimit; i++ {
		bCrossed := ipos[1] != lastB
		cCrossed := ipos[2] != lastC
		bInBounds := inBounds(ipos[1], 1)
		cInBounds := inBounds(ipos[2], 2)

		bFirst := true
		if bCrossed {
			if cCrossed {
				bDist := math.Abs((float64(ipos[1]) + boolToFloat(dir[1] < 0) - (pos[1] - dir[1])) / (dir[1] + math.SmallestNonzeroFloat64))
				cDist := math.Abs((float64(ipos[2]) + boolToFloat(dir[2] < 0) - (pos[2] - dir[2])) / (dir[2] + math.SmallestNonzeroFloat64))
				bFirst = bDist < cDist
				if (bFirst && bInBounds) || (!bFirst && cInBounds) {
					check := ipos
					check[0] -= aDir
					if bFirst {
						check[2] -= sign(dir[2])
					} else {
						check[1] -= sign(dir[1])
					}
					idx := voxIdx(check)
					if storage.Bitmask.Get(idx) {
						axisABC := 2
						if bFirst {
							axisABC = 1
						}
						return Result{Kind: Hit, TLC: start.tlc, VoxelIndex: idx, Face: hitFace(axisABC)}, rayState{}, false
					}
				}
			} else {
				bFirst = false
			}
		}

		if !bInBounds && (cInBounds || bFirst) {
			delta := [3]int{}
			if dir[1] > 0 {
				delta[axB] = 1
				pos[1] = 0
				ipos[1] = 0
			} else {
				delta[axB] = -1
				pos[1] = float64(size)
				ipos[1] = size - 1
			}
			return makeMiss(ipos, pos, 1, delta)
		}
		if !cInBounds {
			delta := [3]int{}
			// fixed dimension mix-up: the source tests ray_dir.y for both
			// the b-axis and c-axis boundary branches; the c-axis branch
			// must test ray_dir[ax_c] (dir[2] here), not ray_dir[ax_b].
			if dir[2] > 0 {
				delta[axC] = 1
				pos[2] = 0
				ipos[2] = 0
			} else {
				delta[axC] = -1
				pos[2] = float64(size)
				ipos[2] = size - 1
			}
			return makeMiss(ipos, pos, 2, delta)
		}

		if bCrossed || cCrossed {
			check := ipos
			check[0] -= aDir
			idx := voxIdx(check)
			if storage.Bitmask.Get(idx) {
				axisABC := 1
				if bFirst {
					axisABC = 2
				}
				return Result{Kind: Hit, TLC: start.tlc, VoxelIndex: idx, Face: hitFace(axisABC)}, rayState{}, false
			}
		}

		if ipos[0] < maxPt && ipos[0] > minPt {
			idx := voxIdx(ipos)
			if storage.Bitmask.Get(idx) {
				return Result{Kind: Hit, TLC: start.tlc, VoxelIndex: idx, Face: hitFace(0)}, rayState{}, false
			}
		}

		lastB, lastC = ipos[1], ipos[2]
		stepRay(&ipos, &pos)

		if ipos[0] > maxPt {
			pos[0] -= dir[0]
			pos[1] -= dir[1]
			pos[2] -= dir[2]
			delta := [3]int{}
			delta[axA] = 1
			pos[0] = 0
			ipos[0] = 0
			return makeMiss(ipos, pos, 0, delta)
		}
		if ipos[0] < minPt {
			ipos[0]++
			pos[0] -= dir[0]
			pos[1] -= dir[1]
			pos[2] -= dir[2]
			delta := [3]int{}
			delta[axA] = -1
			pos[0] = float64(size)
			ipos[0] = size - 1
			return makeMiss(ipos, pos, 0, delta)
		}
	}

	return Result{Kind: Miss}, rayState{}, false
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func sign(v float64) int {
	if v > 0 {
		return 1
	}
	return -1
}

func normalize(v [3]float64) [3]float64 {
	n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if n == 0 {
		return v
	}
	return [3]float64{v[0] / n, v[1] / n, v[2] / n}
}

// dominantAxisOrder picks the axis the ray is most parallel to (A), and the
// other two (B, C), matching spec.md §4.I's "pick the dominant ray axis".
func dominantAxisOrder(dir [3]float64) (a, b, c int) {
	ax, ay, az := math.Abs(dir[0]), math.Abs(dir[1]), math.Abs(dir[2])
	if ax > ay {
		if ax > az {
			return 0, 1, 2
		}
		return 2, 0, 1
	}
	if ay > az {
		return 1, 2, 0
	}
	return 2, 0, 1
}
