package shiftplanner

// BufferLoad is one chunk position (expressed as a local offset from the
// layer's active-region corner) that needs its prefetch buffer populated,
// tagged with the axis whose face it sits on.
type BufferLoad struct {
	Axis   int
	Offset [3]int // local coordinates; the buffer-face axis holds -1 or activeSize
}

// EnumerateBufferLoads lists the buffer-strip cells to load for every
// LoadLower/LoadUpper axis in the plan, for non-shifting axes only
// (spec.md §4.H: "for each non-shifting axis, enumerate either a buffer
// strip ... or the full axis"). Maintain* actions need no new loads — the
// buffer is already resident. Overlapping cells at edges/corners between
// two simultaneously-loading axes are emitted exactly once, owned by the
// lowest-indexed axis (the "strict anti-double-count rule" the spec calls
// for, made concrete as a deterministic tie-break).
func EnumerateBufferLoads(plan *Plan, activeSize int) []BufferLoad {
	type key [3]int
	owner := make(map[key]int)
	var order []key

	faceCoord := func(axis int, action AxisAction) (int, bool) {
		switch action {
		case LoadLower:
			return -1, true
		case LoadUpper:
			return activeSize, true
		default:
			return 0, false
		}
	}

	for axis := 0; axis < 3; axis++ {
		if plan.Axes[axis].Action == Shift {
			continue // the shifting axis's own leading slab is handled by Layer.Shift
		}
		coord, ok := faceCoord(axis, plan.Axes[axis].Action)
		if !ok {
			continue
		}
		others := [2]int{}
		j := 0
		for a := 0; a < 3; a++ {
			if a != axis {
				others[j] = a
				j++
			}
		}
		for i := 0; i < activeSize; i++ {
			for k := 0; k < activeSize; k++ {
				var off [3]int
				off[axis] = coord
				off[others[0]] = i
				off[others[1]] = k
				kk := key(off)
				if _, exists := owner[kk]; !exists {
					owner[kk] = axis
					order = append(order, kk)
				}
			}
		}
	}

	out := make([]BufferLoad, 0, len(order))
	for _, kk := range order {
		out = append(out, BufferLoad{Axis: owner[kk], Offset: kk})
	}
	return out
}
