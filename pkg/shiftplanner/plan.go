// Package shiftplanner translates camera motion into per-axis grid shifts,
// with a one-chunk prefetch buffer so neighboring chunks are loaded ahead
// of the boundary crossing that needs them (spec.md §4.H).
package shiftplanner

// AxisAction is one of the six mutually-exclusive actions a single axis can
// take in one planning pass (spec.md §9: "the six-variant per-axis enum is
// load-bearing; implementers should not collapse it").
type AxisAction int

const (
	DoNothing AxisAction = iota
	MaintainLower
	MaintainUpper
	LoadLower
	LoadUpper
	Shift
)

func (a AxisAction) String() string {
	switch a {
	case DoNothing:
		return "DoNothing"
	case MaintainLower:
		return "MaintainLower"
	case MaintainUpper:
		return "MaintainUpper"
	case LoadLower:
		return "LoadLower"
	case LoadUpper:
		return "LoadUpper"
	case Shift:
		return "Shift"
	default:
		return "Unknown"
	}
}

// AxisPlan is the chosen action for one axis. Delta and PreloadedFirst are
// only meaningful when Action == Shift.
type AxisPlan struct {
	Action         AxisAction
	Delta          int
	PreloadedFirst bool
}

// Plan is the full per-axis plan for one frame. Compute always returns a
// non-nil Plan; IsNoop reports the no-op case and also accepts a nil Plan.
type Plan struct {
	Axes [3]AxisPlan
}

// IsNoop reports whether every axis is DoNothing (the "None" case).
func (p *Plan) IsNoop() bool {
	if p == nil {
		return true
	}
	for _, a := range p.Axes {
		if a.Action != DoNothing {
			return false
		}
	}
	return true
}

// BufferFace records, per axis, whether the prefetch buffer was loaded on
// the low or high face last frame (mirrors voxelgrid.BufferChunkState
// without importing it, since the planner is grid-agnostic).
type BufferFace int

const (
	BufferNone BufferFace = iota
	BufferLower
	BufferUpper
)

// Inputs bundles everything the planner needs for one pass (spec.md §4.H).
type Inputs struct {
	// PrevBuffer is each axis's prefetch-buffer state from the prior frame.
	PrevBuffer [3]BufferFace
	// DisplacementTLC is the camera's displacement since the last plan, in
	// whole TLC units per axis (fractional motion accumulates upstream).
	DisplacementTLC [3]int
	// DistanceToLowerFace / DistanceToUpperFace give, per axis, how close
	// (in voxels) the camera sits to each face of its current TLC.
	DistanceToLowerFace [3]float64
	DistanceToUpperFace [3]float64
	// LoadDistanceThreshold: voxels inside a TLC face within which that
	// face's prefetch buffer must be loaded (spec.md §6's
	// tlc_load_distance_threshold).
	LoadDistanceThreshold float64
}

// Compute produces the per-axis plan for one frame.
func Compute(in Inputs) *Plan {
	var plan Plan
	for axis := 0; axis < 3; axis++ {
		d := in.DisplacementTLC[axis]
		if d != 0 {
			preloaded := axisPreloadedForDirection(in.PrevBuffer[axis], d)
			plan.Axes[axis] = AxisPlan{Action: Shift, Delta: d, PreloadedFirst: preloaded}
			continue
		}

		nearLower := in.DistanceToLowerFace[axis] <= in.LoadDistanceThreshold
		nearUpper := in.DistanceToUpperFace[axis] <= in.LoadDistanceThreshold

		switch {
		case nearLower && in.PrevBuffer[axis] == BufferLower:
			plan.Axes[axis] = AxisPlan{Action: MaintainLower}
		case nearUpper && in.PrevBuffer[axis] == BufferUpper:
			plan.Axes[axis] = AxisPlan{Action: MaintainUpper}
		case nearLower:
			plan.Axes[axis] = AxisPlan{Action: LoadLower}
		case nearUpper:
			plan.Axes[axis] = AxisPlan{Action: LoadUpper}
		default:
			plan.Axes[axis] = AxisPlan{Action: DoNothing}
		}
	}
	return &plan
}

// axisPreloadedForDirection reports whether the previously-loaded buffer
// face matches the direction of travel, so the loader can skip re-fetching
// the first trailing column (spec.md §4.H's preloaded_first).
func axisPreloadedForDirection(prev BufferFace, delta int) bool {
	if delta > 0 {
		return prev == BufferUpper
	}
	return prev == BufferLower
}

// Delta returns the plan's per-axis shift delta array (0 for non-Shift
// axes), suitable for voxelgrid.VoxelGrid.ShiftAll.
func (p *Plan) Delta() [3]int {
	var d [3]int
	for a := 0; a < 3; a++ {
		if p.Axes[a].Action == Shift {
			d[a] = p.Axes[a].Delta
		}
	}
	return d
}

// PreloadedFirst returns the per-axis preloaded_first flags.
func (p *Plan) PreloadedFirst() [3]bool {
	var f [3]bool
	for a := 0; a < 3; a++ {
		f[a] = p.Axes[a].Action == Shift && p.Axes[a].PreloadedFirst
	}
	return f
}
