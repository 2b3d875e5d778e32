package voxelgrid

// BufferChunkState tracks, per axis, whether the one-chunk prefetch row at
// the far edge of a Layer's physical cube currently holds speculatively
// preloaded data (spec.md §4.D, §GLOSSARY).
//
// The source enum is bidirectional (LoadedUpper/LoadedLower name which face
// hosts the preload, since the camera can approach from either side). This
// re-design fixes the physical cube's layout so the prefetch row always
// sits at the trailing (maximum-coordinate) end of each axis once shifted
// into place; LoadedUpper/LoadedLower are kept as distinct values so callers
// observing a ShiftPlanner's per-axis plan can still tell which direction
// triggered the preload, but Layer itself only distinguishes loaded/not.
type BufferChunkState int

const (
	BufferUnloaded BufferChunkState = iota
	BufferLoadedUpper
	BufferLoadedLower
)

// Layer is a 3-D grid of chunk cells at one (level, sublevel) LOD
// (spec.md §4.D): a cube of (render_area_size + 1)^3 chunk cells, addressed
// toroidally, anchored at startTLC.
type Layer struct {
	Spec LODSpec
	cfg  Config

	size      int // physical edge length: Spec.RenderAreaSize + 1
	activeEnd int // Spec.RenderAreaSize (the active region's width)

	startTLC TLCPos
	offset   [3]int

	cells       []*Cell[*ChunkStorage]
	updateLog   UpdateLog
	voxelCount  int
	bufferState [3]BufferChunkState
}

// NewLayer allocates a Layer for the given LOD spec, with startTLC as the
// minimum corner of its physical cube.
// All cells begin Invalid (spec.md §3's lifecycle: "at world construction,
// all chunks start Invalid").
func NewLayer(spec LODSpec, cfg Config, startTLC TLCPos) *Layer {
	lod := LOD{Level: spec.Level, Sublevel: spec.Sublevel}
	size := spec.RenderAreaSize + 1
	l := &Layer{
		Spec:       spec,
		cfg:        cfg,
		size:       size,
		activeEnd:  spec.RenderAreaSize,
		startTLC:   startTLC,
		cells:      make([]*Cell[*ChunkStorage], size*size*size),
		voxelCount: lod.VoxelCount(cfg),
	}
	for i := range l.cells {
		l.cells[i] = NewCell[*ChunkStorage](nil)
	}
	return l
}

// Size returns the physical edge length (render_area_size + 1).
func (l *Layer) Size() int { return l.size }

// StartTLC returns the layer's current anchor position.
func (l *Layer) StartTLC() TLCPos { return l.startTLC }

func axisCoord(p TLCPos, axis int) int64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

// physicalSlot maps a global TLC position to its flat physical index,
// implementing invariant I2: slot = ((g - start_tlc) + offset) mod size,
// per axis. ok is false if g falls outside the layer's current physical
// cube (size consecutive integers per axis, anchored at startTLC).
func (l *Layer) physicalSlot(g TLCPos) (int, bool) {
	var coords [3]int
	for a := 0; a < 3; a++ {
		rel := int(axisCoord(g, a) - axisCoord(l.startTLC, a))
		if rel < 0 || rel >= l.size {
			return 0, false
		}
		coords[a] = mod3(rel+l.offset[a], l.size)
	}
	return coords[0]*l.size*l.size + coords[1]*l.size + coords[2], true
}

// InActiveRegion reports whether g is within the "active" (render_area_size)
// region rather than the prefetch-only trailing row.
func (l *Layer) InActiveRegion(g TLCPos) bool {
	for a := 0; a < 3; a++ {
		rel := axisCoord(g, a) - axisCoord(l.startTLC, a)
		if rel < 0 || rel >= int64(l.activeEnd) {
			return false
		}
	}
	return true
}

// CellAt returns the chunk cell at a raw physical flat index, the same
// indexing space used by ChunkEditor.chunkIndex and UpdateRegion.ChunkIndex
// (spec.md §4.E's drain descriptors key chunks by this index).
func (l *Layer) CellAt(index int) *Cell[*ChunkStorage] {
	return l.cells[index]
}

// Cell returns the chunk cell for g, or nil if g is outside the layer's
// current physical cube.
func (l *Layer) Cell(g TLCPos) *Cell[*ChunkStorage] {
	idx, ok := l.physicalSlot(g)
	if !ok {
		return nil
	}
	return l.cells[idx]
}

// EditChunk returns a writable editor for TLC g if it falls within the
// physical layer (spec.md §4.D). It is absent if g is out of range or the
// cell is not currently Valid.
func (l *Layer) EditChunk(g TLCPos) (*ChunkEditor, bool) {
	cell := l.Cell(g)
	if cell == nil {
		return nil, false
	}
	storage, valid := cell.Read()
	if !valid || storage == nil {
		return nil, false
	}
	idx, _ := l.physicalSlot(g)
	return &ChunkEditor{layer: l, chunkIndex: idx, storage: storage}, true
}

// QueueLoadAll emits a load-queue item for every chunk position in the
// active (size-1)^3 region (spec.md §4.D): used at world construction to
// seed the initial working set.
func (l *Layer) QueueLoadAll() []TLCPos {
	out := make([]TLCPos, 0, l.activeEnd*l.activeEnd*l.activeEnd)
	for dx := 0; dx < l.activeEnd; dx++ {
		for dy := 0; dy < l.activeEnd; dy++ {
			for dz := 0; dz < l.activeEnd; dz++ {
				out = append(out, TLCPos{
					X: l.startTLC.X + int64(dx),
					Y: l.startTLC.Y + int64(dy),
					Z: l.startTLC.Z + int64(dz),
				})
			}
		}
	}
	return out
}

// Shift advances the layer by delta TLCs per axis, cycling trailing chunks
// back to Invalid and returning the set of newly-entering TLCs that need to
// be (re)loaded (spec.md §4.D, §3's Move lifecycle, invariant I2).
//
// preloadedFirst, per axis, means the first entering row was already
// resident in the prefetch buffer: the loader can skip re-fetching it.
func (l *Layer) Shift(delta [3]int, preloadedFirst [3]bool) []TLCPos {
	var toLoad []TLCPos
	var allEntering []TLCPos
	base := l.startTLC

	for axis := 0; axis < 3; axis++ {
		d := delta[axis]
		if d == 0 {
			continue
		}
		thickness := d
		step := 1
		if d < 0 {
			thickness = -d
			step = -1
		}
		skipRows := 0
		if preloadedFirst[axis] {
			skipRows = 1
		}
		for k := 0; k < thickness; k++ {
			var rowCoord int64
			if step > 0 {
				rowCoord = axisCoord(base, axis) + int64(l.activeEnd) + int64(k)
			} else {
				rowCoord = axisCoord(base, axis) - 1 - int64(k)
			}
			entering := l.enumerateRow(axis, rowCoord, base)
			if k >= skipRows {
				toLoad = append(toLoad, entering...)
			}
			allEntering = append(allEntering, entering...)
		}
		l.bufferState[axis] = BufferUnloaded
	}

	l.startTLC = TLCPos{
		X: l.startTLC.X + int64(delta[0]),
		Y: l.startTLC.Y + int64(delta[1]),
		Z: l.startTLC.Z + int64(delta[2]),
	}
	for a := 0; a < 3; a++ {
		l.offset[a] = mod3(l.offset[a]+delta[a], l.size)
	}

	// Entering rows beyond the first (thickness > 1, e.g. a frame hitch or a
	// fast camera jump covering more than one TLC) sit outside the physical
	// cube addressed by the pre-shift startTLC/offset: physicalSlot only
	// resolves them once startTLC/offset carry the full delta. Invalidating
	// from here, after the update above, guarantees every entering row's
	// physical slot is actually cleared (invariant I2) instead of silently
	// skipping rows physicalSlot couldn't yet address.
	for _, g := range allEntering {
		if cell := l.Cell(g); cell != nil {
			cell.MarkInvalid()
		}
	}
	return toLoad
}

// enumerateRow lists every global TLC position on the face perpendicular to
// axis at rowCoord, spanning the other two axes' active extent (size-1
// wide), per the "leading X-face slab of (size-1) x (size-1)" shape from
// spec.md's S3 scenario.
func (l *Layer) enumerateRow(axis int, rowCoord int64, activeBase TLCPos) []TLCPos {
	others := [2]int{}
	j := 0
	for a := 0; a < 3; a++ {
		if a != axis {
			others[j] = a
			j++
		}
	}
	out := make([]TLCPos, 0, l.activeEnd*l.activeEnd)
	for i := 0; i < l.activeEnd; i++ {
		for k := 0; k < l.activeEnd; k++ {
			var coords [3]int64
			coords[axis] = rowCoord
			coords[others[0]] = axisCoord(activeBase, others[0]) + int64(i)
			coords[others[1]] = axisCoord(activeBase, others[1]) + int64(k)
			out = append(out, TLCPos{X: coords[0], Y: coords[1], Z: coords[2]})
		}
	}
	return out
}

// LoadBuffer speculatively prepares the prefetch row on one axis so a
// subsequent shift can report preloadedFirst for it. It returns the TLCs on
// that row that still need loading.
func (l *Layer) LoadBuffer(axis int, upper bool) []TLCPos {
	if upper {
		l.bufferState[axis] = BufferLoadedUpper
		return l.enumerateRow(axis, axisCoord(l.startTLC, axis)+int64(l.activeEnd), l.startTLC)
	}
	l.bufferState[axis] = BufferLoadedLower
	return l.enumerateRow(axis, axisCoord(l.startTLC, axis)-1, l.startTLC)
}

// BufferState returns the current per-axis prefetch buffer state.
func (l *Layer) BufferState(axis int) BufferChunkState { return l.bufferState[axis] }

// AllocateForLoad installs a freshly-loaded chunk storage into the cell for
// g, finishing its loading handoff (spec.md §4.A): the cell must currently
// be Missing and hold the given token.
func (l *Layer) AllocateForLoad(g TLCPos, token LoadToken, storage *ChunkStorage) bool {
	cell := l.Cell(g)
	if cell == nil {
		return false
	}
	*cell.Payload(token) = storage
	cell.FinishLoading(token)
	return true
}

// DrainUpdates returns and clears the accumulated update regions for this
// layer (spec.md §4.E).
func (l *Layer) DrainUpdates() []UpdateRegion {
	return l.updateLog.Drain()
}

// ChunkEditor mutates one TLC's storage for one LOD layer, recording every
// write into the layer's update log (spec.md §3's Edit lifecycle,
// invariant I4's drain/reapply guarantee).
type ChunkEditor struct {
	layer      *Layer
	chunkIndex int
	storage    *ChunkStorage
}

// SetBit sets the bitmask bit for local voxel index i.
func (e *ChunkEditor) SetBit(i int, v bool) {
	e.storage.Bitmask.Set(i, v)
	e.layer.updateLog.Record(e.chunkIndex, i, 1)
}

// SetVoxelID sets the voxel ID for local voxel index i (no-op if this LOD
// carries no IDs).
func (e *ChunkEditor) SetVoxelID(i int, id byte) {
	if e.storage.IDs == nil {
		return
	}
	e.storage.IDs.Set(i, id)
	e.layer.updateLog.Record(e.chunkIndex, i, 1)
}

// Storage exposes the underlying payload for bulk operations (e.g. LOD
// propagation during loading).
func (e *ChunkEditor) Storage() *ChunkStorage { return e.storage }

// RecordRegion records a dirtied range directly, for bulk writers (e.g. the
// loader filling an entire chunk) that do not go through SetBit/SetVoxelID.
func (e *ChunkEditor) RecordRegion(firstVoxel, count int) {
	e.layer.updateLog.Record(e.chunkIndex, firstVoxel, count)
}
