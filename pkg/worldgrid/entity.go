// Package worldgrid layers arbitrary per-TLC side data (entities, and any
// future game-specific attachment) alongside a voxelgrid.VoxelGrid, sharing
// its TLC keying and load queue (spec.md §4.D's world-grid generalization,
// grounded in original_source/example_game/src/world.rs's WorldMemoryGrid).
package worldgrid

import "github.com/vornstream/voxelstream/pkg/voxelgrid"

// EntityID names one live entity; the owning simulation is responsible for
// the mapping to richer per-entity state.
type EntityID uint64

// EntityChunk is the per-TLC payload of an EntityLayer: the entities whose
// authoritative position currently falls within this chunk.
type EntityChunk struct {
	IDs []EntityID
}

// EntityLayer is a cube of EntityChunk cells, independent of the voxel
// grid's own render extents (it may track a smaller render area, per
// spec.md §4.D: "side layers may have smaller render extents").
type EntityLayer struct {
	renderAreaSize int
	startTLC       voxelgrid.TLCPos
	size           int
	cells          []*voxelgrid.Cell[*EntityChunk]
}

// NewEntityLayer allocates an EntityLayer of the given render area size
// (must be odd), centered at center.
func NewEntityLayer(renderAreaSize int, center voxelgrid.TLCPos) *EntityLayer {
	size := renderAreaSize + 1
	half := renderAreaSize / 2
	start := voxelgrid.TLCPos{X: center.X - int64(half), Y: center.Y - int64(half), Z: center.Z - int64(half)}
	l := &EntityLayer{
		renderAreaSize: renderAreaSize,
		startTLC:       start,
		size:           size,
		cells:          make([]*voxelgrid.Cell[*EntityChunk], size*size*size),
	}
	for i := range l.cells {
		l.cells[i] = voxelgrid.NewCell[*EntityChunk](nil)
	}
	return l
}

func axisCoord(p voxelgrid.TLCPos, axis int) int64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

func (l *EntityLayer) slot(g voxelgrid.TLCPos) (int, bool) {
	var coords [3]int
	for a := 0; a < 3; a++ {
		rel := int(axisCoord(g, a) - axisCoord(l.startTLC, a))
		if rel < 0 || rel >= l.size {
			return 0, false
		}
		coords[a] = rel
	}
	return coords[0]*l.size*l.size + coords[1]*l.size + coords[2], true
}

// Cell returns the entity cell for TLC g, or nil if out of range.
func (l *EntityLayer) Cell(g voxelgrid.TLCPos) *voxelgrid.Cell[*EntityChunk] {
	idx, ok := l.slot(g)
	if !ok {
		return nil
	}
	return l.cells[idx]
}

// QueueLoadAll enumerates every TLC in this layer's active region.
func (l *EntityLayer) QueueLoadAll() []voxelgrid.TLCPos {
	active := l.renderAreaSize
	out := make([]voxelgrid.TLCPos, 0, active*active*active)
	for dx := 0; dx < active; dx++ {
		for dy := 0; dy < active; dy++ {
			for dz := 0; dz < active; dz++ {
				out = append(out, voxelgrid.TLCPos{
					X: l.startTLC.X + int64(dx),
					Y: l.startTLC.Y + int64(dy),
					Z: l.startTLC.Z + int64(dz),
				})
			}
		}
	}
	return out
}

// Shift advances the layer by delta, reshuffling every cell rather than
// keeping toroidal ring-buffer bookkeeping, since entity chunks are small.
// Cells still inside the physical cube keep their state and payload; cells
// that were outside it are created fresh (Invalid). It returns only those
// fresh cells that fall in the new active region. Unlike
// voxelgrid.Layer.Shift, a cell carried over from the old padding row is
// not reported, whatever its state.
func (l *EntityLayer) Shift(delta [3]int) []voxelgrid.TLCPos {
	newCells := make([]*voxelgrid.Cell[*EntityChunk], len(l.cells))
	newStart := voxelgrid.TLCPos{
		X: l.startTLC.X + int64(delta[0]),
		Y: l.startTLC.Y + int64(delta[1]),
		Z: l.startTLC.Z + int64(delta[2]),
	}
	var entering []voxelgrid.TLCPos
	active := l.renderAreaSize
	for dx := 0; dx < l.size; dx++ {
		for dy := 0; dy < l.size; dy++ {
			for dz := 0; dz < l.size; dz++ {
				g := voxelgrid.TLCPos{X: newStart.X + int64(dx), Y: newStart.Y + int64(dy), Z: newStart.Z + int64(dz)}
				idx := dx*l.size*l.size + dy*l.size + dz
				if oldIdx, ok := l.slot(g); ok {
					newCells[idx] = l.cells[oldIdx]
				} else {
					newCells[idx] = voxelgrid.NewCell[*EntityChunk](nil)
					if dx < active && dy < active && dz < active {
						entering = append(entering, g)
					}
				}
			}
		}
	}
	l.cells = newCells
	l.startTLC = newStart
	return entering
}

// AllocateForLoad installs freshly-loaded entity data, finishing the
// Missing -> Valid handoff.
func (l *EntityLayer) AllocateForLoad(g voxelgrid.TLCPos, token voxelgrid.LoadToken, chunk *EntityChunk) bool {
	cell := l.Cell(g)
	if cell == nil {
		return false
	}
	*cell.Payload(token) = chunk
	cell.FinishLoading(token)
	return true
}
