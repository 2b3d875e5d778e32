package voxelgrid

import "sort"

// VoxelGrid owns one Layer per configured LOD, all centered on the same
// camera-following TLC, and merges their load queues into one stream of work
// keyed by TLC (spec.md §4.D-§4.F: "the streaming memory grid").
type VoxelGrid struct {
	cfg    Config
	layers map[LOD]*Layer
	order  []LOD // LODs sorted coarsest-first, for deterministic iteration
}

// NewVoxelGrid builds a VoxelGrid with one Layer per cfg.LODs entry,
// all anchored so that center sits at the middle of each layer's active
// region.
func NewVoxelGrid(cfg Config, center TLCPos) (*VoxelGrid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &VoxelGrid{cfg: cfg, layers: make(map[LOD]*Layer, len(cfg.LODs))}
	for _, spec := range cfg.LODs {
		lod := LOD{Level: spec.Level, Sublevel: spec.Sublevel}
		half := spec.RenderAreaSize / 2
		start := TLCPos{X: center.X - int64(half), Y: center.Y - int64(half), Z: center.Z - int64(half)}
		g.layers[lod] = NewLayer(spec, cfg, start)
		g.order = append(g.order, lod)
	}
	sort.Slice(g.order, func(i, j int) bool {
		a, b := g.order[i], g.order[j]
		if a.Level != b.Level {
			return a.Level > b.Level // coarsest (highest Level) first
		}
		return a.Sublevel > b.Sublevel
	})
	return g, nil
}

// Layer returns the layer tracking the given LOD, or nil if not configured.
func (g *VoxelGrid) Layer(lod LOD) *Layer { return g.layers[lod] }

// LODs returns the tracked LODs, coarsest first.
func (g *VoxelGrid) LODs() []LOD { return g.order }

// LoadItem is one unit of merged load-queue work: one TLC, with a bitset of
// which LODs still need it loaded (spec.md §4.F's "unified load queue").
type LoadItem struct {
	TLC    TLCPos
	Needed map[LOD]bool
}

// QueueLoadAll seeds the initial load queue for every configured LOD,
// merged by TLC (spec.md §4.D/§8 scenario S1: construction).
func (g *VoxelGrid) QueueLoadAll() []LoadItem {
	merged := make(map[TLCPos]*LoadItem)
	for _, lod := range g.order {
		layer := g.layers[lod]
		for _, tlc := range layer.QueueLoadAll() {
			item, ok := merged[tlc]
			if !ok {
				item = &LoadItem{TLC: tlc, Needed: make(map[LOD]bool, len(g.order))}
				merged[tlc] = item
			}
			item.Needed[lod] = true
		}
	}
	out := make([]LoadItem, 0, len(merged))
	for _, item := range merged {
		out = append(out, *item)
	}
	return out
}

// ShiftAll shifts each tracked LOD layer by the TLC delta given for it in
// deltas, as is; layers with no entry in deltas are left in place. It merges
// the resulting per-layer reload lists by TLC, the way QueueLoadAll does.
func (g *VoxelGrid) ShiftAll(deltas map[LOD][3]int, preloaded map[LOD][3]bool) []LoadItem {
	merged := make(map[TLCPos]*LoadItem)
	for _, lod := range g.order {
		layer := g.layers[lod]
		d, ok := deltas[lod]
		if !ok {
			continue
		}
		var pf [3]bool
		if p, ok := preloaded[lod]; ok {
			pf = p
		}
		for _, tlc := range layer.Shift(d, pf) {
			item, ok := merged[tlc]
			if !ok {
				item = &LoadItem{TLC: tlc, Needed: make(map[LOD]bool, len(g.order))}
				merged[tlc] = item
			}
			item.Needed[lod] = true
		}
	}
	out := make([]LoadItem, 0, len(merged))
	for _, item := range merged {
		out = append(out, *item)
	}
	return out
}

// ChunkEdit bundles together the per-LOD editors available for one TLC: a
// LOD's entry is absent if that TLC falls outside its render area, or if its
// cell is not currently Valid (spec.md §4.D's "Edit yields absent editors
// out of range").
type ChunkEdit struct {
	Editors map[LOD]*ChunkEditor
}

// Edit returns the set of per-LOD editors available for TLC g.
func (g *VoxelGrid) Edit(tlc TLCPos) ChunkEdit {
	out := ChunkEdit{Editors: make(map[LOD]*ChunkEditor)}
	for _, lod := range g.order {
		if ed, ok := g.layers[lod].EditChunk(tlc); ok {
			out.Editors[lod] = ed
		}
	}
	return out
}

// DrainedUpdate is one LOD layer's drained update regions, tagged with the
// LOD (spec.md §4.E). It carries no bytes: consumers read them from the
// layer's cells via Layer.CellAt(region.ChunkIndex).
type DrainedUpdate struct {
	LOD     LOD
	Regions []UpdateRegion
}

// DrainUpdates drains every layer's update log (spec.md §4.E/§6's "GPU
// staging interface" upstream data source).
func (g *VoxelGrid) DrainUpdates() []DrainedUpdate {
	out := make([]DrainedUpdate, 0, len(g.order))
	for _, lod := range g.order {
		regions := g.layers[lod].DrainUpdates()
		if len(regions) == 0 {
			continue
		}
		out = append(out, DrainedUpdate{LOD: lod, Regions: regions})
	}
	return out
}
