package loader

import (
	"runtime"
	"sort"

	"github.com/pkg/errors"

	"github.com/vornstream/voxelstream/pkg/voxelgrid"
	"github.com/vornstream/voxelstream/pkg/worldgrid"
)

// Stats counts loader activity since construction (not reset by Sync).
type Stats struct {
	Skipped   int // dispatched item's TLC had fallen out of scope
	Requeued  int // mark_invalid failed because a cell was still Missing
	Completed int // chunks finished and transitioned to Valid
	InFlight  int // currently-busy worker slots
}

type job struct {
	handle *BorrowedChunkHandle
}

type result struct {
	handle *BorrowedChunkHandle
	err    error
}

// Loader owns the priority queue and worker pool (spec.md §4.G).
type Loader struct {
	world         *worldgrid.WorldGrid
	cfg           voxelgrid.Config
	gen           Generator
	fillThreshold float64

	queue *priorityQueue

	jobCh    chan job
	resultCh chan result
	stopCh   chan struct{}

	workers int
	busy    int

	stats Stats
}

// New builds a Loader with the configured worker pool size (cfg.WorkerThreads,
// defaulting to 2x hardware concurrency when zero, per spec.md §4.G).
func New(world *worldgrid.WorldGrid, cfg voxelgrid.Config, gen Generator) *Loader {
	workers := cfg.WorkerThreads
	if workers <= 0 {
		workers = 2 * runtime.GOMAXPROCS(0)
	}
	lo := &Loader{
		world:         world,
		cfg:           cfg,
		gen:           gen,
		fillThreshold: cfg.FillThreshold,
		queue:         newPriorityQueue(),
		jobCh:         make(chan job),
		resultCh:      make(chan result, workers),
		stopCh:        make(chan struct{}),
		workers:       workers,
	}
	for i := 0; i < workers; i++ {
		go lo.workerLoop()
	}
	return lo
}

// Enqueue adds one or more load items to the priority queue.
func (lo *Loader) Enqueue(items ...*Item) {
	for _, it := range items {
		lo.queue.push(it)
	}
}

// Stats returns a snapshot of the loader's counters.
func (lo *Loader) Stats() Stats { return lo.stats }

// Stop signals every worker goroutine to exit. Any in-flight jobs complete
// and their results are discarded; callers that need a clean drain should
// call Sync until InFlight is zero before Stop.
func (lo *Loader) Stop() { close(lo.stopCh) }

// workerLoop is the fixed-pool worker body (grounded in the teacher's
// chunk_manager.go chunkWorker goroutine: select on a stop channel and a
// job channel, loop until told to stop).
func (lo *Loader) workerLoop() {
	for {
		select {
		case <-lo.stopCh:
			return
		case j := <-lo.jobCh:
			lo.resultCh <- lo.runJob(j)
		}
	}
}

// runJob executes one chunk load: fills LOD-(0,0) via the external
// generator, then propagates up to every other requested LOD via the
// majority-visible rule (spec.md §4.G.3). It never panics on expected
// failures; a panicking generator is allowed to crash the process, matching
// spec.md §7's "worker panic: propagate process-fatal".
func (lo *Loader) runJob(j job) (res result) {
	defer func() {
		if r := recover(); r != nil {
			res = result{handle: j.handle, err: errors.Errorf("loader: worker panic: %v", r)}
		}
	}()

	h := j.handle
	lod0 := voxelgrid.LOD{Level: 0, Sublevel: 0}

	scratch := voxelgrid.NewChunkStorage(lod0.VoxelCount(lo.cfg), true)
	buf := make([]byte, lod0.VoxelCount(lo.cfg))
	lo.gen.Generate(h.TLC, 0, 0, buf, lo.cfg.TLCSize(), lo.cfg.LargestLevel)
	for i, id := range buf {
		scratch.IDs.Set(i, id)
		scratch.Bitmask.Set(i, id != 0)
	}

	type filledEntry struct {
		lod     voxelgrid.LOD
		storage *voxelgrid.ChunkStorage
	}
	filled := []filledEntry{{lod: lod0, storage: scratch}}

	sorted := make([]lodSlot, len(h.slots))
	copy(sorted, h.slots)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].lod.EdgeLength(lo.cfg) < sorted[j].lod.EdgeLength(lo.cfg)
	})

	for _, slot := range sorted {
		if slot.lod == lod0 {
			*slot.cell.Payload(slot.token) = scratch
			continue
		}
		targetEdge := slot.lod.EdgeLength(lo.cfg)
		best := filled[0]
		bestEdge := best.lod.EdgeLength(lo.cfg)
		for _, f := range filled[1:] {
			e := f.lod.EdgeLength(lo.cfg)
			if e < targetEdge && e > bestEdge {
				best, bestEdge = f, e
			}
		}
		storage := voxelgrid.NewChunkStorage(slot.lod.VoxelCount(lo.cfg), slot.spec.HasVoxelIDs)
		voxelgrid.Coarsen(slot.lod, best.lod, storage, best.storage, lo.cfg, lo.fillThreshold)
		*slot.cell.Payload(slot.token) = storage
		filled = append(filled, filledEntry{lod: slot.lod, storage: storage})
	}

	if h.hasEntity {
		*h.entityCell.Payload(h.entityToken) = &worldgrid.EntityChunk{}
	}

	return result{handle: h}
}

// Sync runs one per-frame cycle (spec.md §4.G's "per-frame cycle"):
// non-blocking drain of completions, then dispatch while slots and queued
// items remain.
func (lo *Loader) Sync() {
	lo.drainCompletions()
	lo.dispatch()
}

func (lo *Loader) drainCompletions() {
	for {
		select {
		case res := <-lo.resultCh:
			lo.busy--
			lo.stats.InFlight = lo.busy
			if res.err != nil {
				panic(res.err) // worker panic: process-fatal per spec.md §7.6
			}
			for _, slot := range res.handle.slots {
				slot.cell.FinishLoading(slot.token)
			}
			if res.handle.hasEntity {
				res.handle.entityCell.FinishLoading(res.handle.entityToken)
			}
			lo.stats.Completed++
		default:
			return
		}
	}
}

func (lo *Loader) dispatch() {
	for lo.busy < lo.workers && lo.queue.Len() > 0 {
		item := lo.queue.pop()

		h, ok := lo.tryTake(item)
		if !ok {
			continue // skipped or requeued inside tryTake
		}

		lo.jobCh <- job{handle: h}
		lo.busy++
		lo.stats.InFlight = lo.busy
	}
}

// tryTake attempts to move every cell an item addresses from Invalid (or
// Valid, on a reload) to Missing. Any cell that is out of scope causes the
// whole item to be skipped; any cell that is Missing causes the whole item
// to be re-queued at the same priority (spec.md §4.G.2).
func (lo *Loader) tryTake(item *Item) (*BorrowedChunkHandle, bool) {
	type candidate struct {
		lod  voxelgrid.LOD
		spec voxelgrid.LODSpec
		cell *voxelgrid.Cell[*voxelgrid.ChunkStorage]
	}
	var candidates []candidate
	for lod := range item.LODs {
		layer := lo.world.Voxel.Layer(lod)
		if layer == nil {
			continue
		}
		cell := layer.Cell(item.TLC)
		if cell == nil {
			lo.stats.Skipped++
			return nil, false
		}
		candidates = append(candidates, candidate{lod: lod, spec: layer.Spec, cell: cell})
	}

	var entityCell *voxelgrid.Cell[*worldgrid.EntityChunk]
	if item.NeedEntity && lo.world.Entities != nil {
		entityCell = lo.world.Entities.Cell(item.TLC)
		if entityCell == nil {
			lo.stats.Skipped++
			return nil, false
		}
	}

	for _, c := range candidates {
		if c.cell.State() == voxelgrid.StateMissing {
			lo.queue.push(item)
			lo.stats.Requeued++
			return nil, false
		}
	}
	if entityCell != nil && entityCell.State() == voxelgrid.StateMissing {
		lo.queue.push(item)
		lo.stats.Requeued++
		return nil, false
	}

	for _, c := range candidates {
		if c.cell.State() != voxelgrid.StateInvalid {
			c.cell.MarkInvalid()
		}
	}
	if entityCell != nil && entityCell.State() != voxelgrid.StateInvalid {
		entityCell.MarkInvalid()
	}

	h := &BorrowedChunkHandle{TLC: item.TLC}
	for _, c := range candidates {
		h.slots = append(h.slots, lodSlot{lod: c.lod, spec: c.spec, cell: c.cell, token: c.cell.TakeForLoading()})
	}
	if entityCell != nil {
		h.entityCell = entityCell
		h.entityToken = entityCell.TakeForLoading()
		h.hasEntity = true
	}
	return h, true
}
