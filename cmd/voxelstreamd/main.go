package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/urfave/cli"

	"openglhelper"

	"github.com/vornstream/voxelstream/internal/stage"
	"github.com/vornstream/voxelstream/pkg/generator"
	"github.com/vornstream/voxelstream/pkg/loader"
	"github.com/vornstream/voxelstream/pkg/raycast"
	"github.com/vornstream/voxelstream/pkg/shiftplanner"
	"github.com/vornstream/voxelstream/pkg/voxelgrid"
	"github.com/vornstream/voxelstream/pkg/worldgrid"
)

func init() {
	// OpenGL calls must all come from the thread that owns the context.
	runtime.LockOSThread()
}

// VERSION is injected by buildflags.
var VERSION = "SELFBUILD"

func main() {
	app := cli.NewApp()
	app.Name = "voxelstreamd"
	app.Usage = "streaming voxel world demo: toroidal LOD grid, concurrent loading, ray picking"
	app.Version = VERSION
	app.Flags = []cli.Flag{
		cli.IntFlag{Name: "render-distance", Value: 8, Usage: "render_area_size (chunks) for the finest LOD layer"},
		cli.IntFlag{Name: "worker-threads", Value: 0, Usage: "loader worker pool size (0 = 2x GOMAXPROCS)"},
		cli.Float64Flag{Name: "fill-threshold", Value: 0.5, Usage: "fraction of visible finer voxels required for a coarse voxel to stay visible"},
		cli.IntFlag{Name: "chunk-edge-exp", Value: 4, Usage: "chunk edge = 2^this, voxels per axis at the finest LOD"},
		cli.IntFlag{Name: "largest-level", Value: 2, Usage: "coarsest LOD level tracked"},
		cli.BoolFlag{Name: "headless", Usage: "run without a window, exercising the loader/grid only"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("voxelstreamd exited with error", "err", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := buildConfig(c)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("voxelstreamd: %w", err)
	}

	center := voxelgrid.TLCPos{}
	grid, err := voxelgrid.NewVoxelGrid(cfg, center)
	if err != nil {
		return fmt.Errorf("voxelstreamd: building grid: %w", err)
	}
	world := worldgrid.NewWorldGrid(grid, center, 0)

	gen := generator.Sphere{Radius: float64(cfg.TLCSize()) * 2.5}
	lo := loader.New(world, cfg, gen)
	defer lo.Stop()

	seedLoadQueue(lo, world, center)

	if c.Bool("headless") {
		return runHeadless(world, lo, cfg)
	}
	return runWindowed(world, lo, cfg)
}

func buildConfig(c *cli.Context) voxelgrid.Config {
	renderDist := c.Int("render-distance")
	if renderDist%2 == 0 {
		renderDist++ // render areas must be odd (spec.md §3)
	}
	return voxelgrid.Config{
		ChunkEdgeExp:  c.Int("chunk-edge-exp"),
		LargestLevel:  c.Int("largest-level"),
		WorkerThreads: c.Int("worker-threads"),
		FillThreshold: c.Float64("fill-threshold"),
		TLCLoadDistanceThreshold: 4,
		LODs: buildLODSpecs(c.Int("largest-level"), renderDist),
	}
}

// buildLODSpecs lays out one (level, 0) entry per level from 0 to
// largestLevel, each with a narrower render area the coarser it gets (never
// below 3). No sublevel tiers other than sublevel 0 are added.
func buildLODSpecs(largestLevel, finestRenderDist int) []voxelgrid.LODSpec {
	specs := make([]voxelgrid.LODSpec, 0, largestLevel+2)
	specs = append(specs, voxelgrid.LODSpec{Level: 0, Sublevel: 0, RenderAreaSize: finestRenderDist, HasVoxelIDs: true})
	for level := 1; level <= largestLevel; level++ {
		area := finestRenderDist - 2*level
		if area < 3 {
			area = 3
		}
		if area%2 == 0 {
			area++
		}
		specs = append(specs, voxelgrid.LODSpec{Level: level, Sublevel: 0, RenderAreaSize: area, HasVoxelIDs: false})
	}
	return specs
}

func seedLoadQueue(lo *loader.Loader, world *worldgrid.WorldGrid, center voxelgrid.TLCPos) {
	items := world.QueueLoadAll()
	sized := make(map[voxelgrid.LOD]int, len(world.Voxel.LODs()))
	for _, lod := range world.Voxel.LODs() {
		sized[lod] = world.Voxel.Layer(lod).Size()
	}
	queued := make([]*loader.Item, 0, len(items))
	for _, it := range items {
		maxSize := 0
		for lod := range it.VoxelLODs {
			if s := sized[lod]; s > maxSize {
				maxSize = s
			}
		}
		queued = append(queued, &loader.Item{
			TLC:        it.TLC,
			LODs:       it.VoxelLODs,
			NeedEntity: it.NeedEntity,
			Priority:   loader.Priority(it.TLC.DistanceTo(center), maxSize),
		})
	}
	lo.Enqueue(queued...)
}

// runHeadless drives the loader to quiescence and reports stats, for
// exercising the streaming pipeline without a GPU context.
func runHeadless(world *worldgrid.WorldGrid, lo *loader.Loader, cfg voxelgrid.Config) error {
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		lo.Sync()
		stats := lo.Stats()
		if stats.InFlight == 0 && stats.Completed > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	stats := lo.Stats()
	slog.Info("headless run complete", "completed", stats.Completed, "skipped", stats.Skipped, "requeued", stats.Requeued)

	drained := world.Voxel.DrainUpdates()
	slog.Info("drained update regions", "lods", len(drained))

	res := raycast.Cast(world.Voxel, voxelgrid.TLCPos{}, [3]float64{0, 0, 0}, [3]float64{1, 0, 0}, cfg)
	slog.Info("sample ray cast", "kind", res.Kind)
	return nil
}

// runWindowed opens a window and drives the camera/shift-planner/loader
// loop, staging dirtied regions into the GPU buffers each frame (spec.md
// §6's external collaborators: window, input, GPU staging).
func runWindowed(world *worldgrid.WorldGrid, lo *loader.Loader, cfg voxelgrid.Config) error {
	win, err := openglhelper.NewWindow(1024, 768, "voxelstreamd", true)
	if err != nil {
		return fmt.Errorf("voxelstreamd: %w", err)
	}
	defer win.Close()

	buffers, err := stage.New(world.Voxel, cfg)
	if err != nil {
		return fmt.Errorf("voxelstreamd: %w", err)
	}
	defer buffers.Cleanup()

	cam := NewCamera(mgl32.Vec3{0, 0, 0})
	win.SetMouseCaptured(true)

	var prevBuffer [3]shiftplanner.BufferFace
	lastFrame := time.Now()
	tlcSize := float64(cfg.TLCSize())

	for !win.ShouldClose() {
		now := time.Now()
		dt := float32(now.Sub(lastFrame).Seconds())
		lastFrame = now

		win.PollEvents()
		moved := cam.ProcessKeyboardInput(dt, win)

		lo.Sync()

		displacementTLC := [3]int{
			int(math.Round(float64(moved.X()) / tlcSize)),
			int(math.Round(float64(moved.Y()) / tlcSize)),
			int(math.Round(float64(moved.Z()) / tlcSize)),
		}
		pos := cam.Position()
		localX, localY, localZ := voxelgrid.WorldToLocal(int64(pos.X()), int64(pos.Y()), int64(pos.Z()), cfg.TLCSize())

		in := shiftplanner.Inputs{
			PrevBuffer:      prevBuffer,
			DisplacementTLC: displacementTLC,
			DistanceToLowerFace: [3]float64{
				float64(localX), float64(localY), float64(localZ),
			},
			DistanceToUpperFace: [3]float64{
				tlcSize - float64(localX), tlcSize - float64(localY), tlcSize - float64(localZ),
			},
			LoadDistanceThreshold: cfg.TLCLoadDistanceThreshold,
		}
		plan := shiftplanner.Compute(in)
		applyPlan(plan, world, lo, cfg, &prevBuffer)

		drained := world.Voxel.DrainUpdates()
		buffers.ApplyDrain(drained, world.Voxel)
		buffers.Advance()

		win.Clear(mgl32.Vec4{0.05, 0.05, 0.08, 1})
		win.SwapBuffers()
	}
	return nil
}

// applyPlan executes one frame's shiftplanner.Plan: shifting grid layers,
// populating prefetch buffers, and enqueuing the resulting reload work.
func applyPlan(plan *shiftplanner.Plan, world *worldgrid.WorldGrid, lo *loader.Loader, cfg voxelgrid.Config, prevBuffer *[3]shiftplanner.BufferFace) {
	if plan.IsNoop() {
		return
	}

	for axis := 0; axis < 3; axis++ {
		switch plan.Axes[axis].Action {
		case shiftplanner.LoadLower:
			prevBuffer[axis] = shiftplanner.BufferLower
		case shiftplanner.LoadUpper:
			prevBuffer[axis] = shiftplanner.BufferUpper
		case shiftplanner.Shift:
			prevBuffer[axis] = shiftplanner.BufferNone
		}
	}

	deltas := make(map[voxelgrid.LOD][3]int)
	preloaded := make(map[voxelgrid.LOD][3]bool)
	delta := plan.Delta()
	pf := plan.PreloadedFirst()
	if delta != [3]int{} {
		for _, lod := range world.Voxel.LODs() {
			deltas[lod] = delta
			preloaded[lod] = pf
		}
		items := world.Shift(deltas, preloaded, delta)
		enqueueItems(lo, world, items, cfg)
	}

	for _, lod := range world.Voxel.LODs() {
		layer := world.Voxel.Layer(lod)
		loads := shiftplanner.EnumerateBufferLoads(plan, layer.Size()-1)
		for _, bl := range loads {
			upper := bl.Offset[bl.Axis] > 0
			tlcs := layer.LoadBuffer(bl.Axis, upper)
			for _, tlc := range tlcs {
				lo.Enqueue(&loader.Item{
					TLC:      tlc,
					LODs:     map[voxelgrid.LOD]bool{lod: true},
					Priority: loader.Priority(tlc.DistanceTo(layer.StartTLC()), layer.Size()),
				})
			}
		}
	}
}

func enqueueItems(lo *loader.Loader, world *worldgrid.WorldGrid, items []worldgrid.WorldLoadItem, cfg voxelgrid.Config) {
	for _, it := range items {
		maxSize := 0
		for lod := range it.VoxelLODs {
			if layer := world.Voxel.Layer(lod); layer != nil && layer.Size() > maxSize {
				maxSize = layer.Size()
			}
		}
		lo.Enqueue(&loader.Item{
			TLC:        it.TLC,
			LODs:       it.VoxelLODs,
			NeedEntity: it.NeedEntity,
			Priority:   loader.Priority(it.TLC.DistanceTo(voxelgrid.TLCPos{}), maxSize),
		})
	}
}
