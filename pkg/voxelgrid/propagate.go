package voxelgrid

// Coarsen fills coarseStorage from fineStorage's already-populated voxels,
// one LOD apart or more, via the majority-visible rule (spec.md §4.B, §9).
//
// A coarse voxel is non-empty iff the fraction of its covered finer voxels
// that are visible strictly exceeds fillThreshold (invariant I3; this picks
// the strict ">" reading over §4.B's "fewer than" phrasing, since only ">"
// reproduces spec.md §8 scenario S6's exact-half-visible boundary case).
// For ID-carrying LODs, the coarse voxel's ID is the argmax over visible
// finer voxel IDs (ties broken by lowest ID value, for determinism).
func Coarsen(coarseLOD, fineLOD LOD, coarse, fine *ChunkStorage, cfg Config, fillThreshold float64) {
	axis := coarseLOD.VoxelsPerAxis(cfg)
	var counts map[byte]int
	if fine.IDs != nil {
		counts = make(map[byte]int, 8)
	}
	for x := 0; x < axis; x++ {
		for y := 0; y < axis; y++ {
			for z := 0; z < axis; z++ {
				coarsePos := [3]int{x, y, z}
				idx := coarseLOD.VoxelIndex(coarsePos, cfg)
				box := coarseLOD.CoveredBox(fineLOD, coarsePos, cfg)
				total := box.Count()
				visible := 0
				for k := range counts {
					delete(counts, k)
				}
				box.ForEachCovered(func(p [3]int) {
					fi := fineLOD.VoxelIndex(p, cfg)
					if fine.Bitmask.Get(fi) {
						visible++
						if counts != nil {
							counts[fine.IDs.Get(fi)]++
						}
					}
				})
				isVisible := float64(visible) > fillThreshold*float64(total)
				coarse.Bitmask.Set(idx, isVisible)
				if coarse.IDs != nil {
					if isVisible {
						coarse.IDs.Set(idx, argmax(counts))
					} else {
						coarse.IDs.Set(idx, 0)
					}
				}
			}
		}
	}
}

func argmax(counts map[byte]int) byte {
	var best byte
	bestCount := -1
	for id, c := range counts {
		if c > bestCount || (c == bestCount && id < best) {
			best, bestCount = id, c
		}
	}
	return best
}
