package voxelgrid

import "encoding/binary"

// bitmaskWord is one 128-bit little-endian word of a Bitmask, split into two
// 64-bit halves since Go has no native 128-bit integer type. Lo holds bits
// 0-63, Hi holds bits 64-127.
type bitmaskWord struct {
	Lo, Hi uint64
}

func (w bitmaskWord) bit(i int) bool {
	if i < 64 {
		return w.Lo&(uint64(1)<<uint(i)) != 0
	}
	return w.Hi&(uint64(1)<<uint(i-64)) != 0
}

func (w *bitmaskWord) setBit(i int, v bool) {
	if i < 64 {
		if v {
			w.Lo |= uint64(1) << uint(i)
		} else {
			w.Lo &^= uint64(1) << uint(i)
		}
		return
	}
	i -= 64
	if v {
		w.Hi |= uint64(1) << uint(i)
	} else {
		w.Hi &^= uint64(1) << uint(i)
	}
}

func (w bitmaskWord) appendBytes(dst []byte) []byte {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], w.Lo)
	binary.LittleEndian.PutUint64(buf[8:16], w.Hi)
	return append(dst, buf[:]...)
}

// Bitmask is a packed, one-bit-per-voxel presence mask for one chunk's data
// at one LOD, stored as 128-bit little-endian words (spec.md §4.C).
type Bitmask struct {
	words []bitmaskWord
	n     int // number of voxels represented
}

// NewBitmask allocates a bitmask able to represent n voxels.
func NewBitmask(n int) *Bitmask {
	return &Bitmask{words: make([]bitmaskWord, (n+127)/128), n: n}
}

// Get reports whether voxel i is non-empty.
func (b *Bitmask) Get(i int) bool {
	return b.words[i/128].bit(i % 128)
}

// Set marks voxel i non-empty or empty.
func (b *Bitmask) Set(i int, v bool) {
	b.words[i/128].setBit(i%128, v)
}

// Len returns the number of voxels represented.
func (b *Bitmask) Len() int { return b.n }

// Bytes serializes the whole bitmask to its bit-exact GPU layout: contiguous
// 128-bit little-endian words (spec.md §6).
func (b *Bitmask) Bytes() []byte {
	out := make([]byte, 0, len(b.words)*16)
	for _, w := range b.words {
		out = w.appendBytes(out)
	}
	return out
}

// RegionBytes serializes the words touched by the voxel range
// [firstVoxel, firstVoxel+count) to bytes, word-aligned, matching how
// UpdateLog regions are later translated into GPU buffer copies.
func (b *Bitmask) RegionBytes(firstVoxel, count int) []byte {
	firstWord := firstVoxel / 128
	lastWord := (firstVoxel + count - 1) / 128
	out := make([]byte, 0, (lastWord-firstWord+1)*16)
	for i := firstWord; i <= lastWord && i < len(b.words); i++ {
		out = b.words[i].appendBytes(out)
	}
	return out
}

// RegionByteOffset returns the byte offset of the first word touched by
// voxel firstVoxel, for callers (e.g. GPU staging) that need to know where
// RegionBytes' output belongs within the full serialized bitmask.
func (b *Bitmask) RegionByteOffset(firstVoxel int) int {
	return (firstVoxel / 128) * 16
}

// VoxelIDs is a one-byte-per-voxel ID array, present only on LODs configured
// with HasVoxelIDs (spec.md §4.C, §9's BitmaskOnly/BitmaskAndIDs split).
type VoxelIDs struct {
	ids []byte
}

// NewVoxelIDs allocates an ID array for n voxels, initialized to zero (air).
func NewVoxelIDs(n int) *VoxelIDs {
	return &VoxelIDs{ids: make([]byte, n)}
}

// Get returns the voxel ID at index i.
func (v *VoxelIDs) Get(i int) byte { return v.ids[i] }

// Set assigns the voxel ID at index i.
func (v *VoxelIDs) Set(i int, id byte) { v.ids[i] = id }

// Len returns the number of voxels represented.
func (v *VoxelIDs) Len() int { return len(v.ids) }

// Bytes returns the whole ID array; it is already the bit-exact GPU layout
// (contiguous bytes).
func (v *VoxelIDs) Bytes() []byte { return v.ids }

// RegionBytes returns the bytes for [firstVoxel, firstVoxel+count).
func (v *VoxelIDs) RegionBytes(firstVoxel, count int) []byte {
	end := firstVoxel + count
	if end > len(v.ids) {
		end = len(v.ids)
	}
	return v.ids[firstVoxel:end]
}

// UpdateRegion is one dirtied range recorded since the last drain
// (spec.md §3, §4.C): a contiguous slice of a chunk's bitmask/ID array.
type UpdateRegion struct {
	ChunkIndex  int
	FirstVoxel  int
	Count       int
}

// UpdateLog accumulates UpdateRegions for one LOD layer until drained
// (spec.md §4.C, invariant I4/I5).
type UpdateLog struct {
	regions []UpdateRegion
}

// Record appends a region to the log. Adjacent/overlapping regions are not
// merged: the log is a faithful record of every write, so re-applying it to
// a fresh copy reproduces the live buffer byte-for-byte (invariant I4) even
// if some bytes are copied more than once.
func (u *UpdateLog) Record(chunkIndex, firstVoxel, count int) {
	if count <= 0 {
		return
	}
	u.regions = append(u.regions, UpdateRegion{ChunkIndex: chunkIndex, FirstVoxel: firstVoxel, Count: count})
}

// Drain returns and clears the accumulated regions.
func (u *UpdateLog) Drain() []UpdateRegion {
	out := u.regions
	u.regions = nil
	return out
}

// Len reports how many regions are pending.
func (u *UpdateLog) Len() int { return len(u.regions) }
