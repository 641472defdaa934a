package meshing

import "chunkbake/internal/world"

// View answers world-space voxel queries against a Snapshot. Positions
// outside the captured region read as empty.
type View struct {
	snap *Snapshot
	min  world.BlockPos
}

// Origin returns the world position of the snapshotted chunk's first voxel.
func (v View) Origin() world.BlockPos { return v.snap.origin }

func (v View) index(p world.BlockPos) (int, bool) {
	x, y, z := p.X-v.min.X, p.Y-v.min.Y, p.Z-v.min.Z
	if x < 0 || x >= SnapshotWidth || y < 0 || y >= SnapshotWidth || z < 0 || z >= SnapshotWidth {
		return 0, false
	}
	return snapshotIndex(x, y, z), true
}

// contains reports whether p lies inside the captured region.
func (v View) contains(p world.BlockPos) bool {
	_, ok := v.index(p)
	return ok
}

// BlockAt returns the block state at p.
func (v View) BlockAt(p world.BlockPos) world.BlockState {
	i, ok := v.index(p)
	if !ok {
		return 0
	}
	return v.snap.blocks[i]
}

// FluidAt returns the fluid state at p.
func (v View) FluidAt(p world.BlockPos) world.FluidState {
	i, ok := v.index(p)
	if !ok {
		return 0
	}
	return v.snap.fluids[i]
}
