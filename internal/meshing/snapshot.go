package meshing

import (
	"chunkbake/internal/profiling"
	"chunkbake/internal/world"
)

const (
	// Padding is the number of voxels copied from each neighbour.
	Padding = 2
	// SnapshotWidth is the edge length of the padded snapshot.
	SnapshotWidth = world.ChunkWidth + 2*Padding

	snapshotLayer  = SnapshotWidth * SnapshotWidth
	snapshotVolume = snapshotLayer * SnapshotWidth
)

// Snapshot is an immutable copy of a chunk and a Padding-wide border taken
// from its 26 neighbours. Border voxels of absent neighbours are empty.
type Snapshot struct {
	coord  world.ChunkCoord
	origin world.BlockPos
	proxy  world.ProxyHandle
	blocks []world.BlockState
	fluids []world.FluidState
}

// span returns the source range along one axis for neighbour offset d and
// where it lands in the padded array.
func span(d int) (src, n, dst int) {
	switch d {
	case -1:
		return world.ChunkWidth - Padding, Padding, 0
	case 1:
		return 0, Padding, Padding + world.ChunkWidth
	default:
		return 0, world.ChunkWidth, Padding
	}
}

func snapshotIndex(x, y, z int) int {
	return z*snapshotLayer + y*SnapshotWidth + x
}

// NewSnapshot copies ch and the border of its loaded neighbours. Each
// chunk's read lock is held only while that chunk is copied.
func NewSnapshot(ch *world.Chunk, lookup ChunkLookup) *Snapshot {
	defer profiling.Track("meshing.NewSnapshot")()

	s := &Snapshot{
		coord:  ch.Coord(),
		origin: ch.Origin(),
		proxy:  ch.ProxyHandle(),
		blocks: make([]world.BlockState, snapshotVolume),
		fluids: make([]world.FluidState, snapshotVolume),
	}

	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				src := ch
				if dx != 0 || dy != 0 || dz != 0 {
					if lookup == nil {
						continue
					}
					src = lookup.LookupChunk(s.coord.Offset(dx, dy, dz))
					if src == nil {
						continue
					}
				}
				s.copyFrom(src, dx, dy, dz)
			}
		}
	}
	return s
}

func (s *Snapshot) copyFrom(src *world.Chunk, dx, dy, dz int) {
	sx, nx, tx := span(dx)
	sy, ny, ty := span(dy)
	sz, nz, tz := span(dz)

	src.ReadStates(func(blocks []world.BlockState, fluids []world.FluidState) {
		for z := range nz {
			for y := range ny {
				from := world.LocalIndex(sx, sy+y, sz+z)
				to := snapshotIndex(tx, ty+y, tz+z)
				copy(s.blocks[to:to+nx], blocks[from:from+nx])
				copy(s.fluids[to:to+nx], fluids[from:from+nx])
			}
		}
	})
}

// Coord returns the coordinate of the snapshotted chunk.
func (s *Snapshot) Coord() world.ChunkCoord { return s.coord }

// Origin returns the world position of the chunk's local (0,0,0) voxel.
func (s *Snapshot) Origin() world.BlockPos { return s.origin }

// View returns a bounded world-space view of the snapshot.
func (s *Snapshot) View() View {
	return View{snap: s, min: s.origin.Add(-Padding, -Padding, -Padding)}
}
