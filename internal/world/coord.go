package world

const (
	// Chunk dimensions (chunks are cubes)
	ChunkWidth     = 32
	ChunkLayerSize = ChunkWidth * ChunkWidth
	ChunkVolume    = ChunkLayerSize * ChunkWidth
)

// ChunkCoord identifies a chunk by its position in chunk units.
type ChunkCoord struct {
	X, Y, Z int
}

// BlockPos is a voxel position in world coordinates.
type BlockPos struct {
	X, Y, Z int
}

// Origin returns the world-space position of the chunk's (0,0,0) voxel.
func (c ChunkCoord) Origin() BlockPos {
	return BlockPos{X: c.X * ChunkWidth, Y: c.Y * ChunkWidth, Z: c.Z * ChunkWidth}
}

// Offset returns the coordinate shifted by the given number of chunks.
func (c ChunkCoord) Offset(dx, dy, dz int) ChunkCoord {
	return ChunkCoord{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

// Neighbor returns the chunk sharing the given face.
func (c ChunkCoord) Neighbor(f Face) ChunkCoord {
	dx, dy, dz := f.Offset()
	return c.Offset(dx, dy, dz)
}

// ChunkCoordOf returns the chunk containing the world position.
func ChunkCoordOf(p BlockPos) ChunkCoord {
	return ChunkCoord{
		X: floorDiv(p.X, ChunkWidth),
		Y: floorDiv(p.Y, ChunkWidth),
		Z: floorDiv(p.Z, ChunkWidth),
	}
}

// Add returns p offset by (dx, dy, dz).
func (p BlockPos) Add(dx, dy, dz int) BlockPos {
	return BlockPos{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}
}

// Sub returns the component-wise difference p - o.
func (p BlockPos) Sub(o BlockPos) BlockPos {
	return BlockPos{X: p.X - o.X, Y: p.Y - o.Y, Z: p.Z - o.Z}
}

// Step returns the neighbouring position across face f.
func (p BlockPos) Step(f Face) BlockPos {
	dx, dy, dz := f.Offset()
	return p.Add(dx, dy, dz)
}

// LocalIndex converts chunk-local coordinates to a flat index (x fastest, then y, then z).
func LocalIndex(x, y, z int) int {
	return z*ChunkLayerSize + y*ChunkWidth + x
}

// LocalPos is the inverse of LocalIndex.
func LocalPos(i int) (x, y, z int) {
	return i % ChunkWidth, (i / ChunkWidth) % ChunkWidth, i / ChunkLayerSize
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
