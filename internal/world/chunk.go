package world

import (
	"errors"
	"fmt"
	"sync"
)

// ErrOutOfRange is returned by the world-position accessors of a Chunk when
// the position lies in a different chunk.
var ErrOutOfRange = errors.New("position out of chunk range")

// Chunk is a ChunkWidth³ cube of block and fluid states.
type Chunk struct {
	coord  ChunkCoord
	origin BlockPos

	mu     sync.RWMutex
	blocks []BlockState
	fluids []FluidState
	proxy  ProxyHandle
}

// NewChunk creates an empty chunk at the specified chunk coordinates
func NewChunk(coord ChunkCoord) *Chunk {
	return &Chunk{
		coord:  coord,
		origin: coord.Origin(),
		blocks: make([]BlockState, ChunkVolume),
		fluids: make([]FluidState, ChunkVolume),
	}
}

func (c *Chunk) Coord() ChunkCoord { return c.coord }

// Origin returns the world position of local voxel (0,0,0).
func (c *Chunk) Origin() BlockPos { return c.origin }

func inBounds(x, y, z int) bool {
	return x >= 0 && x < ChunkWidth && y >= 0 && y < ChunkWidth && z >= 0 && z < ChunkWidth
}

// Block returns the block state at local coordinates, or air outside the chunk.
func (c *Chunk) Block(x, y, z int) BlockState {
	if !inBounds(x, y, z) {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocks[LocalIndex(x, y, z)]
}

// Fluid returns the fluid state at local coordinates, or no fluid outside the chunk.
func (c *Chunk) Fluid(x, y, z int) FluidState {
	if !inBounds(x, y, z) {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fluids[LocalIndex(x, y, z)]
}

// SetBlock sets the block state at local coordinates and reports whether it changed.
func (c *Chunk) SetBlock(x, y, z int, s BlockState) bool {
	if !inBounds(x, y, z) {
		return false
	}
	i := LocalIndex(x, y, z)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.blocks[i] == s {
		return false
	}
	c.blocks[i] = s
	return true
}

// SetFluid sets the fluid state at local coordinates and reports whether it changed.
func (c *Chunk) SetFluid(x, y, z int, s FluidState) bool {
	if !inBounds(x, y, z) {
		return false
	}
	i := LocalIndex(x, y, z)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fluids[i] == s {
		return false
	}
	c.fluids[i] = s
	return true
}

func (c *Chunk) local(p BlockPos) (x, y, z int, err error) {
	r := p.Sub(c.origin)
	if !inBounds(r.X, r.Y, r.Z) {
		return 0, 0, 0, fmt.Errorf("chunk %v does not contain %v: %w", c.coord, p, ErrOutOfRange)
	}
	return r.X, r.Y, r.Z, nil
}

// BlockAt returns the block state at a world position inside this chunk.
func (c *Chunk) BlockAt(p BlockPos) (BlockState, error) {
	x, y, z, err := c.local(p)
	if err != nil {
		return 0, err
	}
	return c.Block(x, y, z), nil
}

// FluidAt returns the fluid state at a world position inside this chunk.
func (c *Chunk) FluidAt(p BlockPos) (FluidState, error) {
	x, y, z, err := c.local(p)
	if err != nil {
		return 0, err
	}
	return c.Fluid(x, y, z), nil
}

// SetBlockAt sets the block state at a world position inside this chunk.
func (c *Chunk) SetBlockAt(p BlockPos, s BlockState) (bool, error) {
	x, y, z, err := c.local(p)
	if err != nil {
		return false, err
	}
	return c.SetBlock(x, y, z, s), nil
}

// SetFluidAt sets the fluid state at a world position inside this chunk.
func (c *Chunk) SetFluidAt(p BlockPos, s FluidState) (bool, error) {
	x, y, z, err := c.local(p)
	if err != nil {
		return false, err
	}
	return c.SetFluid(x, y, z, s), nil
}

// Fill sets every voxel of the chunk to the given states.
func (c *Chunk) Fill(b BlockState, f FluidState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.blocks {
		c.blocks[i] = b
		c.fluids[i] = f
	}
}

// ReadStates calls fn with the chunk's flat state arrays while holding the
// read lock. fn must not retain the slices.
func (c *Chunk) ReadStates(fn func(blocks []BlockState, fluids []FluidState)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn(c.blocks, c.fluids)
}

// IsEmpty reports whether the chunk holds no blocks and no fluids.
func (c *Chunk) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.blocks {
		if c.blocks[i] != 0 || c.fluids[i] != 0 {
			return false
		}
	}
	return true
}

// ProxyHandle returns the handle of the render proxy attached to this chunk.
func (c *Chunk) ProxyHandle() ProxyHandle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.proxy
}

// SetProxyHandle attaches a render proxy handle to the chunk.
func (c *Chunk) SetProxyHandle(h ProxyHandle) {
	c.mu.Lock()
	c.proxy = h
	c.mu.Unlock()
}
