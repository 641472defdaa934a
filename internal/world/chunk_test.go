package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkCoordOf(t *testing.T) {
	tests := []struct {
		pos  BlockPos
		want ChunkCoord
	}{
		{BlockPos{0, 0, 0}, ChunkCoord{0, 0, 0}},
		{BlockPos{31, 31, 31}, ChunkCoord{0, 0, 0}},
		{BlockPos{32, 0, -1}, ChunkCoord{1, 0, -1}},
		{BlockPos{-32, -33, 64}, ChunkCoord{-1, -2, 2}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ChunkCoordOf(tt.pos), "pos %v", tt.pos)
	}
}

func TestLocalIndexRoundTrip(t *testing.T) {
	for _, i := range []int{0, 1, ChunkWidth, ChunkLayerSize + 5, ChunkVolume - 1} {
		x, y, z := LocalPos(i)
		assert.Equal(t, i, LocalIndex(x, y, z))
	}
}

func TestFaceOpposite(t *testing.T) {
	for _, f := range Faces {
		dx, dy, dz := f.Offset()
		ox, oy, oz := f.Opposite().Offset()
		assert.Equal(t, [3]int{-dx, -dy, -dz}, [3]int{ox, oy, oz}, f.String())
		assert.Equal(t, f, f.Opposite().Opposite())
	}
}

func TestStatePacking(t *testing.T) {
	s := NewBlockState(7, 42)
	assert.Equal(t, TypeID(7), s.ID())
	assert.Equal(t, uint64(42), s.Meta())
	assert.False(t, s.IsEmpty())

	var air BlockState
	assert.True(t, air.IsEmpty())
	assert.True(t, NewFluidState(0, 0).IsEmpty())
}

func TestChunkLocalAccess(t *testing.T) {
	c := NewChunk(ChunkCoord{1, 0, 0})
	stone := NewBlockState(1, 0)

	assert.True(t, c.SetBlock(1, 2, 3, stone))
	assert.False(t, c.SetBlock(1, 2, 3, stone), "unchanged state")
	assert.Equal(t, stone, c.Block(1, 2, 3))

	assert.False(t, c.SetBlock(-1, 0, 0, stone))
	assert.True(t, c.Block(ChunkWidth, 0, 0).IsEmpty())
	assert.True(t, c.Fluid(0, -1, 0).IsEmpty())
}

func TestChunkWorldAccessOutOfRange(t *testing.T) {
	c := NewChunk(ChunkCoord{1, 0, 0})
	inside := BlockPos{ChunkWidth + 4, 5, 6}
	outside := BlockPos{4, 5, 6}

	changed, err := c.SetBlockAt(inside, NewBlockState(3, 0))
	require.NoError(t, err)
	assert.True(t, changed)
	s, err := c.BlockAt(inside)
	require.NoError(t, err)
	assert.Equal(t, NewBlockState(3, 0), s)

	_, err = c.BlockAt(outside)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = c.FluidAt(outside)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = c.SetBlockAt(outside, NewBlockState(3, 0))
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = c.SetFluidAt(outside, NewFluidState(3, 0))
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestChunkFillAndEmpty(t *testing.T) {
	c := NewChunk(ChunkCoord{})
	assert.True(t, c.IsEmpty())
	c.Fill(NewBlockState(1, 0), 0)
	assert.False(t, c.IsEmpty())
	c.ReadStates(func(blocks []BlockState, fluids []FluidState) {
		assert.Len(t, blocks, ChunkVolume)
		assert.Len(t, fluids, ChunkVolume)
		assert.Equal(t, NewBlockState(1, 0), blocks[ChunkVolume-1])
	})
}

func TestChunkProxyHandle(t *testing.T) {
	c := NewChunk(ChunkCoord{})
	assert.False(t, c.ProxyHandle().Valid())
	c.SetProxyHandle(ProxyHandle{Index: 3, Gen: 1})
	assert.Equal(t, ProxyHandle{Index: 3, Gen: 1}, c.ProxyHandle())
}

func TestChunkStoreFarChunks(t *testing.T) {
	cs := NewChunkStore()
	require.True(t, cs.AddChunk(NewChunk(ChunkCoord{0, 0, 0})))
	require.True(t, cs.AddChunk(NewChunk(ChunkCoord{5, 0, 0})))
	assert.False(t, cs.AddChunk(NewChunk(ChunkCoord{0, 0, 0})))
	assert.Equal(t, uint64(2), cs.GetModCount())

	assert.Equal(t, []ChunkCoord{{5, 0, 0}}, cs.FarChunks(0, 0, 3))
	assert.NotNil(t, cs.RemoveChunk(ChunkCoord{5, 0, 0}))
	assert.Nil(t, cs.RemoveChunk(ChunkCoord{5, 0, 0}))
	assert.Equal(t, 1, cs.Len())
	assert.Same(t, cs.LookupChunk(ChunkCoord{}), cs.ChunkAt(BlockPos{31, 0, 31}))
}
