package registry

import (
	"testing"

	"chunkbake/internal/meshing"
	"chunkbake/internal/world"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func block(id world.TypeID) world.BlockState { return world.NewBlockState(id, 0) }

func TestDefaultIDs(t *testing.T) {
	r := NewDefault()
	for name, want := range map[string]world.TypeID{
		"air": Air, "stone": Stone, "dirt": Dirt, "grass": Grass, "glass": Glass, "tall_grass": TallGrass,
	} {
		id, ok := r.BlockID(name)
		require.True(t, ok, name)
		assert.Equal(t, want, id, name)
		assert.Equal(t, name, r.Block(id).Name())
	}
	id, ok := r.FluidID("water")
	require.True(t, ok)
	assert.Equal(t, Water, id)

	_, err := r.RegisterBlock(Cube{ID: "stone"})
	assert.Error(t, err)
	_, err = r.RegisterFluid(NewLiquid(r, "lava", meshing.LayerOpaque, 0))
	assert.Error(t, err)
}

func TestUnknownIDsFallBackToEmpty(t *testing.T) {
	r := NewDefault()
	assert.Equal(t, "air", r.Block(999).Name())
	assert.Equal(t, "empty", r.Fluid(999).Name())
	assert.False(t, r.HasVisibleGeometry(block(999)))
}

func TestFaceCulling(t *testing.T) {
	r := NewDefault()
	tests := []struct {
		name     string
		s, n     world.BlockState
		expected bool
	}{
		{"stone against stone", block(Stone), block(Stone), true},
		{"stone against air", block(Stone), 0, false},
		{"stone against glass", block(Stone), block(Glass), false},
		{"glass against stone", block(Glass), block(Stone), true},
		{"glass against glass", block(Glass), block(Glass), true},
		{"stone against tall grass", block(Stone), block(TallGrass), false},
		{"dirt against grass", block(Dirt), block(Grass), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, f := range world.Faces {
				assert.Equal(t, tt.expected, r.IsFaceCulledByNeighbor(tt.s, f, tt.n), f.String())
			}
		})
	}
}

func TestFaceQuadsFaceOutward(t *testing.T) {
	for _, f := range world.Faces {
		q := faceQuad(world.BlockPos{X: 3, Y: -2, Z: 7}, f, 1)
		n := q[1].Sub(q[0]).Cross(q[2].Sub(q[0])).Normalize()
		dx, dy, dz := f.Offset()
		assert.InDelta(t, float32(dx), n[0], 1e-6, f.String())
		assert.InDelta(t, float32(dy), n[1], 1e-6, f.String())
		assert.InDelta(t, float32(dz), n[2], 1e-6, f.String())
	}
}

func snapshotView(t *testing.T, setup func(ch *world.Chunk)) meshing.View {
	t.Helper()
	ch := world.NewChunk(world.ChunkCoord{})
	setup(ch)
	return meshing.NewSnapshot(ch, nil).View()
}

func TestCubeEmitsOnlyInItsLayer(t *testing.T) {
	r := NewDefault()
	v := snapshotView(t, func(*world.Chunk) {})
	pos := world.BlockPos{X: 1, Y: 1, Z: 1}

	q := r.AppendFaceGeometry(nil, block(Grass), pos, world.FaceTop, meshing.LayerOpaque, v)
	require.Len(t, q, 1)
	assert.Equal(t, RGBA(125, 200, 92, 255), q[0].Color)
	assert.Empty(t, r.AppendFaceGeometry(nil, block(Grass), pos, world.FaceTop, meshing.LayerTransparent, v))
	assert.Len(t, r.AppendFaceGeometry(nil, block(Glass), pos, world.FaceEast, meshing.LayerTransparent, v), 1)

	side := r.AppendFaceGeometry(nil, block(Grass), pos, world.FaceBottom, meshing.LayerOpaque, v)
	assert.Equal(t, shade(RGBA(134, 96, 67, 255), world.FaceBottom), side[0].Color)
}

func TestCrossEmitsInteriorCutout(t *testing.T) {
	r := NewDefault()
	v := snapshotView(t, func(*world.Chunk) {})
	pos := world.BlockPos{X: 4, Y: 4, Z: 4}
	assert.Len(t, r.AppendInteriorGeometry(nil, block(TallGrass), pos, meshing.LayerCutout, v), 2)
	assert.Empty(t, r.AppendInteriorGeometry(nil, block(TallGrass), pos, meshing.LayerOpaque, v))
	assert.Empty(t, r.AppendInteriorGeometry(nil, block(Stone), pos, meshing.LayerCutout, v))
}

func TestLiquidGeometry(t *testing.T) {
	r := NewDefault()
	water := world.NewFluidState(Water, 0)

	t.Run("isolated cell", func(t *testing.T) {
		v := snapshotView(t, func(ch *world.Chunk) { ch.SetFluid(5, 5, 5, water) })
		q := r.AppendFluidGeometry(nil, water, world.BlockPos{X: 5, Y: 5, Z: 5}, meshing.LayerTransparent, v)
		require.Len(t, q, 6)
		for _, quad := range q {
			for _, c := range quad.Corners {
				assert.LessOrEqual(t, c[1], 5+Height(0))
			}
		}
		assert.Empty(t, r.AppendFluidGeometry(nil, water, world.BlockPos{X: 5, Y: 5, Z: 5}, meshing.LayerOpaque, v))
	})

	t.Run("neighbours hide faces", func(t *testing.T) {
		v := snapshotView(t, func(ch *world.Chunk) {
			ch.SetFluid(5, 5, 5, world.NewFluidState(Water, 3))
			ch.SetFluid(6, 5, 5, water)
			ch.SetBlock(4, 5, 5, block(Stone))
			ch.SetBlock(5, 4, 5, block(Glass))
		})
		q := r.AppendFluidGeometry(nil, world.NewFluidState(Water, 3), world.BlockPos{X: 5, Y: 5, Z: 5}, meshing.LayerTransparent, v)
		// east is water, west is stone; glass below does not hide the bottom
		assert.Len(t, q, 4)
	})

	t.Run("submerged cell is full height", func(t *testing.T) {
		v := snapshotView(t, func(ch *world.Chunk) {
			ch.SetFluid(5, 5, 5, world.NewFluidState(Water, 6))
			ch.SetFluid(5, 6, 5, water)
		})
		q := r.AppendFluidGeometry(nil, world.NewFluidState(Water, 6), world.BlockPos{X: 5, Y: 5, Z: 5}, meshing.LayerTransparent, v)
		require.Len(t, q, 5)
		top := float32(0)
		for _, quad := range q {
			for _, c := range quad.Corners {
				top = max(top, c[1])
			}
		}
		assert.Equal(t, float32(6), top)
	})
}

func TestLiquidHeight(t *testing.T) {
	assert.Greater(t, Height(0), Height(1))
	assert.Equal(t, Height(MaxLevel), Height(100))
	assert.Positive(t, Height(MaxLevel))
}

func TestPalette(t *testing.T) {
	p := NewDefault().Palette()
	assert.Equal(t, Stone, p.Stone.ID())
	assert.Equal(t, Water, p.Water.ID())
	assert.Equal(t, TallGrass, p.TallGrass.ID())
}
