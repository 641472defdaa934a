package meshing_test

import (
	"sync/atomic"
	"testing"
	"time"

	"chunkbake/internal/config"
	"chunkbake/internal/meshing"
	"chunkbake/internal/registry"
	"chunkbake/internal/world"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type proxy struct {
	mesh  *meshing.MeshStore
	dirty atomic.Int32
}

func (p *proxy) Mesh() *meshing.MeshStore { return p.mesh }
func (p *proxy) MarkDirty()               { p.dirty.Add(1) }

func newBakery(t *testing.T, lookup meshing.ChunkLookup) *meshing.Bakery {
	t.Helper()
	cfg := config.DefaultBakery()
	cfg.Workers = 2
	cfg.IdleWait = 10 * time.Millisecond
	b, err := meshing.NewBakery(cfg, registry.NewDefault(), lookup)
	require.NoError(t, err)
	t.Cleanup(b.Close)
	return b
}

func bakeOnce(t *testing.T, b *meshing.Bakery, ch *world.Chunk) *proxy {
	t.Helper()
	p := &proxy{mesh: meshing.NewMeshStore()}
	ch.SetProxyHandle(b.Proxies().Register(p))
	require.NoError(t, b.Enqueue(ch, world.PriorityPlayerInteract, false))
	require.Eventually(t, func() bool { return p.dirty.Load() > 0 }, 10*time.Second, time.Millisecond)
	return p
}

func solid(coord world.ChunkCoord) *world.Chunk {
	ch := world.NewChunk(coord)
	ch.Fill(world.NewBlockState(registry.Stone, 0), 0)
	return ch
}

func TestBakeSolidChunkSurroundedIsEmpty(t *testing.T) {
	store := world.NewChunkStore()
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				store.AddChunk(solid(world.ChunkCoord{X: dx, Y: dy, Z: dz}))
			}
		}
	}
	b := newBakery(t, store)
	p := bakeOnce(t, b, store.LookupChunk(world.ChunkCoord{}))

	for _, l := range meshing.Layers {
		assert.Zero(t, p.mesh.LayerLen(l), l.String())
	}
	assert.True(t, p.mesh.HasFullBake())
}

func TestBakeSolidChunkAloneExposesBoundary(t *testing.T) {
	store := world.NewChunkStore()
	ch := solid(world.ChunkCoord{X: 2, Y: -1, Z: 5})
	store.AddChunk(ch)
	b := newBakery(t, store)
	p := bakeOnce(t, b, ch)

	assert.Equal(t, 6*world.ChunkWidth*world.ChunkWidth, p.mesh.LayerLen(meshing.LayerOpaque))
	assert.Equal(t, 6*world.ChunkWidth*world.ChunkWidth, p.mesh.BlockQuadCount(meshing.LayerOpaque))
	assert.Zero(t, p.mesh.LayerLen(meshing.LayerCutout))
	assert.Zero(t, p.mesh.LayerLen(meshing.LayerTransparent))
}

func TestBakeMixedLayers(t *testing.T) {
	store := world.NewChunkStore()
	ch := world.NewChunk(world.ChunkCoord{})
	ch.SetBlock(1, 1, 1, world.NewBlockState(registry.Stone, 0))
	ch.SetBlock(1, 2, 1, world.NewBlockState(registry.TallGrass, 0))
	ch.SetBlock(5, 5, 5, world.NewBlockState(registry.Glass, 0))
	ch.SetBlock(6, 5, 5, world.NewBlockState(registry.Glass, 0))
	ch.SetFluid(9, 9, 9, world.NewFluidState(registry.Water, 0))
	store.AddChunk(ch)

	b := newBakery(t, store)
	p := bakeOnce(t, b, ch)

	assert.Equal(t, 6, p.mesh.LayerLen(meshing.LayerOpaque))
	assert.Equal(t, 2, p.mesh.LayerLen(meshing.LayerCutout))
	// two glass cubes share a hidden face pair, plus six water faces
	assert.Equal(t, 10+6, p.mesh.LayerLen(meshing.LayerTransparent))
	assert.Equal(t, 10, p.mesh.BlockQuadCount(meshing.LayerTransparent))
}

func TestBakeWaterFluidOnlyKeepsGlassPrefix(t *testing.T) {
	store := world.NewChunkStore()
	ch := world.NewChunk(world.ChunkCoord{})
	ch.SetBlock(5, 5, 5, world.NewBlockState(registry.Glass, 0))
	ch.SetFluid(9, 9, 9, world.NewFluidState(registry.Water, 0))
	store.AddChunk(ch)

	b := newBakery(t, store)
	p := bakeOnce(t, b, ch)
	prefix := p.mesh.Digest(meshing.LayerTransparent, 0, 6)
	suffixes := []uint64{p.mesh.Digest(meshing.LayerTransparent, 6, 12)}

	for i := range 3 {
		ch.SetFluid(9, 9, 9, world.NewFluidState(registry.Water, uint64(i+1)))
		require.NoError(t, b.Enqueue(ch, world.PriorityFluidUpdate, true))
		want := int32(i + 2)
		require.Eventually(t, func() bool { return p.dirty.Load() >= want }, 10*time.Second, time.Millisecond)
		assert.Equal(t, prefix, p.mesh.Digest(meshing.LayerTransparent, 0, 6))
		assert.Equal(t, 12, p.mesh.LayerLen(meshing.LayerTransparent))
		suffixes = append(suffixes, p.mesh.Digest(meshing.LayerTransparent, 6, 12))
	}
	// each level lowers the surface, so every rebake changes the water quads
	for i := 1; i < len(suffixes); i++ {
		assert.NotEqual(t, suffixes[i-1], suffixes[i], "level %d", i)
	}
}

func BenchmarkBakeGeneratedChunk(b *testing.B) {
	reg := registry.NewDefault()
	w := world.New()
	gen := world.NewGenerator(1, reg.Palette())
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				ch := world.NewChunk(world.ChunkCoord{X: dx, Y: dy, Z: dz})
				gen.PopulateChunk(ch)
				w.LoadChunk(ch)
			}
		}
	}
	cfg := config.DefaultBakery()
	cfg.Workers = 1
	bk, err := meshing.NewBakery(cfg, reg, w)
	require.NoError(b, err)
	defer bk.Close()

	ch := w.LookupChunk(world.ChunkCoord{})
	p := &proxy{mesh: meshing.NewMeshStore()}
	ch.SetProxyHandle(bk.Proxies().Register(p))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		want := p.dirty.Load() + 1
		if err := bk.Enqueue(ch, world.PriorityPlayerInteract, false); err != nil {
			b.Fatal(err)
		}
		for p.dirty.Load() < want {
			time.Sleep(50 * time.Microsecond)
		}
	}
}
