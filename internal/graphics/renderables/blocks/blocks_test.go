package blocks

import (
	"slices"
	"testing"
	"time"

	"chunkbake/internal/config"
	"chunkbake/internal/meshing"
	"chunkbake/internal/registry"
	"chunkbake/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	world   *world.World
	bakery  *meshing.Bakery
	blocks  *Blocks
	factory *MemoryFactory
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	w := world.New()
	cfg := config.DefaultBakery()
	cfg.Workers = 2
	cfg.IdleWait = 10 * time.Millisecond
	b, err := meshing.NewBakery(cfg, registry.NewDefault(), w)
	require.NoError(t, err)
	t.Cleanup(b.Close)

	f := &MemoryFactory{}
	bl := New(b.Proxies(), b.Pool(), f)
	w.SetListener(bl)
	return &harness{world: w, bakery: b, blocks: bl, factory: f}
}

// load installs a chunk and waits until its first bake has landed.
func (h *harness) load(t *testing.T, ch *world.Chunk) *RenderChunk {
	t.Helper()
	require.True(t, h.world.LoadChunk(ch))
	_, err := h.world.Flush(h.bakery)
	require.NoError(t, err)
	rc := h.blocks.Lookup(ch.Coord())
	require.NotNil(t, rc)
	require.Eventually(t, rc.Dirty, 5*time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return h.bakery.QueuedTasks() == 0 }, 5*time.Second, time.Millisecond)
	return rc
}

func sampleChunk(coord world.ChunkCoord) *world.Chunk {
	ch := world.NewChunk(coord)
	ch.SetBlock(1, 1, 1, world.NewBlockState(registry.Stone, 0))
	ch.SetBlock(5, 5, 5, world.NewBlockState(registry.TallGrass, 0))
	return ch
}

func TestRenderChunkSyncOnlyWhenDirty(t *testing.T) {
	f := &MemoryFactory{}
	rc := NewRenderChunk(world.ChunkCoord{}, f)

	assert.False(t, rc.Sync())
	rc.MarkDirty()
	assert.True(t, rc.Sync())
	assert.False(t, rc.Sync())
	// Empty layers never allocate device buffers.
	assert.Empty(t, f.Buffers)
	for _, l := range meshing.Layers {
		assert.False(t, rc.ShouldDrawLayer(l))
	}
}

func TestLoadedChunkIsSyncedAndDrawnPerLayer(t *testing.T) {
	h := newHarness(t)
	ch := sampleChunk(world.ChunkCoord{})
	h.load(t, ch)
	assert.True(t, ch.ProxyHandle().Valid())

	var order []meshing.RenderLayer
	st := h.blocks.Draw(nil, func(l meshing.RenderLayer) { order = append(order, l) })

	assert.Equal(t, meshing.Layers[:], order)
	assert.Equal(t, 1, st.Chunks)
	assert.Equal(t, 1, st.Visible)
	assert.Equal(t, 1, st.Synced)
	assert.Equal(t, [meshing.NumLayers]int{1, 1, 0}, st.Draws)

	require.Len(t, h.factory.Buffers, 2)
	opaque, cutout := h.factory.Buffers[0], h.factory.Buffers[1]
	assert.Equal(t, 6, opaque.Len())
	assert.Equal(t, 2, cutout.Len())
	assert.Equal(t, 1, opaque.Draws())

	// Nothing new was baked: the next frame draws without uploading.
	st = h.blocks.Draw(nil, nil)
	assert.Zero(t, st.Synced)
	assert.Equal(t, 1, opaque.Uploads())
	assert.Equal(t, 2, opaque.Draws())
}

func TestEditIsUploadedOnNextFrame(t *testing.T) {
	h := newHarness(t)
	rc := h.load(t, sampleChunk(world.ChunkCoord{}))
	h.blocks.Draw(nil, nil)

	require.NoError(t, h.world.SetBlock(world.BlockPos{X: 10, Y: 10, Z: 10}, world.NewBlockState(registry.Stone, 0), world.PriorityPlayerInteract))
	_, err := h.world.Flush(h.bakery)
	require.NoError(t, err)
	require.Eventually(t, rc.Dirty, 5*time.Second, time.Millisecond)

	st := h.blocks.Draw(nil, nil)
	assert.Equal(t, 1, st.Synced)
	assert.Equal(t, 12, h.factory.Buffers[0].Len())
	assert.Equal(t, 2, h.factory.Buffers[0].Uploads())
}

func TestSurroundedSolidChunkDrawsNothing(t *testing.T) {
	h := newHarness(t)
	stone := world.NewBlockState(registry.Stone, 0)
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				ch := world.NewChunk(world.ChunkCoord{X: dx, Y: dy, Z: dz})
				ch.Fill(stone, 0)
				require.True(t, h.world.LoadChunk(ch))
			}
		}
	}
	_, err := h.world.Flush(h.bakery)
	require.NoError(t, err)
	require.Eventually(t, h.bakery.Idle, 10*time.Second, time.Millisecond)

	h.blocks.Draw(nil, nil)
	center := h.blocks.Lookup(world.ChunkCoord{})
	require.NotNil(t, center)
	assert.True(t, center.Mesh().HasFullBake())
	for _, l := range meshing.Layers {
		assert.False(t, center.ShouldDrawLayer(l), l.String())
	}
}

func TestUnloadReleasesProxyAndBuffers(t *testing.T) {
	h := newHarness(t)
	ch := sampleChunk(world.ChunkCoord{X: 3})
	rc := h.load(t, ch)
	h.blocks.Draw(nil, nil)
	handle := ch.ProxyHandle()

	require.True(t, h.world.UnloadChunk(ch.Coord()))
	assert.Zero(t, h.blocks.Len())
	assert.False(t, ch.ProxyHandle().Valid())
	_, ok := h.bakery.Proxies().Resolve(handle)
	assert.False(t, ok)
	assert.True(t, rc.Mesh().Closed())
	assert.GreaterOrEqual(t, h.bakery.Pool().Len(), 2)
	for _, buf := range h.factory.Buffers {
		assert.True(t, buf.Deleted())
	}
}

func TestReloadFromWorkerDefersBufferDeletion(t *testing.T) {
	h := newHarness(t)
	coord := world.ChunkCoord{Y: 2}
	old := h.load(t, sampleChunk(coord))
	h.blocks.Draw(nil, nil)
	oldBuffers := slices.Clone(h.factory.Buffers)
	require.Len(t, oldBuffers, 2)
	oldHandle := old.Handle()

	fresh := world.NewChunk(coord)
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.blocks.ChunkLoaded(fresh)
	}()
	<-done

	assert.NotSame(t, old, h.blocks.Lookup(coord))
	assert.Equal(t, fresh.ProxyHandle(), h.blocks.Lookup(coord).Handle())
	_, ok := h.bakery.Proxies().Resolve(oldHandle)
	assert.False(t, ok)
	assert.True(t, old.Mesh().Closed())
	for _, buf := range oldBuffers {
		assert.False(t, buf.Deleted(), "device buffers are freed on the render goroutine")
	}

	st := h.blocks.Draw(nil, nil)
	assert.Equal(t, 1, st.Chunks)
	for _, buf := range oldBuffers {
		assert.True(t, buf.Deleted())
	}
}

func TestDrawSkipsInvisibleWithoutSyncing(t *testing.T) {
	h := newHarness(t)
	near := h.load(t, sampleChunk(world.ChunkCoord{}))
	far := h.load(t, sampleChunk(world.ChunkCoord{X: 8}))

	st := h.blocks.Draw(func(c world.ChunkCoord) bool { return c.X == 0 }, nil)
	assert.Equal(t, 2, st.Chunks)
	assert.Equal(t, 1, st.Visible)
	assert.Equal(t, 1, st.Synced)
	assert.False(t, near.Dirty())
	assert.True(t, far.Dirty(), "invisible proxy keeps its pending upload")
}

func TestCloseReleasesEveryProxy(t *testing.T) {
	h := newHarness(t)
	h.load(t, sampleChunk(world.ChunkCoord{}))
	h.load(t, sampleChunk(world.ChunkCoord{Z: 1}))

	h.blocks.Close()
	assert.Zero(t, h.blocks.Len())
	assert.Zero(t, h.bakery.Proxies().Len())
}

func TestFrustumFilter(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 1000)
	view := mgl32.LookAtV(mgl32.Vec3{16, 16, 0}, mgl32.Vec3{16, 16, -1}, mgl32.Vec3{0, 1, 0})
	visible := FrustumFilter(proj.Mul4(view))

	tests := []struct {
		coord world.ChunkCoord
		want  bool
	}{
		{world.ChunkCoord{Z: -1}, true}, // holds the camera
		{world.ChunkCoord{Z: 0}, true},  // behind, but within the margin
		{world.ChunkCoord{Z: -2}, true},
		{world.ChunkCoord{Z: -30}, true},
		{world.ChunkCoord{Z: 2}, false},
		{world.ChunkCoord{Z: -40}, false},
		{world.ChunkCoord{X: 20, Z: -2}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, visible(tt.coord), "%v", tt.coord)
	}
}
