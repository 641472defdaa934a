package meshing

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"chunkbake/internal/config"
	"chunkbake/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

// cubeTypes treats every non-empty block as an opaque cube that emits one
// quad per visible face, and every fluid as one opaque quad tagged with
// its metadata.
type cubeTypes struct{}

func posVec(p world.BlockPos) mgl32.Vec3 {
	return mgl32.Vec3{float32(p.X), float32(p.Y), float32(p.Z)}
}

func (cubeTypes) HasVisibleGeometry(s world.BlockState) bool { return !s.IsEmpty() }

func (cubeTypes) IsFaceCulledByNeighbor(s world.BlockState, face world.Face, n world.BlockState) bool {
	return !n.IsEmpty()
}

func (cubeTypes) AppendFaceGeometry(dst []Quad, s world.BlockState, pos world.BlockPos, face world.Face, layer RenderLayer, v View) []Quad {
	if layer != LayerOpaque {
		return dst
	}
	return append(dst, Quad{Corners: [4]mgl32.Vec3{posVec(pos)}, Color: uint32(face)})
}

func (cubeTypes) AppendInteriorGeometry(dst []Quad, s world.BlockState, pos world.BlockPos, layer RenderLayer, v View) []Quad {
	return dst
}

func (cubeTypes) AppendFluidGeometry(dst []Quad, s world.FluidState, pos world.BlockPos, layer RenderLayer, v View) []Quad {
	if layer != LayerOpaque {
		return dst
	}
	return append(dst, Quad{Corners: [4]mgl32.Vec3{posVec(pos)}, Color: 0xff000000 | uint32(s.Meta())})
}

// recordingTypes logs the chunk of every baked block and can hold a bake
// of one chunk until released, or panic for another.
type recordingTypes struct {
	cubeTypes

	mu    sync.Mutex
	baked []world.ChunkCoord

	gate    *world.ChunkCoord
	entered chan struct{}
	release chan struct{}

	panicAt *world.ChunkCoord
}

func newRecordingTypes() *recordingTypes {
	return &recordingTypes{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (r *recordingTypes) AppendInteriorGeometry(dst []Quad, s world.BlockState, pos world.BlockPos, layer RenderLayer, v View) []Quad {
	if layer != LayerOpaque {
		return dst
	}
	c := world.ChunkCoordOf(pos)
	if r.panicAt != nil && c == *r.panicAt {
		panic("broken voxel type")
	}
	r.mu.Lock()
	r.baked = append(r.baked, c)
	r.mu.Unlock()
	if r.gate != nil && c == *r.gate {
		r.entered <- struct{}{}
		<-r.release
	}
	return dst
}

func (r *recordingTypes) order() []world.ChunkCoord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]world.ChunkCoord(nil), r.baked...)
}

type testProxy struct {
	mesh  *MeshStore
	dirty atomic.Int32
}

func newTestProxy() *testProxy { return &testProxy{mesh: NewMeshStore()} }

func (p *testProxy) Mesh() *MeshStore { return p.mesh }
func (p *testProxy) MarkDirty()       { p.dirty.Add(1) }

func newTestBakery(t *testing.T, types VoxelTypes, lookup ChunkLookup, workers int, opts ...Option) *Bakery {
	t.Helper()
	cfg := config.DefaultBakery()
	cfg.Workers = workers
	cfg.IdleWait = 10 * time.Millisecond
	cfg.ScratchSize = 64
	b, err := NewBakery(cfg, types, lookup, opts...)
	require.NoError(t, err)
	t.Cleanup(b.Close)
	return b
}

// attach loads a chunk with a registered proxy into store.
func attach(t *testing.T, b *Bakery, store *world.ChunkStore, ch *world.Chunk) *testProxy {
	t.Helper()
	p := newTestProxy()
	ch.SetProxyHandle(b.Proxies().Register(p))
	require.True(t, store.AddChunk(ch))
	return p
}

func waitDirty(t *testing.T, p *testProxy, n int32) {
	t.Helper()
	require.Eventually(t, func() bool { return p.dirty.Load() >= n }, 5*time.Second, time.Millisecond)
}
