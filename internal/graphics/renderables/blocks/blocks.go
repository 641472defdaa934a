package blocks

import (
	"slices"
	"sync"

	"chunkbake/internal/meshing"
	"chunkbake/internal/profiling"
	"chunkbake/internal/world"
)

// Stats describes one draw pass.
type Stats struct {
	Chunks  int
	Visible int
	Synced  int
	Draws   [meshing.NumLayers]int
}

// Blocks attaches a RenderChunk to every loaded chunk and draws them layer
// by layer. ChunkLoaded may be called from any goroutine: a proxy it
// replaces is retired at once and its device buffers are freed by the next
// Draw. ChunkUnloaded, Draw and Close touch device buffers and belong to the
// render goroutine.
type Blocks struct {
	proxies *meshing.ProxyTable
	pool    *meshing.QuadPool
	factory DeviceFactory

	mu     sync.Mutex
	chunks map[world.ChunkCoord]*RenderChunk
	frame  uint64
	// replaced proxies whose device buffers still need deleting
	retired []*RenderChunk

	visible []*RenderChunk
}

var _ world.ChunkListener = (*Blocks)(nil)

// New creates a manager registering proxies in proxies and returning mesh
// buffers to pool on unload.
func New(proxies *meshing.ProxyTable, pool *meshing.QuadPool, factory DeviceFactory) *Blocks {
	return &Blocks{
		proxies: proxies,
		pool:    pool,
		factory: factory,
		chunks:  make(map[world.ChunkCoord]*RenderChunk),
	}
}

// ChunkLoaded registers a fresh proxy and stores its handle in the chunk
// so that snapshots carry it.
func (b *Blocks) ChunkLoaded(ch *world.Chunk) {
	rc := NewRenderChunk(ch.Coord(), b.factory)
	rc.handle = b.proxies.Register(rc)
	ch.SetProxyHandle(rc.handle)

	b.mu.Lock()
	defer b.mu.Unlock()
	old := b.chunks[rc.coord]
	b.chunks[rc.coord] = rc
	if old != nil {
		b.proxies.Release(old.handle)
		old.retire(b.pool)
		b.retired = append(b.retired, old)
	}
}

// ChunkUnloaded expires the proxy handle and frees the proxy's buffers.
func (b *Blocks) ChunkUnloaded(ch *world.Chunk) {
	b.mu.Lock()
	rc := b.chunks[ch.Coord()]
	delete(b.chunks, ch.Coord())
	b.mu.Unlock()
	if rc == nil {
		return
	}
	ch.SetProxyHandle(world.ProxyHandle{})
	b.release(rc)
}

func (b *Blocks) release(rc *RenderChunk) {
	b.proxies.Release(rc.handle)
	rc.Dispose(b.pool)
}

// Lookup returns the proxy of a loaded chunk or nil.
func (b *Blocks) Lookup(coord world.ChunkCoord) *RenderChunk {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chunks[coord]
}

func (b *Blocks) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.chunks)
}

// Draw runs one frame. Layers are drawn Opaque, Cutout, Transparent.
// Each visible proxy is synced once, before its first draw of the frame.
// visible may be nil to draw everything; beforeLayer, when set, is called
// ahead of each layer to set up device state.
func (b *Blocks) Draw(visible func(world.ChunkCoord) bool, beforeLayer func(meshing.RenderLayer)) Stats {
	defer profiling.Track("blocks.Draw")()
	var st Stats

	b.mu.Lock()
	retired := b.retired
	b.retired = nil
	b.frame++
	frame := b.frame
	st.Chunks = len(b.chunks)
	b.visible = b.visible[:0]
	for coord, rc := range b.chunks {
		if visible == nil || visible(coord) {
			b.visible = append(b.visible, rc)
		}
	}
	b.mu.Unlock()

	for _, rc := range retired {
		rc.deleteBuffers()
	}
	slices.SortFunc(b.visible, func(x, y *RenderChunk) int {
		return compareCoord(x.coord, y.coord)
	})
	st.Visible = len(b.visible)

	for _, layer := range meshing.Layers {
		if beforeLayer != nil {
			beforeLayer(layer)
		}
		for _, rc := range b.visible {
			if rc.syncedFrame != frame {
				rc.syncedFrame = frame
				if rc.Sync() {
					st.Synced++
				}
			}
			if rc.ShouldDrawLayer(layer) {
				rc.DrawLayer(layer)
				st.Draws[layer]++
			}
		}
	}
	clear(b.visible)
	return st
}

// Close releases every proxy.
func (b *Blocks) Close() {
	b.mu.Lock()
	all := make([]*RenderChunk, 0, len(b.chunks))
	for _, rc := range b.chunks {
		all = append(all, rc)
	}
	clear(b.chunks)
	retired := b.retired
	b.retired = nil
	b.mu.Unlock()
	for _, rc := range all {
		b.release(rc)
	}
	for _, rc := range retired {
		rc.deleteBuffers()
	}
}

func compareCoord(a, b world.ChunkCoord) int {
	if a.Y != b.Y {
		return a.Y - b.Y
	}
	if a.X != b.X {
		return a.X - b.X
	}
	return a.Z - b.Z
}
