package world

import (
	"sync"

	"chunkbake/internal/profiling"

	"github.com/alitto/pond/v2"
)

// QueueDepth reports how many meshing tasks are waiting.
type QueueDepth interface {
	QueuedTasks() int
}

// ChunkStreamer generates chunks on a worker pool and hands them to the
// world on the caller's goroutine. New chunks are only installed while the
// meshing queue is shallow, so loading never outruns baking.
type ChunkStreamer struct {
	world *World
	gen   TerrainGenerator
	pool  pond.Pool

	depth     QueueDepth
	maxQueued int

	mu      sync.Mutex
	pending map[ChunkCoord]struct{}
	ready   []*Chunk
}

// NewChunkStreamer creates a streamer with the given number of generation
// workers. depth may be nil, in which case loading is not throttled.
func NewChunkStreamer(w *World, gen TerrainGenerator, depth QueueDepth, maxQueued, workers int) *ChunkStreamer {
	return &ChunkStreamer{
		world:     w,
		gen:       gen,
		pool:      pond.NewPool(max(workers, 1)),
		depth:     depth,
		maxQueued: maxQueued,
		pending:   make(map[ChunkCoord]struct{}),
	}
}

// Close stops the generation workers after in-flight chunks finish.
func (cs *ChunkStreamer) Close() {
	cs.pool.StopAndWait()
}

// Request queues generation of coord unless it is loaded or already pending.
// It reports whether a job was submitted.
func (cs *ChunkStreamer) Request(coord ChunkCoord) bool {
	if cs.world.store.HasChunk(coord) {
		return false
	}
	cs.mu.Lock()
	if _, ok := cs.pending[coord]; ok {
		cs.mu.Unlock()
		return false
	}
	cs.pending[coord] = struct{}{}
	cs.mu.Unlock()

	cs.pool.Submit(func() {
		ch := NewChunk(coord)
		cs.gen.PopulateChunk(ch)
		cs.mu.Lock()
		cs.ready = append(cs.ready, ch)
		cs.mu.Unlock()
	})
	return true
}

// StreamAround requests every chunk column within radius of center, nearest
// rings first. Columns span chunk Y from 0 up to the chunk holding the
// column's surface.
func (cs *ChunkStreamer) StreamAround(center ChunkCoord, radius int) int {
	defer profiling.Track("world.StreamAround")()
	n := 0
	for r := 0; r <= radius; r++ {
		if r == 0 {
			n += cs.requestColumn(center.X, center.Z)
			continue
		}
		for xk := center.X - r; xk <= center.X+r; xk++ {
			n += cs.requestColumn(xk, center.Z-r)
			n += cs.requestColumn(xk, center.Z+r)
		}
		for zk := center.Z - r + 1; zk <= center.Z+r-1; zk++ {
			n += cs.requestColumn(center.X-r, zk)
			n += cs.requestColumn(center.X+r, zk)
		}
	}
	return n
}

func (cs *ChunkStreamer) requestColumn(cx, cz int) int {
	h := cs.gen.HeightAt(cx*ChunkWidth+ChunkWidth/2, cz*ChunkWidth+ChunkWidth/2)
	top := max(floorDiv(h+1, ChunkWidth), 0)
	n := 0
	for cy := 0; cy <= top; cy++ {
		if cs.Request(ChunkCoord{X: cx, Y: cy, Z: cz}) {
			n++
		}
	}
	return n
}

// Update installs generated chunks into the world while the meshing queue
// holds fewer than the configured number of tasks. Call once per tick from
// the goroutine that owns the world. It returns the number installed.
func (cs *ChunkStreamer) Update() int {
	defer profiling.Track("world.ChunkStreamer.Update")()
	installed := 0
	for {
		if cs.depth != nil && cs.maxQueued > 0 && cs.depth.QueuedTasks() >= cs.maxQueued {
			return installed
		}
		cs.mu.Lock()
		if len(cs.ready) == 0 {
			cs.mu.Unlock()
			return installed
		}
		ch := cs.ready[0]
		cs.ready[0] = nil
		cs.ready = cs.ready[1:]
		delete(cs.pending, ch.coord)
		cs.mu.Unlock()

		if cs.world.LoadChunk(ch) {
			installed++
		}
	}
}

// Pending returns the number of chunks requested but not yet installed.
func (cs *ChunkStreamer) Pending() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.pending)
}

// GenerateSync generates coords in parallel and loads them all before
// returning, ignoring the queue-depth throttle.
func (cs *ChunkStreamer) GenerateSync(coords []ChunkCoord) int {
	defer profiling.Track("world.ChunkStreamer.GenerateSync")()
	chunks := make([]*Chunk, len(coords))
	var wg sync.WaitGroup
	for i, coord := range coords {
		if cs.world.store.HasChunk(coord) {
			continue
		}
		wg.Add(1)
		cs.pool.Submit(func() {
			defer wg.Done()
			ch := NewChunk(coord)
			cs.gen.PopulateChunk(ch)
			chunks[i] = ch
		})
	}
	wg.Wait()

	loaded := 0
	for _, ch := range chunks {
		if ch != nil && cs.world.LoadChunk(ch) {
			loaded++
		}
	}
	return loaded
}

// EvictFar unloads chunks whose XZ distance from center exceeds radius.
func (cs *ChunkStreamer) EvictFar(center ChunkCoord, radius int) int {
	removed := 0
	for _, coord := range cs.world.store.FarChunks(center.X, center.Z, radius) {
		if cs.world.UnloadChunk(coord) {
			removed++
		}
	}
	return removed
}
