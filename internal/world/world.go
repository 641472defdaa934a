package world

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrChunkNotLoaded is returned when editing a position whose chunk is absent.
var ErrChunkNotLoaded = errors.New("chunk not loaded")

// RemeshScheduler accepts remesh requests. The meshing bakery implements it.
type RemeshScheduler interface {
	Enqueue(ch *Chunk, priority MeshPriority, fluidOnly bool) error
}

// ChunkListener is notified when chunks enter or leave the world. Loaded is
// called before the chunk's first remesh is scheduled so a render proxy can
// be attached in time.
type ChunkListener interface {
	ChunkLoaded(ch *Chunk)
	ChunkUnloaded(ch *Chunk)
}

type remeshRequest struct {
	priority  MeshPriority
	fluidOnly bool
}

// World owns the loaded chunks and collects remesh requests between flushes.
type World struct {
	store *ChunkStore

	mu       sync.Mutex
	dirty    map[ChunkCoord]remeshRequest
	listener ChunkListener
}

// New creates an empty world.
func New() *World {
	return &World{
		store: NewChunkStore(),
		dirty: make(map[ChunkCoord]remeshRequest),
	}
}

func (w *World) Store() *ChunkStore { return w.store }

// SetListener installs the chunk lifecycle listener. Pass nil to remove it.
func (w *World) SetListener(l ChunkListener) {
	w.mu.Lock()
	w.listener = l
	w.mu.Unlock()
}

func (w *World) currentListener() ChunkListener {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.listener
}

// LookupChunk returns the loaded chunk at coord or nil.
func (w *World) LookupChunk(coord ChunkCoord) *Chunk {
	return w.store.LookupChunk(coord)
}

// LoadChunk inserts a chunk and schedules it and its face neighbours for
// meshing. It reports false if a chunk was already loaded at that position.
func (w *World) LoadChunk(ch *Chunk) bool {
	if !w.store.AddChunk(ch) {
		return false
	}
	if l := w.currentListener(); l != nil {
		l.ChunkLoaded(ch)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.scheduleLocked(ch.coord, PriorityChunkLoad, false)
	for _, f := range Faces {
		w.scheduleLocked(ch.coord.Neighbor(f), PriorityChunkLoad, false)
	}
	return true
}

// UnloadChunk removes the chunk at coord, notifies the listener and
// schedules its face neighbours so their borders are rebuilt.
func (w *World) UnloadChunk(coord ChunkCoord) bool {
	ch := w.store.RemoveChunk(coord)
	if ch == nil {
		return false
	}
	if l := w.currentListener(); l != nil {
		l.ChunkUnloaded(ch)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.dirty, coord)
	for _, f := range Faces {
		w.scheduleLocked(coord.Neighbor(f), PriorityChunkUnload, false)
	}
	return true
}

// BlockAt returns the block state at p, or air when the chunk is not loaded.
func (w *World) BlockAt(p BlockPos) BlockState {
	ch := w.store.ChunkAt(p)
	if ch == nil {
		return 0
	}
	s, _ := ch.BlockAt(p)
	return s
}

// FluidAt returns the fluid state at p, or no fluid when the chunk is not loaded.
func (w *World) FluidAt(p BlockPos) FluidState {
	ch := w.store.ChunkAt(p)
	if ch == nil {
		return 0
	}
	s, _ := ch.FluidAt(p)
	return s
}

// SetBlock changes a block and schedules a full remesh of the owning chunk
// and of any neighbour sharing the edited border.
func (w *World) SetBlock(p BlockPos, s BlockState, priority MeshPriority) error {
	ch := w.store.ChunkAt(p)
	if ch == nil {
		return fmt.Errorf("set block at %v: %w", p, ErrChunkNotLoaded)
	}
	changed, err := ch.SetBlockAt(p, s)
	if err != nil {
		return fmt.Errorf("set block at %v: %w", p, err)
	}
	if changed {
		w.scheduleEdit(ch, p, priority, false)
	}
	return nil
}

// SetFluid changes a fluid and schedules a fluid-only remesh of the owning
// chunk and of any neighbour sharing the edited border.
func (w *World) SetFluid(p BlockPos, s FluidState, priority MeshPriority) error {
	ch := w.store.ChunkAt(p)
	if ch == nil {
		return fmt.Errorf("set fluid at %v: %w", p, ErrChunkNotLoaded)
	}
	changed, err := ch.SetFluidAt(p, s)
	if err != nil {
		return fmt.Errorf("set fluid at %v: %w", p, err)
	}
	if changed {
		w.scheduleEdit(ch, p, priority, true)
	}
	return nil
}

func (w *World) scheduleEdit(ch *Chunk, p BlockPos, priority MeshPriority, fluidOnly bool) {
	r := p.Sub(ch.origin)
	coord := ch.coord

	w.mu.Lock()
	defer w.mu.Unlock()
	w.scheduleLocked(coord, priority, fluidOnly)
	// Geometry of the neighbour depends on the padding we are part of.
	if r.X == 0 {
		w.scheduleLocked(coord.Neighbor(FaceWest), priority, fluidOnly)
	} else if r.X == ChunkWidth-1 {
		w.scheduleLocked(coord.Neighbor(FaceEast), priority, fluidOnly)
	}
	if r.Y == 0 {
		w.scheduleLocked(coord.Neighbor(FaceBottom), priority, fluidOnly)
	} else if r.Y == ChunkWidth-1 {
		w.scheduleLocked(coord.Neighbor(FaceTop), priority, fluidOnly)
	}
	if r.Z == 0 {
		w.scheduleLocked(coord.Neighbor(FaceNorth), priority, fluidOnly)
	} else if r.Z == ChunkWidth-1 {
		w.scheduleLocked(coord.Neighbor(FaceSouth), priority, fluidOnly)
	}
}

// ScheduleRemesh records a remesh request for coord. Requests for the same
// chunk are merged until the next Flush.
func (w *World) ScheduleRemesh(coord ChunkCoord, priority MeshPriority, fluidOnly bool) {
	w.mu.Lock()
	w.scheduleLocked(coord, priority, fluidOnly)
	w.mu.Unlock()
}

func (w *World) scheduleLocked(coord ChunkCoord, priority MeshPriority, fluidOnly bool) {
	if prev, ok := w.dirty[coord]; ok {
		w.dirty[coord] = remeshRequest{
			priority:  min(prev.priority, priority),
			fluidOnly: prev.fluidOnly && fluidOnly,
		}
		return
	}
	w.dirty[coord] = remeshRequest{priority: priority, fluidOnly: fluidOnly}
}

// PendingRemesh returns the number of chunks waiting for the next Flush.
func (w *World) PendingRemesh() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.dirty)
}

// Flush hands every pending remesh request to s, most urgent first.
// Requests for chunks that are no longer loaded are dropped. It returns
// the number of requests forwarded. If s fails, the failed request and
// everything after it are pending again.
func (w *World) Flush(s RemeshScheduler) (int, error) {
	type pending struct {
		coord ChunkCoord
		req   remeshRequest
	}

	w.mu.Lock()
	batch := make([]pending, 0, len(w.dirty))
	for coord, req := range w.dirty {
		batch = append(batch, pending{coord, req})
	}
	clear(w.dirty)
	w.mu.Unlock()

	sort.Slice(batch, func(i, j int) bool {
		a, b := batch[i], batch[j]
		if a.req.priority != b.req.priority {
			return a.req.priority < b.req.priority
		}
		if a.coord.Y != b.coord.Y {
			return a.coord.Y < b.coord.Y
		}
		if a.coord.X != b.coord.X {
			return a.coord.X < b.coord.X
		}
		return a.coord.Z < b.coord.Z
	})

	sent := 0
	for i, p := range batch {
		ch := w.store.LookupChunk(p.coord)
		if ch == nil {
			continue
		}
		if err := s.Enqueue(ch, p.req.priority, p.req.fluidOnly); err != nil {
			w.mu.Lock()
			for _, rest := range batch[i:] {
				w.scheduleLocked(rest.coord, rest.req.priority, rest.req.fluidOnly)
			}
			w.mu.Unlock()
			return sent, fmt.Errorf("flush remesh of %v: %w", p.coord, err)
		}
		sent++
	}
	return sent, nil
}
