package world

import (
	"sync"
)

// ChunkStore manages the storage and retrieval of chunks.
type ChunkStore struct {
	// Map of chunks indexed by their coordinates
	chunks   map[ChunkCoord]*Chunk
	mu       sync.RWMutex
	modCount uint64 // Increases on any chunk add/remove
}

// NewChunkStore creates a new chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[ChunkCoord]*Chunk),
	}
}

// LookupChunk returns the chunk at the coordinate, or nil if it is not loaded.
func (cs *ChunkStore) LookupChunk(coord ChunkCoord) *Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.chunks[coord]
}

// ChunkAt returns the chunk containing the block at the specified world position.
func (cs *ChunkStore) ChunkAt(p BlockPos) *Chunk {
	return cs.LookupChunk(ChunkCoordOf(p))
}

// HasChunk checks if a chunk exists.
func (cs *ChunkStore) HasChunk(coord ChunkCoord) bool {
	cs.mu.RLock()
	_, exists := cs.chunks[coord]
	cs.mu.RUnlock()
	return exists
}

// AddChunk adds a pre-generated chunk to the store. It reports false if a
// chunk already occupies the coordinate.
func (cs *ChunkStore) AddChunk(chunk *Chunk) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if _, ok := cs.chunks[chunk.coord]; ok {
		return false
	}
	cs.chunks[chunk.coord] = chunk
	cs.modCount++
	return true
}

// RemoveChunk deletes the chunk at coord and returns it, or nil if absent.
func (cs *ChunkStore) RemoveChunk(coord ChunkCoord) *Chunk {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	ch, ok := cs.chunks[coord]
	if !ok {
		return nil
	}
	delete(cs.chunks, coord)
	cs.modCount++
	return ch
}

// Len returns the number of loaded chunks.
func (cs *ChunkStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

// AllChunks returns a slice of all loaded chunks.
func (cs *ChunkStore) AllChunks() []*Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	chunks := make([]*Chunk, 0, len(cs.chunks))
	for _, chunk := range cs.chunks {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// FarChunks returns coordinates of chunks whose XZ distance from the center
// chunk exceeds radius.
func (cs *ChunkStore) FarChunks(cx, cz, radius int) []ChunkCoord {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	var far []ChunkCoord
	for coord := range cs.chunks {
		dx := coord.X - cx
		dz := coord.Z - cz
		if dx*dx+dz*dz > radius*radius {
			far = append(far, coord)
		}
	}
	return far
}

// GetModCount returns the current modification count of the chunk map.
func (cs *ChunkStore) GetModCount() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.modCount
}
