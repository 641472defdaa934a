package meshing

import (
	"sync"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

const quadSize = int(unsafe.Sizeof(Quad{}))

// MeshStore holds the baked quads of one chunk. Block quads of each layer
// come first, fluid quads follow, so a fluid-only bake can replace just the
// tail.
type MeshStore struct {
	mu         sync.Mutex
	layers     [NumLayers][]Quad
	blockQuads [NumLayers]int
	fullBake   bool
	closed     bool
}

// NewMeshStore returns an empty mesh.
func NewMeshStore() *MeshStore {
	return &MeshStore{}
}

// commit merges one bake's scratch buffers. It reports false when the
// store was closed and nothing was written.
func (m *MeshStore) commit(pool *QuadPool, block, fluid *[NumLayers][]Quad, fluidOnly bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}

	for l := range NumLayers {
		layer := m.layers[l]
		var bc int
		if fluidOnly {
			bc = min(m.blockQuads[l], len(layer))
		} else {
			bc = len(block[l])
		}
		total := bc + len(fluid[l])
		if total == 0 {
			if layer != nil {
				pool.Put(layer)
				m.layers[l] = nil
			}
			m.blockQuads[l] = 0
			continue
		}
		if layer == nil {
			layer = pool.Get(total)
		}
		if !fluidOnly {
			layer = append(layer[:0], block[l]...)
		}
		m.layers[l] = append(layer[:bc], fluid[l]...)
		m.blockQuads[l] = bc
	}
	if !fluidOnly {
		m.fullBake = true
	}
	return true
}

// Read calls fn for every layer while holding the mesh lock. fn must not
// retain the slice.
func (m *MeshStore) Read(fn func(layer RenderLayer, quads []Quad)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range Layers {
		fn(l, m.layers[l])
	}
}

// LayerLen returns the number of quads in layer.
func (m *MeshStore) LayerLen(layer RenderLayer) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.layers[layer])
}

// BlockQuadCount returns where fluid quads begin in layer.
func (m *MeshStore) BlockQuadCount(layer RenderLayer) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blockQuads[layer]
}

// HasFullBake reports whether a full bake was ever committed.
func (m *MeshStore) HasFullBake() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fullBake
}

// Digest hashes the raw bytes of quads [from, to) of layer.
func (m *MeshStore) Digest(layer RenderLayer, from, to int) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.layers[layer]
	to = min(to, len(q))
	if from >= to {
		return xxhash.Sum64(nil)
	}
	return xxhash.Sum64(quadBytes(q[from:to]))
}

func quadBytes(q []Quad) []byte {
	if len(q) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&q[0])), len(q)*quadSize)
}

// Close returns every layer to pool. Later commits are discarded.
func (m *MeshStore) Close(pool *QuadPool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for l := range m.layers {
		if m.layers[l] != nil {
			pool.Put(m.layers[l])
			m.layers[l] = nil
		}
		m.blockQuads[l] = 0
	}
}

// Closed reports whether Close was called.
func (m *MeshStore) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
