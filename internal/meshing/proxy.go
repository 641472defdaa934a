package meshing

import (
	"sync"

	"chunkbake/internal/world"
)

// Proxy is the render-side owner of a chunk's mesh.
type Proxy interface {
	Mesh() *MeshStore
	// MarkDirty may be called from any goroutine.
	MarkDirty()
}

type proxySlot struct {
	proxy Proxy
	gen   uint32
}

// ProxyTable hands out generation-checked handles to proxies. A released
// handle never resolves again, even after its slot is reused.
type ProxyTable struct {
	mu    sync.RWMutex
	slots []proxySlot
	free  []uint32
	live  int
}

// NewProxyTable returns an empty table.
func NewProxyTable() *ProxyTable {
	return &ProxyTable{}
}

// Register stores p and returns a handle to it.
func (t *ProxyTable) Register(p Proxy) world.ProxyHandle {
	t.mu.Lock()
	defer t.mu.Unlock()

	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, proxySlot{gen: 1})
	}
	t.slots[idx].proxy = p
	t.live++
	return world.ProxyHandle{Index: idx, Gen: t.slots[idx].gen}
}

// Resolve returns the proxy for h if it is still registered.
func (t *ProxyTable) Resolve(h world.ProxyHandle) (Proxy, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !h.Valid() || int(h.Index) >= len(t.slots) {
		return nil, false
	}
	s := t.slots[h.Index]
	if s.gen != h.Gen || s.proxy == nil {
		return nil, false
	}
	return s.proxy, true
}

// Release invalidates h. It reports false if h was already stale.
func (t *ProxyTable) Release(h world.ProxyHandle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !h.Valid() || int(h.Index) >= len(t.slots) {
		return false
	}
	s := &t.slots[h.Index]
	if s.gen != h.Gen || s.proxy == nil {
		return false
	}
	s.proxy = nil
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	t.free = append(t.free, h.Index)
	t.live--
	return true
}

// Len returns the number of registered proxies.
func (t *ProxyTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.live
}
