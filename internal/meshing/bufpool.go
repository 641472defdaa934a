package meshing

import "sync"

// QuadPool recycles quad slices between bakes. Any spare slice may satisfy
// any request; capacity is not matched.
type QuadPool struct {
	mu   sync.Mutex
	free [][]Quad
}

// Get returns an empty slice, reusing a spare one when available.
func (p *QuadPool) Get(size int) []Quad {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.free); n > 0 {
		s := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		return s
	}
	return make([]Quad, 0, size)
}

// Put clears s and keeps it for reuse. Slices without capacity are dropped.
func (p *QuadPool) Put(s []Quad) {
	if cap(s) == 0 {
		return
	}
	p.mu.Lock()
	p.free = append(p.free, s[:0])
	p.mu.Unlock()
}

// Len returns the number of spare slices.
func (p *QuadPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}
