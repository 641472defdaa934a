package meshing

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuadPoolRoundTrip(t *testing.T) {
	p := &QuadPool{}
	s := p.Get(16)
	assert.Empty(t, s)
	assert.Equal(t, 16, cap(s))

	s = append(s, make([]Quad, 40)...)
	grown := cap(s)
	p.Put(s)
	assert.Equal(t, 1, p.Len())

	// Any spare satisfies any request, whatever its capacity.
	r := p.Get(4)
	assert.Empty(t, r)
	assert.Equal(t, grown, cap(r))
	assert.Zero(t, p.Len())
}

func TestQuadPoolDropsZeroCapacity(t *testing.T) {
	p := &QuadPool{}
	p.Put(nil)
	p.Put([]Quad{})
	assert.Zero(t, p.Len())
}

func TestQuadPoolConcurrent(t *testing.T) {
	p := &QuadPool{}
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 1000 {
				s := p.Get(8)
				s = append(s, Quad{Color: 1})
				p.Put(s)
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, p.Len(), 8)
	assert.Positive(t, p.Len())
}
