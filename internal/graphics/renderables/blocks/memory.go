package blocks

import "chunkbake/internal/meshing"

// MemoryBuffer is a DeviceBuffer backed by host memory, for headless runs
// and tests.
type MemoryBuffer struct {
	quads   []meshing.Quad
	uploads int
	draws   int
	deleted bool
}

func (b *MemoryBuffer) Upload(quads []meshing.Quad) {
	b.quads = append(b.quads[:0], quads...)
	b.uploads++
}

func (b *MemoryBuffer) Len() int { return len(b.quads) }

func (b *MemoryBuffer) Draw() { b.draws++ }

func (b *MemoryBuffer) Delete() {
	b.quads = nil
	b.deleted = true
}

// Quads returns the last uploaded quads. The slice is owned by the buffer.
func (b *MemoryBuffer) Quads() []meshing.Quad { return b.quads }

func (b *MemoryBuffer) Uploads() int  { return b.uploads }
func (b *MemoryBuffer) Draws() int    { return b.draws }
func (b *MemoryBuffer) Deleted() bool { return b.deleted }

// MemoryFactory hands out MemoryBuffers and remembers them.
type MemoryFactory struct {
	Buffers []*MemoryBuffer
}

func (f *MemoryFactory) NewBuffer() DeviceBuffer {
	b := &MemoryBuffer{}
	f.Buffers = append(f.Buffers, b)
	return b
}
