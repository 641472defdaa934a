package graphics

import (
	"unsafe"

	"chunkbake/internal/meshing"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// quadStride is the size of one meshing.Quad: four vec3 corners and a
// packed RGBA colour.
const quadStride = int32(unsafe.Sizeof(meshing.Quad{}))

// QuadBuffer holds one layer of chunk geometry on the GPU. Every quad is a
// single point; QuadGeometryShader expands it into two triangles.
type QuadBuffer struct {
	vao      uint32
	vbo      uint32
	count    int32
	capacity int
}

// NewQuadBuffer allocates the vertex array. Must be called on the GL thread.
func NewQuadBuffer() *QuadBuffer {
	b := &QuadBuffer{}
	gl.GenVertexArrays(1, &b.vao)
	gl.GenBuffers(1, &b.vbo)
	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)

	for i := range uint32(4) {
		gl.EnableVertexAttribArray(i)
		gl.VertexAttribPointerWithOffset(i, 3, gl.FLOAT, false, quadStride, uintptr(i)*12)
	}
	gl.EnableVertexAttribArray(4)
	gl.VertexAttribIPointer(4, 1, gl.UNSIGNED_INT, quadStride, gl.PtrOffset(48))

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return b
}

// Upload replaces the buffer contents. The store is only reallocated when
// the quads no longer fit.
func (b *QuadBuffer) Upload(quads []meshing.Quad) {
	b.count = int32(len(quads))
	if len(quads) == 0 {
		return
	}
	size := len(quads) * int(quadStride)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	if len(quads) > b.capacity {
		gl.BufferData(gl.ARRAY_BUFFER, size, unsafe.Pointer(&quads[0]), gl.DYNAMIC_DRAW)
		b.capacity = len(quads)
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, unsafe.Pointer(&quads[0]))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// Len returns the number of quads from the last upload.
func (b *QuadBuffer) Len() int { return int(b.count) }

// Draw issues one point per quad with the current program.
func (b *QuadBuffer) Draw() {
	if b.count == 0 {
		return
	}
	gl.BindVertexArray(b.vao)
	gl.DrawArrays(gl.POINTS, 0, b.count)
}

// Delete frees the GL objects.
func (b *QuadBuffer) Delete() {
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
	}
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
	}
	b.vao, b.vbo, b.count, b.capacity = 0, 0, 0, 0
}
