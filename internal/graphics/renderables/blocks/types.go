package blocks

import "chunkbake/internal/meshing"

// DeviceBuffer holds one render layer of a chunk in device memory.
// All methods run on the render goroutine.
type DeviceBuffer interface {
	Upload(quads []meshing.Quad)
	Len() int
	Draw()
	Delete()
}

// DeviceFactory creates device buffers on first upload.
type DeviceFactory interface {
	NewBuffer() DeviceBuffer
}

// DeviceFactoryFunc adapts a function to DeviceFactory.
type DeviceFactoryFunc func() DeviceBuffer

func (f DeviceFactoryFunc) NewBuffer() DeviceBuffer { return f() }
