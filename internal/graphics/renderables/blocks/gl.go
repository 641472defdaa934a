package blocks

import "chunkbake/internal/graphics"

// GLFactory creates OpenGL quad buffers. Use only on the GL thread.
var GLFactory DeviceFactory = DeviceFactoryFunc(func() DeviceBuffer {
	return graphics.NewQuadBuffer()
})
