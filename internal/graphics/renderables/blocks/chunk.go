package blocks

import (
	"sync/atomic"

	"chunkbake/internal/meshing"
	"chunkbake/internal/profiling"
	"chunkbake/internal/world"
)

// RenderChunk is the render-side proxy of one chunk. Bake workers write its
// MeshStore and mark it dirty; the render goroutine syncs it into device
// buffers and draws it.
type RenderChunk struct {
	coord   world.ChunkCoord
	mesh    *meshing.MeshStore
	factory DeviceFactory
	buffers [meshing.NumLayers]DeviceBuffer
	dirty   atomic.Bool

	handle      world.ProxyHandle
	syncedFrame uint64
}

var _ meshing.Proxy = (*RenderChunk)(nil)

// NewRenderChunk creates an empty proxy. Device buffers are created lazily
// by Sync.
func NewRenderChunk(coord world.ChunkCoord, factory DeviceFactory) *RenderChunk {
	return &RenderChunk{
		coord:   coord,
		mesh:    meshing.NewMeshStore(),
		factory: factory,
	}
}

// Coord returns the chunk this proxy renders.
func (rc *RenderChunk) Coord() world.ChunkCoord { return rc.coord }

// Mesh returns the store bake workers commit into.
func (rc *RenderChunk) Mesh() *meshing.MeshStore { return rc.mesh }

// Handle returns the handle snapshots use to resolve this proxy.
func (rc *RenderChunk) Handle() world.ProxyHandle { return rc.handle }

// MarkDirty flags the proxy for upload. Safe from any goroutine.
func (rc *RenderChunk) MarkDirty() { rc.dirty.Store(true) }

// Dirty reports whether a bake landed since the last Sync.
func (rc *RenderChunk) Dirty() bool { return rc.dirty.Load() }

// Sync uploads the current mesh if it changed. The flag is cleared before
// copying so a bake committed during the upload is picked up next frame.
func (rc *RenderChunk) Sync() bool {
	if !rc.dirty.CompareAndSwap(true, false) {
		return false
	}
	defer profiling.Track("blocks.RenderChunk.Sync")()
	rc.mesh.Read(func(layer meshing.RenderLayer, quads []meshing.Quad) {
		buf := rc.buffers[layer]
		if buf == nil {
			if len(quads) == 0 {
				return
			}
			buf = rc.factory.NewBuffer()
			rc.buffers[layer] = buf
		}
		buf.Upload(quads)
	})
	return true
}

// ShouldDrawLayer reports whether the layer has uploaded geometry.
func (rc *RenderChunk) ShouldDrawLayer(layer meshing.RenderLayer) bool {
	buf := rc.buffers[layer]
	return buf != nil && buf.Len() > 0
}

func (rc *RenderChunk) DrawLayer(layer meshing.RenderLayer) {
	if rc.ShouldDrawLayer(layer) {
		rc.buffers[layer].Draw()
	}
}

// Dispose closes the mesh, returning its buffers to pool, and frees the
// device buffers. Later bakes for this proxy are dropped.
func (rc *RenderChunk) Dispose(pool *meshing.QuadPool) {
	rc.retire(pool)
	rc.deleteBuffers()
}

// retire closes the mesh without touching device buffers, so it may run off
// the render goroutine.
func (rc *RenderChunk) retire(pool *meshing.QuadPool) {
	rc.mesh.Close(pool)
	rc.dirty.Store(false)
}

func (rc *RenderChunk) deleteBuffers() {
	for i, buf := range rc.buffers {
		if buf != nil {
			buf.Delete()
			rc.buffers[i] = nil
		}
	}
}
