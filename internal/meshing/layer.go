package meshing

import (
	"chunkbake/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// RenderLayer selects the draw pass a quad belongs to.
type RenderLayer uint8

const (
	LayerOpaque RenderLayer = iota
	LayerCutout
	LayerTransparent
)

// NumLayers is the number of render layers.
const NumLayers = 3

// Layers lists the render layers in draw order.
var Layers = [NumLayers]RenderLayer{LayerOpaque, LayerCutout, LayerTransparent}

func (l RenderLayer) String() string {
	switch l {
	case LayerOpaque:
		return "opaque"
	case LayerCutout:
		return "cutout"
	case LayerTransparent:
		return "transparent"
	}
	return "unknown"
}

// Quad is one face of geometry: four world-space corners in
// counter-clockwise order and a packed RGBA colour. The bakery only
// copies quads around.
type Quad struct {
	Corners [4]mgl32.Vec3
	Color   uint32
}

// VoxelTypes decides how voxel states look. Implementations must be safe
// for concurrent use by all bake workers.
type VoxelTypes interface {
	// HasVisibleGeometry reports whether the block emits anything at all.
	HasVisibleGeometry(s world.BlockState) bool
	// IsFaceCulledByNeighbor reports whether face of s is hidden by the
	// block on that side.
	IsFaceCulledByNeighbor(s world.BlockState, face world.Face, neighbor world.BlockState) bool
	// AppendFaceGeometry appends the quads of one face that belong to layer.
	AppendFaceGeometry(dst []Quad, s world.BlockState, pos world.BlockPos, face world.Face, layer RenderLayer, v View) []Quad
	// AppendInteriorGeometry appends quads not attached to a face (plants, panes).
	AppendInteriorGeometry(dst []Quad, s world.BlockState, pos world.BlockPos, layer RenderLayer, v View) []Quad
	// AppendFluidGeometry appends the quads of a fluid voxel.
	AppendFluidGeometry(dst []Quad, s world.FluidState, pos world.BlockPos, layer RenderLayer, v View) []Quad
}

// ChunkLookup finds loaded chunks. *world.World and *world.ChunkStore implement it.
type ChunkLookup interface {
	LookupChunk(coord world.ChunkCoord) *world.Chunk
}
