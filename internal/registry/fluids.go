package registry

import (
	"chunkbake/internal/meshing"
	"chunkbake/internal/world"
)

type noFluid struct{}

func (noFluid) Name() string { return "empty" }
func (noFluid) AppendFluidGeometry(dst []meshing.Quad, _ world.FluidState, _ world.BlockPos, _ meshing.RenderLayer, _ meshing.View) []meshing.Quad {
	return dst
}

// MaxLevel is the lowest flowing level. Level 0 is a source.
const MaxLevel = 7

// Liquid draws a fluid as a box lowered by its level. Faces against the
// same liquid or an opaque block are skipped.
type Liquid struct {
	ID    string
	Layer meshing.RenderLayer
	Color uint32
	types *Registry
}

// NewLiquid creates a liquid that consults r for neighbouring blocks.
func NewLiquid(r *Registry, id string, layer meshing.RenderLayer, color uint32) *Liquid {
	return &Liquid{ID: id, Layer: layer, Color: color, types: r}
}

func (l *Liquid) Name() string { return l.ID }

// Height returns the surface height of a cell at the given level.
func Height(level uint64) float32 {
	level = min(level, MaxLevel)
	return float32(8-level) / 9
}

func (l *Liquid) AppendFluidGeometry(dst []meshing.Quad, s world.FluidState, pos world.BlockPos, layer meshing.RenderLayer, v meshing.View) []meshing.Quad {
	if layer != l.Layer {
		return dst
	}
	height := Height(s.Meta())
	if v.FluidAt(pos.Step(world.FaceTop)).ID() == s.ID() {
		height = 1
	}
	for _, face := range world.Faces {
		n := pos.Step(face)
		if v.FluidAt(n).ID() == s.ID() {
			continue
		}
		nb := v.BlockAt(n)
		if l.types.Block(nb.ID()).IsOpaque(nb) {
			continue
		}
		dst = append(dst, meshing.Quad{Corners: faceQuad(pos, face, height), Color: shade(l.Color, face)})
	}
	return dst
}
