package registry

import (
	"fmt"

	"chunkbake/internal/meshing"
	"chunkbake/internal/world"
)

// BlockType describes how one kind of block looks.
type BlockType interface {
	Name() string
	HasVisibleGeometry(s world.BlockState) bool
	// IsOpaque reports whether s fills its cell and blocks sight.
	IsOpaque(s world.BlockState) bool
	// CullsAdjacentFace reports whether s hides the face of other that
	// touches s. face is the side of s that other lies against.
	CullsAdjacentFace(s world.BlockState, face world.Face, other world.BlockState) bool
	AppendFaceGeometry(dst []meshing.Quad, s world.BlockState, pos world.BlockPos, face world.Face, layer meshing.RenderLayer, v meshing.View) []meshing.Quad
	AppendInteriorGeometry(dst []meshing.Quad, s world.BlockState, pos world.BlockPos, layer meshing.RenderLayer, v meshing.View) []meshing.Quad
}

// FluidType describes how one kind of fluid looks.
type FluidType interface {
	Name() string
	AppendFluidGeometry(dst []meshing.Quad, s world.FluidState, pos world.BlockPos, layer meshing.RenderLayer, v meshing.View) []meshing.Quad
}

// Registry maps type ids to block and fluid types. Id 0 is always air and
// no fluid. Register everything before baking starts; lookups are not
// synchronised against registration.
type Registry struct {
	blocks []BlockType
	fluids []FluidType
	names  map[string]world.TypeID
	fnames map[string]world.TypeID
}

// New returns a registry holding only air and the empty fluid.
func New() *Registry {
	return &Registry{
		blocks: []BlockType{airBlock{}},
		fluids: []FluidType{noFluid{}},
		names:  map[string]world.TypeID{"air": 0},
		fnames: map[string]world.TypeID{"empty": 0},
	}
}

// RegisterBlock adds bt and returns its id.
func (r *Registry) RegisterBlock(bt BlockType) (world.TypeID, error) {
	if _, ok := r.names[bt.Name()]; ok {
		return 0, fmt.Errorf("block %q already registered", bt.Name())
	}
	id := world.TypeID(len(r.blocks))
	r.blocks = append(r.blocks, bt)
	r.names[bt.Name()] = id
	return id, nil
}

// RegisterFluid adds ft and returns its id.
func (r *Registry) RegisterFluid(ft FluidType) (world.TypeID, error) {
	if _, ok := r.fnames[ft.Name()]; ok {
		return 0, fmt.Errorf("fluid %q already registered", ft.Name())
	}
	id := world.TypeID(len(r.fluids))
	r.fluids = append(r.fluids, ft)
	r.fnames[ft.Name()] = id
	return id, nil
}

// Block returns the type of id, or air for unknown ids.
func (r *Registry) Block(id world.TypeID) BlockType {
	if int(id) >= len(r.blocks) {
		return r.blocks[0]
	}
	return r.blocks[id]
}

// Fluid returns the type of id, or the empty fluid for unknown ids.
func (r *Registry) Fluid(id world.TypeID) FluidType {
	if int(id) >= len(r.fluids) {
		return r.fluids[0]
	}
	return r.fluids[id]
}

// BlockID looks a block type up by name.
func (r *Registry) BlockID(name string) (world.TypeID, bool) {
	id, ok := r.names[name]
	return id, ok
}

// FluidID looks a fluid type up by name.
func (r *Registry) FluidID(name string) (world.TypeID, bool) {
	id, ok := r.fnames[name]
	return id, ok
}

func (r *Registry) HasVisibleGeometry(s world.BlockState) bool {
	return r.Block(s.ID()).HasVisibleGeometry(s)
}

// IsFaceCulledByNeighbor asks the neighbour whether it hides the face.
func (r *Registry) IsFaceCulledByNeighbor(s world.BlockState, face world.Face, neighbor world.BlockState) bool {
	return r.Block(neighbor.ID()).CullsAdjacentFace(neighbor, face.Opposite(), s)
}

func (r *Registry) AppendFaceGeometry(dst []meshing.Quad, s world.BlockState, pos world.BlockPos, face world.Face, layer meshing.RenderLayer, v meshing.View) []meshing.Quad {
	return r.Block(s.ID()).AppendFaceGeometry(dst, s, pos, face, layer, v)
}

func (r *Registry) AppendInteriorGeometry(dst []meshing.Quad, s world.BlockState, pos world.BlockPos, layer meshing.RenderLayer, v meshing.View) []meshing.Quad {
	return r.Block(s.ID()).AppendInteriorGeometry(dst, s, pos, layer, v)
}

func (r *Registry) AppendFluidGeometry(dst []meshing.Quad, s world.FluidState, pos world.BlockPos, layer meshing.RenderLayer, v meshing.View) []meshing.Quad {
	return r.Fluid(s.ID()).AppendFluidGeometry(dst, s, pos, layer, v)
}

var _ meshing.VoxelTypes = (*Registry)(nil)
