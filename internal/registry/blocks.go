package registry

import (
	"fmt"

	"chunkbake/internal/meshing"
	"chunkbake/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Ids of the built-in types registered by NewDefault.
const (
	Air world.TypeID = iota
	Stone
	Dirt
	Grass
	Glass
	TallGrass
)

const (
	NoFluid world.TypeID = iota
	Water
	Lava
)

type airBlock struct{}

func (airBlock) Name() string { return "air" }
func (airBlock) HasVisibleGeometry(world.BlockState) bool { return false }
func (airBlock) IsOpaque(world.BlockState) bool { return false }
func (airBlock) CullsAdjacentFace(world.BlockState, world.Face, world.BlockState) bool {
	return false
}
func (airBlock) AppendFaceGeometry(dst []meshing.Quad, _ world.BlockState, _ world.BlockPos, _ world.Face, _ meshing.RenderLayer, _ meshing.View) []meshing.Quad {
	return dst
}
func (airBlock) AppendInteriorGeometry(dst []meshing.Quad, _ world.BlockState, _ world.BlockPos, _ meshing.RenderLayer, _ meshing.View) []meshing.Quad {
	return dst
}

// Cube is a full block drawn with flat per-face colours.
type Cube struct {
	ID    string
	Layer meshing.RenderLayer
	Color uint32
	// TopColor replaces Color on the top face when non-zero.
	TopColor uint32
	// SelfCulling cubes only hide faces of their own type, like glass.
	SelfCulling bool
}

func (c Cube) Name() string { return c.ID }
func (c Cube) HasVisibleGeometry(world.BlockState) bool { return true }

func (c Cube) IsOpaque(world.BlockState) bool {
	return c.Layer == meshing.LayerOpaque && !c.SelfCulling
}

func (c Cube) CullsAdjacentFace(s world.BlockState, _ world.Face, other world.BlockState) bool {
	if c.SelfCulling {
		return other.ID() == s.ID()
	}
	return c.Layer == meshing.LayerOpaque
}

func (c Cube) AppendFaceGeometry(dst []meshing.Quad, _ world.BlockState, pos world.BlockPos, face world.Face, layer meshing.RenderLayer, _ meshing.View) []meshing.Quad {
	if layer != c.Layer {
		return dst
	}
	color := c.Color
	if face == world.FaceTop && c.TopColor != 0 {
		color = c.TopColor
	}
	return append(dst, meshing.Quad{Corners: faceQuad(pos, face, 1), Color: shade(color, face)})
}

func (c Cube) AppendInteriorGeometry(dst []meshing.Quad, _ world.BlockState, _ world.BlockPos, _ meshing.RenderLayer, _ meshing.View) []meshing.Quad {
	return dst
}

// Cross is a plant drawn as two diagonal quads in the cutout layer.
type Cross struct {
	ID    string
	Color uint32
}

func (c Cross) Name() string { return c.ID }
func (c Cross) HasVisibleGeometry(world.BlockState) bool { return true }
func (c Cross) IsOpaque(world.BlockState) bool { return false }
func (c Cross) CullsAdjacentFace(world.BlockState, world.Face, world.BlockState) bool {
	return false
}

func (c Cross) AppendFaceGeometry(dst []meshing.Quad, _ world.BlockState, _ world.BlockPos, _ world.Face, _ meshing.RenderLayer, _ meshing.View) []meshing.Quad {
	return dst
}

func (c Cross) AppendInteriorGeometry(dst []meshing.Quad, _ world.BlockState, pos world.BlockPos, layer meshing.RenderLayer, _ meshing.View) []meshing.Quad {
	if layer != meshing.LayerCutout {
		return dst
	}
	o := blockOrigin(pos)
	return append(dst,
		meshing.Quad{Corners: [4]mgl32.Vec3{
			o.Add(mgl32.Vec3{0, 0, 0}), o.Add(mgl32.Vec3{1, 0, 1}),
			o.Add(mgl32.Vec3{1, 1, 1}), o.Add(mgl32.Vec3{0, 1, 0}),
		}, Color: c.Color},
		meshing.Quad{Corners: [4]mgl32.Vec3{
			o.Add(mgl32.Vec3{1, 0, 0}), o.Add(mgl32.Vec3{0, 0, 1}),
			o.Add(mgl32.Vec3{0, 1, 1}), o.Add(mgl32.Vec3{1, 1, 0}),
		}, Color: c.Color},
	)
}

// NewDefault returns a registry with the built-in blocks and fluids at the
// ids declared above.
func NewDefault() *Registry {
	r := New()
	mustBlock(r, Stone, Cube{ID: "stone", Layer: meshing.LayerOpaque, Color: RGBA(125, 125, 125, 255)})
	mustBlock(r, Dirt, Cube{ID: "dirt", Layer: meshing.LayerOpaque, Color: RGBA(134, 96, 67, 255)})
	mustBlock(r, Grass, Cube{
		ID:       "grass",
		Layer:    meshing.LayerOpaque,
		Color:    RGBA(134, 96, 67, 255),
		TopColor: RGBA(125, 200, 92, 255),
	})
	mustBlock(r, Glass, Cube{ID: "glass", Layer: meshing.LayerTransparent, Color: RGBA(200, 230, 255, 96), SelfCulling: true})
	mustBlock(r, TallGrass, Cross{ID: "tall_grass", Color: RGBA(100, 180, 70, 255)})

	mustFluid(r, Water, NewLiquid(r, "water", meshing.LayerTransparent, RGBA(48, 92, 220, 160)))
	mustFluid(r, Lava, NewLiquid(r, "lava", meshing.LayerOpaque, RGBA(230, 100, 20, 255)))
	return r
}

func mustBlock(r *Registry, want world.TypeID, bt BlockType) {
	id, err := r.RegisterBlock(bt)
	if err != nil || id != want {
		panic(fmt.Sprintf("registry: block %s got id %d: %v", bt.Name(), id, err))
	}
}

func mustFluid(r *Registry, want world.TypeID, ft FluidType) {
	id, err := r.RegisterFluid(ft)
	if err != nil || id != want {
		panic(fmt.Sprintf("registry: fluid %s got id %d: %v", ft.Name(), id, err))
	}
}

// Palette returns the states used by the terrain generator.
func (r *Registry) Palette() world.Palette {
	return world.Palette{
		Stone:     world.NewBlockState(Stone, 0),
		Dirt:      world.NewBlockState(Dirt, 0),
		Grass:     world.NewBlockState(Grass, 0),
		TallGrass: world.NewBlockState(TallGrass, 0),
		Water:     world.NewFluidState(Water, 0),
	}
}
