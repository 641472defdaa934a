package blocks

import (
	"fmt"

	"chunkbake/internal/graphics"
	renderer "chunkbake/internal/graphics/renderer"
	"chunkbake/internal/meshing"
	"chunkbake/internal/profiling"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Renderable draws a Blocks manager with the flat quad shader.
type Renderable struct {
	blocks    *Blocks
	shader    *graphics.Shader
	Wireframe bool
	last      Stats
}

var _ renderer.Renderable = (*Renderable)(nil)

func NewRenderable(b *Blocks) *Renderable {
	return &Renderable{blocks: b}
}

func (r *Renderable) Init() error {
	s, err := graphics.NewShader(graphics.QuadVertexShader, graphics.QuadGeometryShader, graphics.QuadFragmentShader)
	if err != nil {
		return fmt.Errorf("blocks shader: %w", err)
	}
	r.shader = s
	return nil
}

func (r *Renderable) Render(ctx renderer.RenderContext) {
	defer profiling.Track("renderer.renderBlocks")()
	if r.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	r.shader.Use()
	r.shader.SetMatrix4("proj", &ctx.Proj[0])
	r.shader.SetMatrix4("view", &ctx.View[0])
	light := mgl32.Vec3{0.3, 1.0, 0.3}.Normalize()
	r.shader.SetVector3("lightDir", light.X(), light.Y(), light.Z())

	r.last = r.blocks.Draw(FrustumFilter(ctx.Proj.Mul4(ctx.View)), r.setupLayer)

	gl.Disable(gl.BLEND)
	gl.DepthMask(true)
	gl.Enable(gl.CULL_FACE)
}

func (r *Renderable) setupLayer(layer meshing.RenderLayer) {
	switch layer {
	case meshing.LayerOpaque:
		gl.Disable(gl.BLEND)
		gl.DepthMask(true)
		gl.Enable(gl.CULL_FACE)
		r.shader.SetFloat("alphaCutoff", 0)
	case meshing.LayerCutout:
		// Cross-shaped plants are single quads seen from both sides.
		gl.Disable(gl.CULL_FACE)
		r.shader.SetFloat("alphaCutoff", 0.5)
	case meshing.LayerTransparent:
		gl.Enable(gl.CULL_FACE)
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		gl.DepthMask(false)
		r.shader.SetFloat("alphaCutoff", 0)
	}
}

// Stats returns the counters of the last frame.
func (r *Renderable) Stats() Stats { return r.last }

func (r *Renderable) Dispose() {
	r.blocks.Close()
	if r.shader != nil {
		r.shader.Delete()
	}
}

func (r *Renderable) SetViewport(width, height int) {}
