package blocks

import (
	"chunkbake/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Chunk bounds are inflated by this many blocks before culling.
var frustumMargin float32 = 1.0

// frustum holds the six clip planes as (nx, ny, nz, d) with inward unit
// normals, ordered left, right, bottom, top, near, far.
type frustum [6]mgl32.Vec4

// newFrustum extracts the planes of clip = proj*view. Each plane is the
// fourth row of clip plus or minus one of the first three.
func newFrustum(clip mgl32.Mat4) frustum {
	w := clip.Row(3)
	var f frustum
	for axis := range 3 {
		r := clip.Row(axis)
		f[2*axis] = unitPlane(w.Add(r))
		f[2*axis+1] = unitPlane(w.Sub(r))
	}
	return f
}

func unitPlane(p mgl32.Vec4) mgl32.Vec4 {
	if l := p.Vec3().Len(); l != 0 {
		return p.Mul(1 / l)
	}
	return p
}

// intersects reports whether the box [lo, hi] is at least partly inside.
// A box is rejected once its corner furthest along some plane normal is
// still behind that plane.
func (f *frustum) intersects(lo, hi mgl32.Vec3) bool {
	for _, p := range f {
		var far mgl32.Vec3
		for i := range 3 {
			far[i] = hi[i]
			if p[i] < 0 {
				far[i] = lo[i]
			}
		}
		if p.Vec3().Dot(far)+p[3] < 0 {
			return false
		}
	}
	return true
}

// FrustumFilter returns a visibility test for Draw that keeps chunks whose
// (slightly inflated) bounds touch the frustum of clip = proj*view.
func FrustumFilter(clip mgl32.Mat4) func(world.ChunkCoord) bool {
	f := newFrustum(clip)
	pad := mgl32.Vec3{frustumMargin, frustumMargin, frustumMargin}
	size := float32(world.ChunkWidth)
	extent := mgl32.Vec3{size, size, size}.Add(pad.Mul(2))
	return func(c world.ChunkCoord) bool {
		o := c.Origin()
		lo := mgl32.Vec3{float32(o.X), float32(o.Y), float32(o.Z)}.Sub(pad)
		return f.intersects(lo, lo.Add(extent))
	}
}
