package registry

import (
	"chunkbake/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// unit cube corners per face, counter-clockwise seen from outside
var faceCorners = [6][4]mgl32.Vec3{
	world.FaceNorth:  {{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}},
	world.FaceSouth:  {{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
	world.FaceEast:   {{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}},
	world.FaceWest:   {{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}},
	world.FaceTop:    {{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}},
	world.FaceBottom: {{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
}

func blockOrigin(pos world.BlockPos) mgl32.Vec3 {
	return mgl32.Vec3{float32(pos.X), float32(pos.Y), float32(pos.Z)}
}

// faceQuad returns the corners of face for the cell at pos with its top
// at the given height (1 for a full block).
func faceQuad(pos world.BlockPos, face world.Face, height float32) [4]mgl32.Vec3 {
	o := blockOrigin(pos)
	var out [4]mgl32.Vec3
	for i, c := range faceCorners[face] {
		if c[1] == 1 {
			c[1] = height
		}
		out[i] = o.Add(c)
	}
	return out
}

// RGBA packs a colour with red in the low byte.
func RGBA(r, g, b, a uint8) uint32 {
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24
}

// faceShade darkens sides and bottoms so cube edges read without lighting.
var faceShade = [6]float32{
	world.FaceNorth:  0.8,
	world.FaceSouth:  0.8,
	world.FaceEast:   0.6,
	world.FaceWest:   0.6,
	world.FaceTop:    1.0,
	world.FaceBottom: 0.5,
}

func shade(c uint32, face world.Face) uint32 {
	k := faceShade[face]
	r := uint8(float32(c&0xff) * k)
	g := uint8(float32(c>>8&0xff) * k)
	b := uint8(float32(c>>16&0xff) * k)
	return RGBA(r, g, b, uint8(c>>24))
}
