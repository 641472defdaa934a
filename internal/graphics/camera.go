package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera handles the view and projection matrices. It is a free-flying
// camera described by a position and yaw/pitch in degrees.
type Camera struct {
	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32

	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32
}

func NewCamera(width, height int) *Camera {
	c := &Camera{
		FOV:       60.0,
		NearPlane: 0.1,
		FarPlane:  1000.0,
		Yaw:       -90,
	}
	c.SetViewport(width, height)
	return c
}

func (c *Camera) SetViewport(width, height int) {
	if height <= 0 {
		height = 1
	}
	c.AspectRatio = float32(width) / float32(height)
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

// Front returns the unit look direction.
func (c *Camera) Front() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}.Normalize()
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}

// Turn rotates by the given deltas in degrees. Pitch is clamped short of
// straight up or down.
func (c *Camera) Turn(dYaw, dPitch float32) {
	c.Yaw += dYaw
	c.Pitch = mgl32.Clamp(c.Pitch+dPitch, -89, 89)
}

// Move translates along the look direction, its horizontal right vector
// and world up.
func (c *Camera) Move(forward, right, up float32) {
	front := c.Front()
	side := front.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	c.Position = c.Position.
		Add(front.Mul(forward)).
		Add(side.Mul(right)).
		Add(mgl32.Vec3{0, up, 0})
}
