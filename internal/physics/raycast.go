package physics

import (
	"math"

	"chunkbake/internal/profiling"
	"chunkbake/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 5.0
)

// RaycastResult stores the result of a raycast operation
type RaycastResult struct {
	HitPosition      world.BlockPos
	AdjacentPosition world.BlockPos
	Distance         float32
	Hit              bool
}

// Raycast walks the voxels crossed by the ray from start along direction
// and returns the first one for which solid reports true. Voxel (x,y,z)
// spans [x,x+1) on each axis. Voxels entered before minDist are skipped.
func Raycast(start, direction mgl32.Vec3, minDist, maxDist float32, solid func(world.BlockPos) bool) RaycastResult {
	defer profiling.Track("physics.Raycast")()
	if direction.Len() == 0 {
		return RaycastResult{}
	}
	dir := direction.Normalize()

	var cell, step [3]int
	var tMax, tDelta [3]float32
	for i := range 3 {
		cell[i] = int(math.Floor(float64(start[i])))
		switch {
		case dir[i] > 0:
			step[i] = 1
			tDelta[i] = 1 / dir[i]
			tMax[i] = (float32(cell[i]+1) - start[i]) / dir[i]
		case dir[i] < 0:
			step[i] = -1
			tDelta[i] = -1 / dir[i]
			tMax[i] = (start[i] - float32(cell[i])) / -dir[i]
		default:
			tMax[i] = float32(math.Inf(1))
			tDelta[i] = float32(math.Inf(1))
		}
	}

	toPos := func(c [3]int) world.BlockPos { return world.BlockPos{X: c[0], Y: c[1], Z: c[2]} }
	prev := cell
	t := float32(0)
	for t <= maxDist {
		if t >= minDist && solid(toPos(cell)) {
			return RaycastResult{
				HitPosition:      toPos(cell),
				AdjacentPosition: toPos(prev),
				Distance:         t,
				Hit:              true,
			}
		}
		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		prev = cell
		cell[axis] += step[axis]
		t = tMax[axis]
		tMax[axis] += tDelta[axis]
	}
	return RaycastResult{}
}

// SolidIn reports voxels of w that hold a block.
func SolidIn(w *world.World) func(world.BlockPos) bool {
	return func(p world.BlockPos) bool { return !w.BlockAt(p).IsEmpty() }
}
