package main

import (
	"errors"
	"log/slog"
	"math"
	"time"

	"chunkbake/internal/config"
	"chunkbake/internal/graphics/renderables/blocks"
	renderer "chunkbake/internal/graphics/renderer"
	"chunkbake/internal/input"
	"chunkbake/internal/meshing"
	"chunkbake/internal/physics"
	"chunkbake/internal/profiling"
	"chunkbake/internal/registry"
	"chunkbake/internal/world"

	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	flySpeed         = 24.0
	mouseSensitivity = 0.1
	evictEvery       = 750 * time.Millisecond
)

type editKind int

const (
	editPlace editKind = iota
	editRemove
	editWater
)

// viewLoop owns the per-frame work: streaming, remesh flushes and drawing.
type viewLoop struct {
	window   *glfw.Window
	renderer *renderer.Renderer
	blocks   *blocks.Renderable
	world    *world.World
	bakery   *meshing.Bakery
	streamer *world.ChunkStreamer
	input    *input.Manager
	log      *slog.Logger

	limiter fpsLimiter

	firstMouse   bool
	lastX, lastY float64

	frames    int
	lastFPS   time.Time
	lastTime  time.Time
	lastEvict time.Time
}

func newViewLoop(window *glfw.Window, r *renderer.Renderer, b *blocks.Renderable, w *world.World,
	bakery *meshing.Bakery, streamer *world.ChunkStreamer, im *input.Manager, log *slog.Logger) *viewLoop {
	now := time.Now()
	return &viewLoop{
		window:     window,
		renderer:   r,
		blocks:     b,
		world:      w,
		bakery:     bakery,
		streamer:   streamer,
		input:      im,
		log:        log,
		firstMouse: true,
		lastFPS:    now,
		lastTime:   now,
		lastEvict:  now,
	}
}

func (l *viewLoop) Run() {
	for !l.window.ShouldClose() {
		l.tick()
	}
}

func (l *viewLoop) tick() {
	profiling.ResetFrame()
	now := time.Now()
	dt := now.Sub(l.lastTime).Seconds()
	l.lastTime = now

	func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()
	l.handleInputActions(float32(dt))
	l.processWorldUpdates()

	l.renderer.Render(dt)
	func() { defer profiling.Track("glfw.SwapBuffers")(); l.window.SwapBuffers() }()
	l.input.PostUpdate()
	l.limiter.Wait()

	l.frames++
	if time.Since(l.lastFPS) >= time.Second {
		st := l.blocks.Stats()
		l.log.Info("frame",
			"fps", l.frames,
			"chunks", st.Chunks, "visible", st.Visible, "synced", st.Synced,
			"queued", l.bakery.QueuedTasks(), "pending", l.streamer.Pending(),
			"top", profiling.TopN(4))
		l.frames = 0
		l.lastFPS = time.Now()
	}
}

func (l *viewLoop) handleInputActions(dt float32) {
	im := l.input
	if im.JustPressed(input.ActionQuit) {
		l.window.SetShouldClose(true)
	}
	if im.JustPressed(input.ActionToggleWireframe) {
		l.blocks.Wireframe = !l.blocks.Wireframe
	}
	switch {
	case im.JustPressed(input.ActionPlaceBlock):
		l.edit(editPlace)
	case im.JustPressed(input.ActionRemoveBlock):
		l.edit(editRemove)
	case im.JustPressed(input.ActionPlaceWater):
		l.edit(editWater)
	}

	step := flySpeed * dt
	l.renderer.GetCamera().Move(
		im.Axis(input.ActionMoveForward, input.ActionMoveBackward)*step,
		im.Axis(input.ActionMoveRight, input.ActionMoveLeft)*step,
		im.Axis(input.ActionMoveUp, input.ActionMoveDown)*step,
	)
}

func (l *viewLoop) center() world.ChunkCoord {
	p := l.renderer.GetCamera().Position
	return world.ChunkCoordOf(world.BlockPos{
		X: int(math.Floor(float64(p.X()))),
		Y: int(math.Floor(float64(p.Y()))),
		Z: int(math.Floor(float64(p.Z()))),
	})
}

func (l *viewLoop) processWorldUpdates() {
	center := l.center()
	l.streamer.StreamAround(center, config.GetChunkLoadRadius())
	l.streamer.Update()

	if time.Since(l.lastEvict) > evictEvery {
		func() {
			defer profiling.Track("world.EvictFar")()
			l.streamer.EvictFar(center, config.GetChunkEvictRadius())
		}()
		l.lastEvict = time.Now()
	}

	func() {
		defer profiling.Track("world.Flush")()
		if _, err := l.world.Flush(l.bakery); err != nil {
			l.log.Error("flush remesh requests", "err", err)
		}
	}()
}

// edit changes the voxel the camera looks at. Placing targets the empty
// voxel in front of the hit face; with nothing in reach it targets the
// voxel at arm's length.
func (l *viewLoop) edit(kind editKind) {
	cam := l.renderer.GetCamera()
	res := physics.Raycast(cam.Position, cam.Front(), physics.MinReachDistance, physics.MaxReachDistance, physics.SolidIn(l.world))

	var p world.BlockPos
	switch {
	case res.Hit && kind == editRemove:
		p = res.HitPosition
	case res.Hit:
		p = res.AdjacentPosition
	default:
		t := cam.Position.Add(cam.Front().Mul(physics.MaxReachDistance))
		p = world.BlockPos{
			X: int(math.Floor(float64(t.X()))),
			Y: int(math.Floor(float64(t.Y()))),
			Z: int(math.Floor(float64(t.Z()))),
		}
	}

	var err error
	switch kind {
	case editPlace:
		err = l.world.SetBlock(p, world.NewBlockState(registry.Glass, 0), world.PriorityPlayerInteract)
	case editRemove:
		err = l.world.SetBlock(p, 0, world.PriorityPlayerInteract)
		if err == nil {
			err = l.world.SetFluid(p, 0, world.PriorityPlayerInteract)
		}
	case editWater:
		err = l.world.SetFluid(p, world.NewFluidState(registry.Water, 0), world.PriorityFluidUpdate)
	}
	if err != nil && !errors.Is(err, world.ErrChunkNotLoaded) {
		l.log.Error("edit", "pos", p, "err", err)
	}
}
