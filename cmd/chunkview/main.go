// Command chunkview streams a generated world around a flying camera and
// draws the baked chunk meshes.
package main

import (
	"flag"
	"log/slog"
	"os"
	"runtime"

	"chunkbake/internal/config"
	"chunkbake/internal/graphics"
	"chunkbake/internal/graphics/renderables/blocks"
	renderer "chunkbake/internal/graphics/renderer"
	"chunkbake/internal/input"
	"chunkbake/internal/meshing"
	"chunkbake/internal/registry"
	"chunkbake/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	windowWidth  = 1280
	windowHeight = 720
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML config file (default $CHUNKBAKE_CONFIG)")
	fps := flag.Int("fps", 0, "frame rate cap with vsync off (0 keeps vsync)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	file, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}
	file.Apply()

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	window, err := setupWindow(*fps == 0)
	if err != nil {
		panic(err)
	}
	if err := gl.Init(); err != nil {
		panic(err)
	}

	types := registry.NewDefault()
	w := world.New()
	bakery, err := meshing.NewBakery(file.Bakery, types, w, meshing.WithLogger(logger))
	if err != nil {
		logger.Error("start bakery", "err", err)
		os.Exit(1)
	}
	defer bakery.Close()

	bl := blocks.New(bakery.Proxies(), bakery.Pool(), blocks.GLFactory)
	w.SetListener(bl)
	blocksRenderer := blocks.NewRenderable(bl)

	camera := graphics.NewCamera(windowWidth, windowHeight)
	r, err := renderer.NewRenderer(camera, blocksRenderer)
	if err != nil {
		panic(err)
	}
	defer r.Dispose()

	gen := newGenerator(types.Palette())
	streamer := world.NewChunkStreamer(w, gen, bakery, file.Bakery.MaxQueuedLoads, max(runtime.NumCPU()/4, 1))
	defer streamer.Close()

	camera.Position = mgl32.Vec3{0, float32(gen.HeightAt(0, 0) + 12), 0}
	logger.Info("chunkview started", "workers", bakery.Workers(), "radius", config.GetChunkLoadRadius())

	im := input.NewManager()
	loop := newViewLoop(window, r, blocksRenderer, w, bakery, streamer, im, logger)
	loop.limiter.limit = *fps
	setupInputHandlers(window, loop, im)
	loop.Run()
}

func setupWindow(vsync bool) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(windowWidth, windowHeight, "chunkview", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()
	if vsync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	return window, nil
}

func newGenerator(p world.Palette) world.TerrainGenerator {
	if config.GetUseFlatGen() {
		return world.NewFlatGenerator(config.GetFlatHeight(), p)
	}
	g := world.NewGenerator(config.GetSeed(), p)
	g.SetSeaLevel(config.GetSeaLevel())
	return g
}
