// Command bakebench generates a world, bakes every chunk into in-memory
// device buffers and reports where the time went.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"runtime"
	"time"

	"chunkbake/internal/config"
	"chunkbake/internal/graphics/renderables/blocks"
	"chunkbake/internal/meshing"
	"chunkbake/internal/profiling"
	"chunkbake/internal/registry"
	"chunkbake/internal/world"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xlab/closer"
)

type options struct {
	configPath  string
	radius      int
	edits       int
	metricsAddr string
	verbose     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "YAML config file (default $CHUNKBAKE_CONFIG)")
	flag.IntVar(&opts.radius, "radius", 0, "column radius in chunks (0 uses render_distance)")
	flag.IntVar(&opts.edits, "edits", 256, "random block edits baked after the initial load")
	flag.StringVar(&opts.metricsAddr, "metrics", "", "serve Prometheus metrics on this address and wait for a signal")
	flag.BoolVar(&opts.verbose, "v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(opts, logger); err != nil {
		logger.Error("bakebench failed", "err", err)
		closer.Exit(1)
	}
	if opts.metricsAddr != "" {
		logger.Info("holding for metrics scrapes, interrupt to exit", "addr", opts.metricsAddr)
		closer.Hold()
	}
	closer.Close()
}

func run(opts options, logger *slog.Logger) error {
	file, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	file.Apply()
	radius := opts.radius
	if radius <= 0 {
		radius = config.GetChunkLoadRadius()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	if opts.metricsAddr != "" {
		serveMetrics(opts.metricsAddr, reg, logger)
	}

	types := registry.NewDefault()
	w := world.New()
	bakery, err := meshing.NewBakery(file.Bakery, types, w,
		meshing.WithLogger(logger), meshing.WithRegisterer(reg), meshing.WithName("bench"))
	if err != nil {
		return err
	}
	closer.Bind(bakery.Close)

	factory := &blocks.MemoryFactory{}
	bl := blocks.New(bakery.Proxies(), bakery.Pool(), factory)
	w.SetListener(bl)
	closer.Bind(bl.Close)

	gen := newGenerator(types.Palette())
	streamer := world.NewChunkStreamer(w, gen, bakery, file.Bakery.MaxQueuedLoads, max(runtime.NumCPU()/2, 1))
	closer.Bind(streamer.Close)

	logger.Info("generating", "radius", radius, "workers", bakery.Workers(), "seed", config.GetSeed())
	profiling.ResetFrame()
	start := time.Now()
	loaded := streamer.GenerateSync(columns(gen, radius))
	genTime := time.Since(start)

	start = time.Now()
	if err := drain(w, bakery, bl); err != nil {
		return err
	}
	bakeTime := time.Since(start)
	logger.Info("initial bake done",
		"chunks", loaded, "generate", genTime, "bake", bakeTime,
		"quads", countQuads(factory))
	logger.Info("profile", append(bakeSummary(), "top", profiling.TopN(6))...)

	if opts.edits > 0 {
		profiling.ResetFrame()
		start = time.Now()
		if err := applyEdits(w, gen, radius, opts.edits); err != nil {
			return err
		}
		if err := drain(w, bakery, bl); err != nil {
			return err
		}
		logger.Info("edits baked", "edits", opts.edits, "elapsed", time.Since(start), "quads", countQuads(factory))
		logger.Info("profile", append(bakeSummary(), "top", profiling.TopN(6))...)
	}
	return nil
}

func newGenerator(p world.Palette) world.TerrainGenerator {
	if config.GetUseFlatGen() {
		return world.NewFlatGenerator(config.GetFlatHeight(), p)
	}
	g := world.NewGenerator(config.GetSeed(), p)
	g.SetSeaLevel(config.GetSeaLevel())
	return g
}

// columns lists every chunk from Y=0 up to the surface for the columns
// within radius of the origin.
func columns(gen world.TerrainGenerator, radius int) []world.ChunkCoord {
	var out []world.ChunkCoord
	for cz := -radius; cz <= radius; cz++ {
		for cx := -radius; cx <= radius; cx++ {
			h := gen.HeightAt(cx*world.ChunkWidth+world.ChunkWidth/2, cz*world.ChunkWidth+world.ChunkWidth/2)
			for cy := 0; cy <= max(h+1, 0)/world.ChunkWidth; cy++ {
				out = append(out, world.ChunkCoord{X: cx, Y: cy, Z: cz})
			}
		}
	}
	return out
}

// drain forwards pending remeshes and syncs proxies until the bakery has
// nothing queued or running.
func drain(w *world.World, bakery *meshing.Bakery, bl *blocks.Blocks) error {
	const timeout = 5 * time.Minute
	deadline := time.Now().Add(timeout)
	for {
		if _, err := w.Flush(bakery); err != nil {
			return err
		}
		bl.Draw(nil, nil)
		if w.PendingRemesh() == 0 && bakery.Idle() {
			// Pick up bakes that landed after the last sync.
			bl.Draw(nil, nil)
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("bakery still busy after %v: %d queued", timeout, bakery.QueuedTasks())
		}
		time.Sleep(2 * time.Millisecond)
	}
}

// applyEdits places or removes stone at random surface positions.
func applyEdits(w *world.World, gen world.TerrainGenerator, radius, n int) error {
	span := (2*radius + 1) * world.ChunkWidth
	stone := world.NewBlockState(registry.Stone, 0)
	for i := range n {
		x := rand.IntN(span) - radius*world.ChunkWidth
		z := rand.IntN(span) - radius*world.ChunkWidth
		p := world.BlockPos{X: x, Y: gen.HeightAt(x, z) + 1, Z: z}
		s := stone
		if i%2 == 1 {
			p.Y--
			s = 0
		}
		err := w.SetBlock(p, s, world.PriorityPlayerInteract)
		if err != nil && !errors.Is(err, world.ErrChunkNotLoaded) {
			return err
		}
	}
	return nil
}

// bakeSummary returns log attributes for the bakes tracked since the last
// profiling reset.
func bakeSummary() []any {
	n := profiling.Count("meshing.bake")
	if n == 0 {
		return []any{"bakes", 0}
	}
	total := profiling.Snapshot()["meshing.bake"]
	return []any{"bakes", n, "bake_total", total, "bake_mean", total / time.Duration(n)}
}

func countQuads(f *blocks.MemoryFactory) int {
	n := 0
	for _, b := range f.Buffers {
		n += b.Len()
	}
	return n
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "err", err)
		}
	}()
	closer.Bind(func() { _ = srv.Close() })
}
