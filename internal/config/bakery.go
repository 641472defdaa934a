package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Bakery configures the mesh bakery worker pool.
type Bakery struct {
	// Workers is the number of bake workers. 0 derives it from the CPU count.
	Workers int `yaml:"workers"`
	// ReservedCores are kept free for the main and render threads when
	// Workers is derived.
	ReservedCores  int           `yaml:"reserved_cores"`
	ScratchSize    int           `yaml:"scratch_size"`
	IdleWait       time.Duration `yaml:"idle_wait"`
	MaxQueuedLoads int           `yaml:"max_queued_loads"`
}

// DefaultBakery returns the built-in bakery settings.
func DefaultBakery() Bakery {
	return Bakery{
		Workers:        0,
		ReservedCores:  3,
		ScratchSize:    16384,
		IdleWait:       time.Second,
		MaxQueuedLoads: 8,
	}
}

// Validate rejects negative or zero-duration settings.
func (b Bakery) Validate() error {
	switch {
	case b.Workers < 0:
		return fmt.Errorf("workers %d: %w", b.Workers, ErrInvalid)
	case b.ReservedCores < 0:
		return fmt.Errorf("reserved_cores %d: %w", b.ReservedCores, ErrInvalid)
	case b.ScratchSize < 0:
		return fmt.Errorf("scratch_size %d: %w", b.ScratchSize, ErrInvalid)
	case b.IdleWait <= 0:
		return fmt.Errorf("idle_wait %v: %w", b.IdleWait, ErrInvalid)
	case b.MaxQueuedLoads < 0:
		return fmt.Errorf("max_queued_loads %d: %w", b.MaxQueuedLoads, ErrInvalid)
	}
	return nil
}

// WorkerCount resolves the number of bake workers: the configured value,
// otherwise logical CPUs minus the reserved cores, never less than one.
func (b Bakery) WorkerCount() int {
	if b.Workers > 0 {
		return b.Workers
	}
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		n = runtime.NumCPU()
	}
	return max(n-b.ReservedCores, 1)
}

// File is the on-disk YAML layout.
type File struct {
	Bakery         Bakery   `yaml:"bakery"`
	World          WorldGen `yaml:"world"`
	RenderDistance int      `yaml:"render_distance"`
}

// WorldGen mirrors the world generation settings in the YAML file.
type WorldGen struct {
	Seed       int64 `yaml:"seed"`
	Flat       bool  `yaml:"flat"`
	SeaLevel   int   `yaml:"sea_level"`
	FlatHeight int   `yaml:"flat_height"`
}

// Default returns a File populated with the built-in defaults.
func Default() File {
	return File{
		Bakery: DefaultBakery(),
		World: WorldGen{
			Seed:       GetSeed(),
			Flat:       GetUseFlatGen(),
			SeaLevel:   GetSeaLevel(),
			FlatHeight: GetFlatHeight(),
		},
		RenderDistance: GetRenderDistance(),
	}
}

// Load reads a YAML configuration file over the defaults.
// If path == "", CHUNKBAKE_CONFIG is consulted; with neither the defaults
// are returned. CHUNKBAKE_WORKERS overrides an unset worker count.
func Load(path string) (File, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("CHUNKBAKE_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if cfg.Bakery.Workers == 0 {
		if v := os.Getenv("CHUNKBAKE_WORKERS"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return cfg, fmt.Errorf("CHUNKBAKE_WORKERS=%q: %w", v, ErrInvalid)
			}
			cfg.Bakery.Workers = n
		}
	}

	if err := cfg.Bakery.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Apply installs the world and render settings of f into the global settings.
func (f File) Apply() {
	SetSeed(f.World.Seed)
	SetUseFlatGen(f.World.Flat)
	SetSeaLevel(f.World.SeaLevel)
	SetFlatHeight(f.World.FlatHeight)
	SetRenderDistance(f.RenderDistance)
}
