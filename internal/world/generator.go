package world

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// TerrainGenerator fills freshly created chunks.
type TerrainGenerator interface {
	HeightAt(worldX, worldZ int) int
	PopulateChunk(c *Chunk)
}

// Palette names the states the generators place. The registry provides it.
type Palette struct {
	Stone     BlockState
	Dirt      BlockState
	Grass     BlockState
	TallGrass BlockState
	Water     FluidState
}

// Generator handles terrain generation logic.
type Generator struct {
	palette     Palette
	height      opensimplex.Noise
	foliage     opensimplex.Noise
	scale       float64
	baseHeight  int
	amp         float64
	octaves     int
	persistence float64
	lacunarity  float64
	seaLevel    int
}

// NewGenerator creates a new generator with default settings.
func NewGenerator(seed int64, palette Palette) *Generator {
	return &Generator{
		palette:     palette,
		height:      opensimplex.New(seed),
		foliage:     opensimplex.New(seed ^ 0x5deece66d),
		scale:       1.0 / 96.0,
		baseHeight:  24,
		amp:         20,
		octaves:     4,
		persistence: 0.5,
		lacunarity:  2.0,
		seaLevel:    20,
	}
}

// SeaLevel returns the highest Y that is flooded with water.
func (g *Generator) SeaLevel() int { return g.seaLevel }

// SetSeaLevel changes the flood level. Call before generating chunks.
func (g *Generator) SetSeaLevel(level int) { g.seaLevel = level }

func (g *Generator) octaveNoise(x, z float64) float64 {
	total := 0.0
	amp := 1.0
	freq := 1.0
	norm := 0.0
	for range g.octaves {
		total += g.height.Eval2(x*freq, z*freq) * amp
		norm += amp
		amp *= g.persistence
		freq *= g.lacunarity
	}
	return total / norm
}

// HeightAt computes world surface height (block Y) at world X,Z.
func (g *Generator) HeightAt(worldX, worldZ int) int {
	n := g.octaveNoise(float64(worldX)*g.scale, float64(worldZ)*g.scale)
	height := float64(g.baseHeight) + n*g.amp
	if height < 0 {
		height = 0
	}
	return int(math.Floor(height))
}

// PopulateChunk fills a chunk from the noise heightmap. Columns below sea
// level are flooded, dry grass occasionally carries tall grass.
func (g *Generator) PopulateChunk(c *Chunk) {
	origin := c.Origin()
	for lz := range ChunkWidth {
		for lx := range ChunkWidth {
			wx := origin.X + lx
			wz := origin.Z + lz
			height := g.HeightAt(wx, wz)
			for ly := range ChunkWidth {
				wy := origin.Y + ly
				switch {
				case wy < height-3:
					c.SetBlock(lx, ly, lz, g.palette.Stone)
				case wy < height:
					c.SetBlock(lx, ly, lz, g.palette.Dirt)
				case wy == height:
					if height < g.seaLevel {
						c.SetBlock(lx, ly, lz, g.palette.Dirt)
					} else {
						c.SetBlock(lx, ly, lz, g.palette.Grass)
					}
				case wy <= g.seaLevel:
					c.SetFluid(lx, ly, lz, g.palette.Water)
				case wy == height+1 && height >= g.seaLevel && g.palette.TallGrass != 0:
					if g.foliage.Eval2(float64(wx)*0.9, float64(wz)*0.9) > 0.55 {
						c.SetBlock(lx, ly, lz, g.palette.TallGrass)
					}
				}
			}
		}
	}
}

// FlatGenerator generates a flat world.
type FlatGenerator struct {
	palette Palette
	height  int
}

// NewFlatGenerator creates a generator whose surface is at the given height.
func NewFlatGenerator(height int, palette Palette) *FlatGenerator {
	return &FlatGenerator{palette: palette, height: height}
}

func (g *FlatGenerator) HeightAt(worldX, worldZ int) int { return g.height }

func (g *FlatGenerator) PopulateChunk(c *Chunk) {
	origin := c.Origin()
	for ly := range ChunkWidth {
		wy := origin.Y + ly
		var s BlockState
		switch {
		case wy < g.height:
			s = g.palette.Dirt
		case wy == g.height:
			s = g.palette.Grass
		default:
			continue
		}
		for lz := range ChunkWidth {
			for lx := range ChunkWidth {
				c.SetBlock(lx, ly, lz, s)
			}
		}
	}
}
