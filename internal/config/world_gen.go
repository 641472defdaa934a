package config

import "sync"

// WorldGenSettings holds world generation configuration
type WorldGenSettings struct {
	mu         sync.RWMutex
	seed       int64
	useFlatGen bool
	seaLevel   int
	flatHeight int
}

var globalWorldGenSettings = &WorldGenSettings{
	seed:       1,
	useFlatGen: false, // noise terrain by default
	seaLevel:   20,
	flatHeight: 8,
}

// GetSeed returns the terrain seed
func GetSeed() int64 {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.seed
}

// SetSeed sets the terrain seed
func SetSeed(seed int64) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	globalWorldGenSettings.seed = seed
}

// GetUseFlatGen returns whether the flat generator replaces noise terrain
func GetUseFlatGen() bool {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.useFlatGen
}

// SetUseFlatGen sets the generator type
func SetUseFlatGen(enabled bool) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	globalWorldGenSettings.useFlatGen = enabled
}

// GetSeaLevel returns the configured sea level
func GetSeaLevel() int {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.seaLevel
}

// SetSeaLevel sets the sea level
func SetSeaLevel(level int) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	globalWorldGenSettings.seaLevel = level
}

// GetFlatHeight returns the surface height used by the flat generator
func GetFlatHeight() int {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.flatHeight
}

// SetFlatHeight sets the flat generator surface height
func SetFlatHeight(h int) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	if h < 0 {
		h = 0
	}
	globalWorldGenSettings.flatHeight = h
}
