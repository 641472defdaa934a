package world

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedDepth struct{ n int }

func (d *fixedDepth) QueuedTasks() int { return d.n }

func TestChunkStreamerGenerateSync(t *testing.T) {
	w := New()
	cs := NewChunkStreamer(w, NewFlatGenerator(3, testPalette), nil, 0, 4)
	defer cs.Close()

	coords := []ChunkCoord{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}}
	assert.Equal(t, 3, cs.GenerateSync(coords))
	assert.Equal(t, 0, cs.GenerateSync(coords), "already loaded")
	assert.Equal(t, testPalette.Grass, w.BlockAt(BlockPos{ChunkWidth + 1, 3, 2}))
}

func TestChunkStreamerThrottlesOnQueueDepth(t *testing.T) {
	w := New()
	depth := &fixedDepth{n: 10}
	cs := NewChunkStreamer(w, NewFlatGenerator(3, testPalette), depth, 8, 2)
	defer cs.Close()

	assert.Positive(t, cs.StreamAround(ChunkCoord{}, 1))
	assert.False(t, cs.Request(ChunkCoord{}), "already pending")

	require.Eventually(t, func() bool {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		return len(cs.ready) == len(cs.pending)
	}, 5*time.Second, 5*time.Millisecond)

	assert.Zero(t, cs.Update(), "queue too deep")
	assert.Zero(t, w.Store().Len())

	depth.n = 0
	installed := cs.Update()
	assert.Equal(t, 9, installed)
	assert.Equal(t, 9, w.Store().Len())
	assert.Zero(t, cs.Pending())

	assert.Equal(t, 8, cs.EvictFar(ChunkCoord{}, 0))
	assert.Equal(t, 1, w.Store().Len())
}
