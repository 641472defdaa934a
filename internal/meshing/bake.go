package meshing

import (
	"fmt"
	"time"

	"chunkbake/internal/profiling"
	"chunkbake/internal/world"
)

// baker holds one worker's scratch buffers. Buffers keep their capacity
// across bakes.
type baker struct {
	b     *Bakery
	block [NumLayers][]Quad
	fluid [NumLayers][]Quad
}

func newBaker(b *Bakery, scratchSize int) *baker {
	k := &baker{b: b}
	for l := range NumLayers {
		k.block[l] = make([]Quad, 0, scratchSize)
		k.fluid[l] = make([]Quad, 0, scratchSize/4)
	}
	return k
}

func (k *baker) reset() {
	for l := range NumLayers {
		k.block[l] = k.block[l][:0]
		k.fluid[l] = k.fluid[l][:0]
	}
}

func (k *baker) run(t *task) {
	defer profiling.Track("meshing.bake")()
	defer k.reset()
	snap := t.snap
	start := time.Now()

	proxy, ok := k.b.proxies.Resolve(snap.proxy)
	if !ok {
		k.discard(t, "proxy expired")
		return
	}
	mesh := proxy.Mesh()
	fluidOnly := t.fluidOnly
	if fluidOnly && !mesh.HasFullBake() {
		// No block prefix to keep yet.
		fluidOnly = false
	}

	if err := k.bake(snap, fluidOnly); err != nil {
		k.b.metrics.panics.Inc()
		k.b.log.Error("bake failed", "chunk", snap.coord, "task", t.seq, "err", err)
		return
	}

	// The chunk may have been unloaded while we were baking.
	if _, ok := k.b.proxies.Resolve(snap.proxy); !ok {
		k.discard(t, "proxy expired")
		return
	}
	if !mesh.commit(k.b.pool, &k.block, &k.fluid, fluidOnly) {
		k.discard(t, "mesh closed")
		return
	}
	proxy.MarkDirty()

	kind := "full"
	if fluidOnly {
		kind = "fluid"
	}
	k.b.metrics.bakes.WithLabelValues(kind).Inc()
	k.b.metrics.bakeSeconds.Observe(time.Since(start).Seconds())
}

func (k *baker) discard(t *task, reason string) {
	k.b.metrics.discarded.Inc()
	k.b.log.Debug("bake discarded", "chunk", t.snap.coord, "task", t.seq, "reason", reason)
}

// bake fills the scratch buffers from snap. A panic in a voxel type is
// returned as an error.
func (k *baker) bake(snap *Snapshot, fluidOnly bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("voxel type panic: %v", r)
		}
	}()

	types := k.b.types
	v := snap.View()
	for z := range world.ChunkWidth {
		for y := range world.ChunkWidth {
			for x := range world.ChunkWidth {
				pos := snap.origin.Add(x, y, z)
				i := snapshotIndex(x+Padding, y+Padding, z+Padding)

				if !fluidOnly {
					k.bakeBlock(types, snap, v, pos, x+Padding, y+Padding, z+Padding, i)
				}

				if fs := snap.fluids[i]; !fs.IsEmpty() {
					for _, l := range Layers {
						k.fluid[l] = types.AppendFluidGeometry(k.fluid[l], fs, pos, l, v)
					}
				}
			}
		}
	}
	return nil
}

func (k *baker) bakeBlock(types VoxelTypes, snap *Snapshot, v View, pos world.BlockPos, px, py, pz, i int) {
	s := snap.blocks[i]
	if !types.HasVisibleGeometry(s) {
		return
	}
	for _, f := range world.Faces {
		dx, dy, dz := f.Offset()
		n := snap.blocks[snapshotIndex(px+dx, py+dy, pz+dz)]
		if types.IsFaceCulledByNeighbor(s, f, n) {
			continue
		}
		for _, l := range Layers {
			k.block[l] = types.AppendFaceGeometry(k.block[l], s, pos, f, l, v)
		}
	}
	for _, l := range Layers {
		k.block[l] = types.AppendInteriorGeometry(k.block[l], s, pos, l, v)
	}
}
