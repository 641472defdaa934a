package meshing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"chunkbake/internal/config"
	"chunkbake/internal/world"

	"github.com/prometheus/client_golang/prometheus"
)

// ErrClosed is returned by Enqueue after Close.
var ErrClosed = errors.New("bakery closed")

var bakerySeq atomic.Int64

// Option configures a Bakery.
type Option func(*Bakery)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Bakery) { b.log = l }
}

// WithName sets the value of the "bakery" label on the bakery gauges. The
// default is a sequence number unique within the process.
func WithName(name string) Option {
	return func(b *Bakery) { b.name = name }
}

// WithRegisterer exports the bakery metrics to reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(b *Bakery) { b.reg = reg }
}

// Bakery turns remesh requests into meshes on a fixed set of workers.
// Requests are queued one per chunk and baked most urgent first.
type Bakery struct {
	types   VoxelTypes
	lookup  ChunkLookup
	pool    *QuadPool
	proxies *ProxyTable
	log     *slog.Logger
	name    string
	reg     prometheus.Registerer
	metrics *metrics

	workers     int
	idleWait    time.Duration
	scratchSize int

	mu     sync.Mutex
	queue  taskQueue
	busy   int
	closed bool

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBakery validates cfg and starts the workers. lookup provides the
// neighbours copied into each snapshot.
func NewBakery(cfg config.Bakery, types VoxelTypes, lookup ChunkLookup, opts ...Option) (*Bakery, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new bakery: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bakery{
		types:       types,
		lookup:      lookup,
		pool:        &QuadPool{},
		proxies:     NewProxyTable(),
		log:         slog.Default(),
		name:        strconv.FormatInt(bakerySeq.Add(1), 10),
		metrics:     newMetrics(),
		workers:     cfg.WorkerCount(),
		idleWait:    cfg.IdleWait,
		scratchSize: cfg.ScratchSize,
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.reg != nil {
		if err := b.metrics.register(b.reg, b); err != nil {
			cancel()
			return nil, fmt.Errorf("register bakery metrics: %w", err)
		}
	}

	b.wake = make(chan struct{}, b.workers)
	for i := range b.workers {
		b.wg.Add(1)
		go b.worker(i)
	}
	b.log.Debug("bakery started", "workers", b.workers)
	return b, nil
}

// Enqueue schedules a bake of ch. A chunk already queued keeps a single
// task: its snapshot is refreshed, its priority can only become more
// urgent, and it stays fluid-only only if every request was.
func (b *Bakery) Enqueue(ch *world.Chunk, priority world.MeshPriority, fluidOnly bool) error {
	snap := NewSnapshot(ch, b.lookup)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	res := b.queue.push(snap, priority, fluidOnly)
	b.mu.Unlock()

	b.metrics.enqueued.Inc()
	if res == pushCoalesced {
		b.metrics.coalesced.Inc()
		return nil
	}
	if res == pushUpgraded {
		b.metrics.coalesced.Inc()
	}
	select {
	case b.wake <- struct{}{}:
	default:
	}
	return nil
}

// QueuedTasks returns the number of tasks waiting for a worker.
func (b *Bakery) QueuedTasks() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queue.len()
}

// InFlight returns the number of bakes currently running.
func (b *Bakery) InFlight() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.busy
}

// Idle reports whether nothing is queued or baking.
func (b *Bakery) Idle() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queue.len() == 0 && b.busy == 0
}

// Workers returns the number of bake workers.
func (b *Bakery) Workers() int { return b.workers }

// Pool returns the quad pool shared by the bakery and its proxies.
func (b *Bakery) Pool() *QuadPool { return b.pool }

// Proxies returns the table resolving snapshot proxy handles.
func (b *Bakery) Proxies() *ProxyTable { return b.proxies }

// Close drops queued tasks, stops the workers and waits for in-flight
// bakes to finish.
func (b *Bakery) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	dropped := b.queue.len()
	b.queue.clear()
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()
	if b.reg != nil {
		b.metrics.unregister()
	}
	b.log.Debug("bakery stopped", "dropped", dropped)
}

func (b *Bakery) next() *task {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	t := b.queue.pop()
	if t != nil {
		b.busy++
	}
	return t
}

func (b *Bakery) done() {
	b.mu.Lock()
	b.busy--
	b.mu.Unlock()
}

// worker is the worker goroutine that processes bake tasks
func (b *Bakery) worker(id int) {
	defer b.wg.Done()
	b.log.Debug("bake worker started", "worker", id)
	defer b.log.Debug("bake worker stopped", "worker", id)

	k := newBaker(b, b.scratchSize)
	idle := time.NewTimer(b.idleWait)
	defer idle.Stop()

	for {
		if t := b.next(); t != nil {
			k.run(t)
			b.done()
			continue
		}
		idle.Reset(b.idleWait)
		select {
		case <-b.ctx.Done():
			return
		case <-b.wake:
		case <-idle.C:
		}
	}
}
