package meshing

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	enqueued    prometheus.Counter
	coalesced   prometheus.Counter
	bakes       *prometheus.CounterVec
	discarded   prometheus.Counter
	panics      prometheus.Counter
	bakeSeconds prometheus.Histogram

	reg    prometheus.Registerer
	gauges []prometheus.Collector
}

func newMetrics() *metrics {
	return &metrics{
		enqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chunkbake",
			Subsystem: "bakery",
			Name:      "tasks_enqueued_total",
			Help:      "Remesh requests received.",
		}),
		coalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chunkbake",
			Subsystem: "bakery",
			Name:      "tasks_coalesced_total",
			Help:      "Remesh requests merged into an already queued task.",
		}),
		bakes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chunkbake",
			Subsystem: "bakery",
			Name:      "bakes_total",
			Help:      "Completed bakes by kind.",
		}, []string{"kind"}),
		discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chunkbake",
			Subsystem: "bakery",
			Name:      "bakes_discarded_total",
			Help:      "Bakes thrown away because the proxy or mesh was gone.",
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chunkbake",
			Subsystem: "bakery",
			Name:      "bake_panics_total",
			Help:      "Bakes aborted by a panic in a voxel type.",
		}),
		bakeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "chunkbake",
			Subsystem: "bakery",
			Name:      "bake_duration_seconds",
			Help:      "Time spent baking one chunk.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
}

// register adds the collectors to reg. Counters and the histogram are
// shared by every bakery on reg: when already registered, the existing
// collector is adopted. Gauges read one bakery and carry its name in the
// "bakery" label; they are removed again by unregister.
func (m *metrics) register(reg prometheus.Registerer, b *Bakery) error {
	var err error
	if m.enqueued, err = adopt(reg, m.enqueued); err != nil {
		return err
	}
	if m.coalesced, err = adopt(reg, m.coalesced); err != nil {
		return err
	}
	if m.bakes, err = adopt(reg, m.bakes); err != nil {
		return err
	}
	if m.discarded, err = adopt(reg, m.discarded); err != nil {
		return err
	}
	if m.panics, err = adopt(reg, m.panics); err != nil {
		return err
	}
	if m.bakeSeconds, err = adopt(reg, m.bakeSeconds); err != nil {
		return err
	}

	labels := prometheus.Labels{"bakery": b.name}
	gauge := func(name, help string, f func() int) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   "chunkbake",
			Subsystem:   "bakery",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}, func() float64 { return float64(f()) })
	}
	gauges := []prometheus.Collector{
		gauge("queue_depth", "Tasks waiting for a worker.", b.QueuedTasks),
		gauge("in_flight", "Bakes currently running.", b.InFlight),
		gauge("pool_spare_buffers", "Spare quad buffers held by the pool.", b.pool.Len),
		gauge("proxies", "Registered render proxies.", b.proxies.Len),
	}
	for _, g := range gauges {
		if err := reg.Register(g); err != nil {
			m.unregister()
			return fmt.Errorf("bakery %q: %w", b.name, err)
		}
		m.reg = reg
		m.gauges = append(m.gauges, g)
	}
	return nil
}

// unregister removes the gauges added by register.
func (m *metrics) unregister() {
	for _, g := range m.gauges {
		m.reg.Unregister(g)
	}
	m.gauges = nil
}

// adopt registers c, or returns the collector already registered under the
// same descriptor.
func adopt[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return c, err
	}
	existing, ok := are.ExistingCollector.(C)
	if !ok {
		return c, fmt.Errorf("collector %T already registered as %T", c, are.ExistingCollector)
	}
	return existing, nil
}
