// Package prom exports cache metrics to Prometheus.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/mfucache/cache"
)

// Adapter implements cache.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits       prometheus.Counter
	misses     prometheus.Counter
	evicts     *prometheus.CounterVec
	vetoes     *prometheus.CounterVec
	sizeTrack  prometheus.Gauge
	sizeLinked prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	opts := func(name, help string) prometheus.Opts {
		return prometheus.Opts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		}
	}
	a := &Adapter{
		hits:       prometheus.NewCounter(prometheus.CounterOpts(opts("hits_total", "Cache hits"))),
		misses:     prometheus.NewCounter(prometheus.CounterOpts(opts("misses_total", "Cache misses, soft-removed keys included"))),
		evicts:     prometheus.NewCounterVec(prometheus.CounterOpts(opts("evictions_total", "Entries trimmed, aged out or cleared, by reason")), []string{"reason"}),
		vetoes:     prometheus.NewCounterVec(prometheus.CounterOpts(opts("vetoes_total", "Operations declined by a veto, by operation")), []string{"op"}),
		sizeTrack:  prometheus.NewGauge(prometheus.GaugeOpts(opts("tracked_keys", "Keys in the table, soft-removed included"))),
		sizeLinked: prometheus.NewGauge(prometheus.GaugeOpts(opts("linked_entries", "Entries in the ordered index"))),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.vetoes, a.sizeTrack, a.sizeLinked)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter with a reason label.
func (a *Adapter) Evict(r cache.EvictReason) {
	a.evicts.WithLabelValues(r.String()).Inc()
}

// Veto increments the veto counter with an operation label.
func (a *Adapter) Veto(op cache.VetoOp) {
	a.vetoes.WithLabelValues(op.String()).Inc()
}

// Size updates the tracked/linked gauges.
func (a *Adapter) Size(tracked, linked int) {
	a.sizeTrack.Set(float64(tracked))
	a.sizeLinked.Set(float64(linked))
}

var _ cache.Metrics = (*Adapter)(nil)
