// Package metrics holds the runtime counters for one MessageQueue/
// StateTransitionTable pair and exposes them to Prometheus.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a set of monotonic counters updated by mqueue and stt as they
// run. It is safe to read concurrently with the single writer the
// single-threaded cooperative model allows (spec.md §5); all fields are
// accessed through sync/atomic.
type Metrics struct {
	wraps               uint64
	overruns            uint64
	tombstonesSkipped   uint64
	deadStatesSynthesized uint64
	duplicateRejections uint64
}

// New returns a zeroed Metrics.
func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) RecordWrap()                { atomic.AddUint64(&m.wraps, 1) }
func (m *Metrics) RecordOverrun()             { atomic.AddUint64(&m.overruns, 1) }
func (m *Metrics) RecordTombstoneSkipped()    { atomic.AddUint64(&m.tombstonesSkipped, 1) }
func (m *Metrics) RecordDeadStateSynthesized() { atomic.AddUint64(&m.deadStatesSynthesized, 1) }
func (m *Metrics) RecordDuplicateRejected()   { atomic.AddUint64(&m.duplicateRejections, 1) }

// Snapshot is a consistent-enough point-in-time read of every counter.
type Snapshot struct {
	Wraps                 uint64
	Overruns              uint64
	TombstonesSkipped     uint64
	DeadStatesSynthesized uint64
	DuplicateRejections   uint64
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Wraps:                 atomic.LoadUint64(&m.wraps),
		Overruns:              atomic.LoadUint64(&m.overruns),
		TombstonesSkipped:     atomic.LoadUint64(&m.tombstonesSkipped),
		DeadStatesSynthesized: atomic.LoadUint64(&m.deadStatesSynthesized),
		DuplicateRejections:   atomic.LoadUint64(&m.duplicateRejections),
	}
}

// Collector adapts a Metrics to prometheus.Collector so it can be
// registered in a process-wide registry alongside other instances', each
// distinguished by the instance label.
type Collector struct {
	metrics  *Metrics
	instance string

	wraps               *prometheus.Desc
	overruns            *prometheus.Desc
	tombstonesSkipped   *prometheus.Desc
	deadStatesSynthesized *prometheus.Desc
	duplicateRejections *prometheus.Desc
}

// NewCollector builds a Collector for metrics, labeled with instance (e.g.
// a per-demo-CLI-instance correlation ID).
func NewCollector(metrics *Metrics, instance string) *Collector {
	labels := []string{"instance"}
	return &Collector{
		metrics:  metrics,
		instance: instance,
		wraps: prometheus.NewDesc(
			"statecore_queue_wraps_total", "Ring buffer wrap-around events.", labels, nil),
		overruns: prometheus.NewDesc(
			"statecore_queue_overruns_total", "Rejected reservations that would have lapped the reader.", labels, nil),
		tombstonesSkipped: prometheus.NewDesc(
			"statecore_queue_tombstones_skipped_total", "Tombstone records dropped during CopyAll.", labels, nil),
		deadStatesSynthesized: prometheus.NewDesc(
			"statecore_stt_dead_states_total", "Dead-state leaves synthesized during the link pass.", labels, nil),
		duplicateRejections: prometheus.NewDesc(
			"statecore_stt_duplicate_transitions_total", "SetTransition calls rejected as duplicates.", labels, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.wraps
	ch <- c.overruns
	ch <- c.tombstonesSkipped
	ch <- c.deadStatesSynthesized
	ch <- c.duplicateRejections
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.metrics.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.wraps, prometheus.CounterValue, float64(snap.Wraps), c.instance)
	ch <- prometheus.MustNewConstMetric(c.overruns, prometheus.CounterValue, float64(snap.Overruns), c.instance)
	ch <- prometheus.MustNewConstMetric(c.tombstonesSkipped, prometheus.CounterValue, float64(snap.TombstonesSkipped), c.instance)
	ch <- prometheus.MustNewConstMetric(c.deadStatesSynthesized, prometheus.CounterValue, float64(snap.DeadStatesSynthesized), c.instance)
	ch <- prometheus.MustNewConstMetric(c.duplicateRejections, prometheus.CounterValue, float64(snap.DuplicateRejections), c.instance)
}
