package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters of one process. All methods are safe on a nil
// receiver so callers can run without metrics.
type Metrics struct {
	registry *prometheus.Registry

	samples        *prometheus.CounterVec
	cooldownSkips  prometheus.Counter
	decodeFailures prometheus.Counter
	segments       prometheus.Counter
	matches        *prometheus.GaugeVec
	runDuration    prometheus.Gauge
	lastRun        prometheus.Gauge
}

// New creates a Metrics instance with its own registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "svsorter_samples_total",
			Help: "Frames sampled and classified, by label",
		}, []string{"label"}),
		cooldownSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "svsorter_cooldown_skips_total",
			Help: "Sampling ticks skipped after a detected result screen",
		}),
		decodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "svsorter_decode_failures_total",
			Help: "Sampling ticks where no frame could be decoded",
		}),
		segments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "svsorter_segments_total",
			Help: "Video segments scanned",
		}),
		matches: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "svsorter_last_run_matches",
			Help: "Win and lose screenshots counted by the last run",
		}, []string{"label"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "svsorter_last_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "svsorter_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}

	m.registry.MustRegister(
		m.samples,
		m.cooldownSkips,
		m.decodeFailures,
		m.segments,
		m.matches,
		m.runDuration,
		m.lastRun,
	)

	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveSample(label string) {
	if m == nil {
		return
	}
	m.samples.WithLabelValues(label).Inc()
}

func (m *Metrics) ObserveCooldownSkip() {
	if m == nil {
		return
	}
	m.cooldownSkips.Inc()
}

func (m *Metrics) ObserveDecodeFailure() {
	if m == nil {
		return
	}
	m.decodeFailures.Inc()
}

func (m *Metrics) ObserveSegment() {
	if m == nil {
		return
	}
	m.segments.Inc()
}

// ObserveRun records the outcome of a finished run
func (m *Metrics) ObserveRun(elapsed time.Duration, wins, losses int) {
	if m == nil {
		return
	}
	m.matches.WithLabelValues("win").Set(float64(wins))
	m.matches.WithLabelValues("lose").Set(float64(losses))
	m.runDuration.Set(elapsed.Seconds())
	m.lastRun.SetToCurrentTime()
}

// WriteTextfile dumps the registry in the text exposition format, for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
