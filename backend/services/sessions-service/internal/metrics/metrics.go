package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chargestats/backend/services/sessions-service/internal/stats"
)

// Metrics holds the service collectors registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	SessionsStarted prometheus.Counter
	SessionsStopped prometheus.Counter
	SweepEvicted    *prometheus.CounterVec
	SweepDuration   prometheus.Histogram
}

// New registers the service collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "chargestats_sessions_started_total",
			Help: "The total number of charging sessions started",
		}),
		SessionsStopped: factory.NewCounter(prometheus.CounterOpts{
			Name: "chargestats_sessions_stopped_total",
			Help: "The total number of charging sessions stopped",
		}),
		SweepEvicted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chargestats_sweep_evicted_total",
			Help: "The total number of expired events removed by the stats sweep",
		}, []string{"kind"}),
		SweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chargestats_sweep_duration_seconds",
			Help:    "Time spent in one stats sweep",
			Buckets: []float64{.00001, .0001, .001, .01, .1, 1},
		}),
	}
}

// ObserveWindow exposes the engine's live window sizes as gauges.
func (m *Metrics) ObserveWindow(engine *stats.Engine) {
	factory := promauto.With(m.registry)
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "chargestats_window_started",
		Help: "Started events currently counted in the one minute window",
	}, func() float64 { return float64(engine.Summary().StartedCount) })
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "chargestats_window_stopped",
		Help: "Stopped events currently counted in the one minute window",
	}, func() float64 { return float64(engine.Summary().StoppedCount) })
}

// SessionStarted counts a persisted session start.
func (m *Metrics) SessionStarted() {
	m.SessionsStarted.Inc()
}

// SessionStopped counts a persisted session stop.
func (m *Metrics) SessionStopped() {
	m.SessionsStopped.Inc()
}

// ObserveSweep records one sweep result.
func (m *Metrics) ObserveSweep(res stats.SweepResult) {
	m.SweepEvicted.WithLabelValues(string(stats.KindStarted)).Add(float64(res.StartedEvicted))
	m.SweepEvicted.WithLabelValues(string(stats.KindStopped)).Add(float64(res.StoppedEvicted))
	m.SweepDuration.Observe(res.Duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
