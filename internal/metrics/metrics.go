// Package metrics records wiki server lifecycle and build counters on a
// private Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

// Recorder holds the lifecycle metrics. The zero value is not usable; a nil
// *Recorder is a valid no-op.
type Recorder struct {
	registry *prometheus.Registry

	serverStarts    *prometheus.CounterVec
	builds          *prometheus.CounterVec
	initializations prometheus.Counter
	serverActive    prometheus.Gauge
	bootDuration    *prometheus.HistogramVec
}

// New creates a Recorder registered on a fresh registry under namespace.
func New(namespace string) *Recorder {
	if namespace == "" {
		namespace = "wikishell"
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		serverStarts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "server_starts_total",
			Help:      "Wiki server start sequences by result",
		}, []string{"result"}),
		builds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Static exports by result",
		}, []string{"result"}),
		initializations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "initializations_total",
			Help:      "Wiki folders bootstrapped from a template",
		}),
		serverActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "server_active",
			Help:      "1 while a wiki server holds the listen port",
		}),
		bootDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "boot_duration_seconds",
			Help:      "Engine boot duration by mode",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"mode"}),
	}
}

// ServerStarted records the outcome of a start sequence.
func (r *Recorder) ServerStarted(ok bool) {
	if r == nil {
		return
	}
	r.serverStarts.WithLabelValues(result(ok)).Inc()
	if ok {
		r.serverActive.Set(1)
	}
}

// ServerStopped marks the listen port as released.
func (r *Recorder) ServerStopped() {
	if r == nil {
		return
	}
	r.serverActive.Set(0)
}

// BuildFinished records the outcome of a static export.
func (r *Recorder) BuildFinished(ok bool) {
	if r == nil {
		return
	}
	r.builds.WithLabelValues(result(ok)).Inc()
}

// Initialized records a folder bootstrap.
func (r *Recorder) Initialized() {
	if r == nil {
		return
	}
	r.initializations.Inc()
}

// ObserveBoot records how long an engine took to signal readiness.
func (r *Recorder) ObserveBoot(mode string, d time.Duration) {
	if r == nil {
		return
	}
	r.bootDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// Gatherer exposes the registry for tests and custom exporters.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.Gatherer(), promhttp.HandlerOpts{})
}

func result(ok bool) string {
	if ok {
		return ResultOK
	}
	return ResultFailed
}
