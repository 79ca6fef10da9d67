package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry      *prom.Registry
	revisionReads *prom.HistogramVec
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	sidebarItems  prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		revisionReads: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "kbsite",
			Name:      "revision_read_duration_seconds",
			Help:      "Duration of revision metadata reads by backend and outcome",
			Buckets:   prom.DefBuckets,
		}, []string{"backend", "outcome"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "kbsite",
			Name:      "build_duration_seconds",
			Help:      "Total site configuration build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "kbsite",
			Name:      "build_outcomes_total",
			Help:      "Configuration builds by outcome",
		}, []string{"outcome"}),
		sidebarItems: prom.NewGauge(prom.GaugeOpts{
			Namespace: "kbsite",
			Name:      "sidebar_items",
			Help:      "Number of entries in the last generated sidebar",
		}),
	}
	reg.MustRegister(pr.revisionReads, pr.buildDuration, pr.buildOutcome, pr.sidebarItems)
	return pr
}

// Registry returns the registry the recorder's collectors live on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.registry }

func (p *PrometheusRecorder) ObserveRevisionRead(backend string, d time.Duration, outcome Outcome) {
	p.revisionReads.WithLabelValues(backend, string(outcome)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome Outcome) {
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetSidebarItems(n int) {
	p.sidebarItems.Set(float64(n))
}
