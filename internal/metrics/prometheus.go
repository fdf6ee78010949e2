package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docsite"

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	pagesBuilt    prom.Counter
	pagesSkipped  *prom.CounterVec
	buildDuration prom.Histogram
	requests      *prom.CounterVec
}

// NewPrometheusRecorder creates the collectors and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		pagesBuilt: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_built_total",
			Help:      "Pages written by site builds",
		}),
		pagesSkipped: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_skipped_total",
			Help:      "Source files skipped during builds, by failure kind",
		}, []string{"kind"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of complete site builds",
			Buckets:   prom.DefBuckets,
		}),
		requests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Serve requests by resolved route and status",
		}, []string{"route", "status"}),
	}
	reg.MustRegister(pr.pagesBuilt, pr.pagesSkipped, pr.buildDuration, pr.requests)
	return pr
}

func (p *PrometheusRecorder) IncPageBuilt() { p.pagesBuilt.Inc() }

func (p *PrometheusRecorder) IncPageSkipped(kind string) {
	p.pagesSkipped.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRequest(route string, status int) {
	p.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// HTTPHandler serves the metrics gathered by reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
