package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once               sync.Once
	pageQueryDuration  *prom.HistogramVec
	pageQueries        *prom.CounterVec
	collectionDuration prom.Histogram
	routesCollected    prom.Gauge
	outcomes           *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.pageQueryDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "prismicgen",
			Name:      "page_query_duration_seconds",
			Help:      "Duration of individual content repository page queries",
			Buckets:   prom.DefBuckets,
		}, []string{"result"})
		pr.pageQueries = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "prismicgen",
			Name:      "page_queries_total",
			Help:      "Content repository page queries by result",
		}, []string{"result"})
		pr.collectionDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "prismicgen",
			Name:      "route_collection_duration_seconds",
			Help:      "Total duration of a route collection run",
			Buckets:   prom.DefBuckets,
		})
		pr.routesCollected = prom.NewGauge(prom.GaugeOpts{
			Namespace: "prismicgen",
			Name:      "routes_collected",
			Help:      "Number of unique routes produced by the last collection run",
		})
		pr.outcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "prismicgen",
			Name:      "route_collection_outcomes_total",
			Help:      "Route collection runs by final outcome",
		}, []string{"outcome"})
		reg.MustRegister(pr.pageQueryDuration, pr.pageQueries, pr.collectionDuration, pr.routesCollected, pr.outcomes)
	})
	return pr
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}

func (p *PrometheusRecorder) ObservePageQuery(d time.Duration, success bool) {
	if p == nil || p.pageQueryDuration == nil {
		return
	}
	res := resultLabel(success)
	p.pageQueryDuration.WithLabelValues(res).Observe(d.Seconds())
	p.pageQueries.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) ObserveCollectionDuration(d time.Duration) {
	if p == nil || p.collectionDuration == nil {
		return
	}
	p.collectionDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetRoutesCollected(n int) {
	if p == nil || p.routesCollected == nil {
		return
	}
	p.routesCollected.Set(float64(n))
}

func (p *PrometheusRecorder) IncCollectionOutcome(outcome OutcomeLabel) {
	if p == nil || p.outcomes == nil {
		return
	}
	p.outcomes.WithLabelValues(string(outcome)).Inc()
}
