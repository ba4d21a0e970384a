package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline's Prometheus instruments. Pass a nil registerer
// to get working but unregistered instruments, which keeps tests independent
// of the default registry.
type Metrics struct {
	ParsesTotal   *prometheus.CounterVec
	CacheEvents   *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
}

// Cache event label values.
const (
	CacheEventHit   = "hit"
	CacheEventMiss  = "miss"
	CacheEventStore = "store"
	CacheEventSkip  = "skip"
)

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ParsesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payslip_parses_total",
			Help: "Pipeline runs by outcome (success or the failing stage).",
		}, []string{"outcome"}),
		CacheEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payslip_cache_events_total",
			Help: "Result cache activity: hit, miss, store, skip.",
		}, []string{"event"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "payslip_stage_duration_seconds",
			Help:    "Wall time spent per pipeline stage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
	}
}
