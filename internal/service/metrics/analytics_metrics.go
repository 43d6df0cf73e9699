package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// UpstreamLatency tracks calls made by analyzers to remote services.
	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stockpulse",
			Subsystem: "upstream",
			Name:      "latency_seconds",
			Help:      "Latency of upstream calls made by analyzers",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)

	UpstreamErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockpulse",
			Subsystem: "upstream",
			Name:      "errors_total",
			Help:      "Failed upstream calls by endpoint",
		},
		[]string{"service", "endpoint"},
	)
)

// Register adds the upstream collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(UpstreamLatency, UpstreamErrors)
	})
}

// ObserveUpstream records one upstream call. Unregistered collectors still count,
// they are just not exported.
func ObserveUpstream(service, endpoint string, started time.Time, err error) {
	UpstreamLatency.WithLabelValues(service, endpoint).Observe(time.Since(started).Seconds())
	if err != nil {
		UpstreamErrors.WithLabelValues(service, endpoint).Inc()
	}
}
