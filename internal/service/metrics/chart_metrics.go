package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	EndpointLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "natal",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of chart endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	EndpointErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "natal",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by chart endpoint",
		},
		[]string{"endpoint"},
	)

	StreamClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "natal",
			Subsystem: "stream",
			Name:      "clients",
			Help:      "Connected sky stream clients",
		},
	)

	StreamFrames = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "natal",
			Subsystem: "stream",
			Name:      "frames_total",
			Help:      "Charts pushed to sky stream clients",
		},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(EndpointLatency, EndpointErrors, StreamClients, StreamFrames)
	})
}

// ObserveEndpoint records latency since start and counts failures.
func ObserveEndpoint(endpoint string, start time.Time, failed bool) {
	EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if failed {
		EndpointErrors.WithLabelValues(endpoint).Inc()
	}
}
