package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "devicedb_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	deviceOps    *prometheus.CounterVec
)

// Register registers the collectors once on the default registerer.
func Register() {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency by route and method",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		)
		deviceOps = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "device_operations_total",
				Help: "Device use case executions by operation and result",
			},
			[]string{"operation", "result"},
		)
		prometheus.MustRegister(httpRequests, httpLatency, deviceOps)
	})
}

func ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	Register()
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpLatency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ObserveDeviceOperation counts a use case run; err == nil is a success.
func ObserveDeviceOperation(operation string, err error) {
	Register()
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	deviceOps.WithLabelValues(operation, result).Inc()
}
