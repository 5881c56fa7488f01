package client

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

// Metrics holds the client's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	uploadBytes  prometheus.Counter
	breakerState prometheus.Gauge
}

// NewMetrics registers the client collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "foldershare_client_requests_total",
			Help: "Total number of API requests by operation and status code",
		}, []string{"op", "method", "status_code"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "foldershare_client_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"op", "method"}),
		uploadBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "foldershare_client_upload_bytes_total",
			Help: "Total file bytes successfully uploaded",
		}),
		breakerState: f.NewGauge(prometheus.GaugeOpts{
			Name: "foldershare_client_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		}),
	}
}

func (m *Metrics) observe(op, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(op, method, code).Inc()
	m.duration.WithLabelValues(op, method).Observe(d.Seconds())
}

func (m *Metrics) uploaded(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.uploadBytes.Add(float64(n))
}

func (m *Metrics) breaker(s gobreaker.State) {
	if m == nil {
		return
	}
	m.breakerState.Set(float64(s))
}
