// Package metrics provides Prometheus metrics for SFTP extension requests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks extended request outcomes, and the last values reported by statvfs and limits.
//
// All metrics use the sftpext_ prefix.
// A nil *Metrics is valid, and records nothing.
type Metrics struct {
	// RequestsTotal counts extended requests by extension and result
	RequestsTotal *prometheus.CounterVec

	// RequestDuration tracks latency distribution
	RequestDuration *prometheus.HistogramVec

	// StatVFS holds the last statvfs fields by path and field
	StatVFS *prometheus.GaugeVec

	// Limits holds the last server limits by field
	Limits *prometheus.GaugeVec
}

// New creates the metrics and registers them with reg.
// Panics if registration fails (expected during initialization only).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sftpext_requests_total",
				Help: "Total SFTP extended requests by extension and result",
			},
			[]string{"extension", "result"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sftpext_request_duration_seconds",
				Help:    "SFTP extended request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"extension"},
		),
		StatVFS: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sftpext_statvfs",
				Help: "Last filesystem statistics reported by statvfs@openssh.com",
			},
			[]string{"path", "field"},
		),
		Limits: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sftpext_limits",
				Help: "Last transfer limits reported by limits@openssh.com, zero means no limit",
			},
			[]string{"field"},
		),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.StatVFS,
		m.Limits,
	)

	return m
}

// ObserveRequest records an extended request completion.
func (m *Metrics) ObserveRequest(extension, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(extension, result).Inc()
	m.RequestDuration.WithLabelValues(extension).Observe(d.Seconds())
}

// SetStatVFS records the statvfs fields for path, keyed by field name.
func (m *Metrics) SetStatVFS(path string, fields map[string]uint64) {
	if m == nil {
		return
	}
	for field, v := range fields {
		m.StatVFS.WithLabelValues(path, field).Set(float64(v))
	}
}

// SetLimits records the server limits, keyed by field name.
func (m *Metrics) SetLimits(fields map[string]uint64) {
	if m == nil {
		return
	}
	for field, v := range fields {
		m.Limits.WithLabelValues(field).Set(float64(v))
	}
}
