package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Service metrics
	ServiceTransitions *prometheus.CounterVec
	ServiceUp          *prometheus.GaugeVec
	LogLines           *prometheus.CounterVec

	// Run metrics
	RunOutputLines *prometheus.CounterVec
	RunExits       *prometheus.CounterVec

	// Backend errors by scope
	BackendErrors *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSDropped     prometheus.Counter

	startTime time.Time

	// Snapshot for the health endpoint
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current values for the JSON API
type Snapshot struct {
	TotalRequests int64   `json:"totalRequests"`
	TotalErrors   int64   `json:"totalErrors"`
	AvgLatencyMs  float64 `json:"avgLatencyMs"`
	BackendErrors int64   `json:"backendErrors"`
	UptimeSec     int64   `json:"uptimeSec"`

	totalDuration float64
}

// NewMetrics creates a collector backed by its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "controlroom_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "controlroom_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),

		ServiceTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "controlroom_service_transitions_total",
				Help: "Service lifecycle transitions by target state",
			},
			[]string{"service", "state"},
		),
		ServiceUp: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "controlroom_service_up",
				Help: "1 while a service is running",
			},
			[]string{"service"},
		),
		LogLines: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "controlroom_service_log_lines_total",
				Help: "Captured service output lines",
			},
			[]string{"service", "stream", "level"},
		),

		RunOutputLines: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "controlroom_run_output_lines_total",
				Help: "Streamed run output lines",
			},
			[]string{"stream"},
		),
		RunExits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "controlroom_run_exits_total",
				Help: "Finished runs by outcome",
			},
			[]string{"outcome"},
		),

		BackendErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "controlroom_backend_errors_total",
				Help: "Background failures by scope",
			},
			[]string{"scope"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "controlroom_ws_connections",
				Help: "Number of active WebSocket observers",
			},
		),
		WSDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "controlroom_ws_dropped_events_total",
				Help: "Events dropped for slow WebSocket observers",
			},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "controlroom_uptime_seconds",
			Help: "Server uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRuns exposes the number of active runs through fn
func (m *Metrics) ObserveRuns(fn func() int) {
	promauto.With(m.registry).NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "controlroom_runs_active",
			Help: "Number of active runs",
		},
		func() float64 { return float64(fn()) },
	)
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, statusLabel(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status >= 400 {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}

// IncWSDropped counts an event dropped for a slow observer
func (m *Metrics) IncWSDropped() {
	m.WSDropped.Inc()
}

// GetSnapshot returns current values for the JSON API
func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	s := m.snapshot
	m.mu.RUnlock()

	if s.TotalRequests > 0 {
		s.AvgLatencyMs = s.totalDuration / float64(s.TotalRequests) * 1000
	}
	s.UptimeSec = int64(time.Since(m.startTime) / time.Second)
	return s
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
