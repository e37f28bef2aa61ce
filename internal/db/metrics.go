package db

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/openhms/hms/internal/tenant"
)

const (
	metricsNamespace = "hms"
	metricsSubsystem = "db"

	labelKind       = "kind"
	labelHospital   = "hospital"
	labelConnection = "connection"

	kindDedicated = "dedicated"
	kindFallback  = "fallback"
)

// Metrics of the connection layer. A nil *Metrics records nothing.
type Metrics struct {
	connections     *prometheus.GaugeVec
	fallbacks       *prometheus.CounterVec
	acquireTimeouts *prometheus.CounterVec
	syncFailures    *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "registry_connections",
			Help:      "Hospitals with a cached connection, by dedicated or fallback",
		}, []string{labelKind}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "fallback_total",
			Help:      "Hospitals routed to the central database for lack of a connection string",
		}, []string{labelHospital}),
		acquireTimeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "acquire_timeouts_total",
			Help:      "Statements that gave up waiting for a pooled connection",
		}, []string{labelConnection}),
		syncFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "sync_failures_total",
			Help:      "Failed structural synchronisations per hospital",
		}, []string{labelHospital}),
	}

	if reg != nil {
		reg.MustRegister(m.connections, m.fallbacks, m.acquireTimeouts, m.syncFailures)
	}

	return m
}

func (m *Metrics) connectionCached(fallback bool) {
	if m == nil {
		return
	}

	kind := kindDedicated
	if fallback {
		kind = kindFallback
	}

	m.connections.WithLabelValues(kind).Inc()
}

func (m *Metrics) fallback(id tenant.ID) {
	if m == nil {
		return
	}

	m.fallbacks.WithLabelValues(id.String()).Inc()
}

func (m *Metrics) acquireTimeout(connection string) {
	if m == nil {
		return
	}

	m.acquireTimeouts.WithLabelValues(connection).Inc()
}

func (m *Metrics) syncFailed(id tenant.ID) {
	if m == nil {
		return
	}

	m.syncFailures.WithLabelValues(id.String()).Inc()
}
