// Package metrics exposes Prometheus counters for campaign runs and the
// bundled relay. Long-running commands (a campaign send, the relay
// server) can serve them over HTTP while they are in flight.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	globalMetrics *Metrics
	globalMu      sync.RWMutex
)

// Metrics holds all Prometheus metrics for coldreach.
type Metrics struct {
	// Campaign counters
	CampaignsTotal      *prometheus.CounterVec // labeled by mode: real|simulated
	ContactsSentTotal   prometheus.Counter
	ContactsFailedTotal prometheus.Counter

	// Dispatch counters
	DispatchAttemptsTotal *prometheus.CounterVec // labeled by path: direct|relayed, outcome: success|failure

	// Relay counters
	RelayRequestsTotal *prometheus.CounterVec // labeled by outcome

	registry *prometheus.Registry
}

// New creates a Metrics instance with all metrics registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		CampaignsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coldreach_campaigns_total",
				Help: "Total number of completed campaign runs",
			},
			[]string{"mode"},
		),
		ContactsSentTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "coldreach_contacts_sent_total",
				Help: "Total number of contacts with a successful delivery outcome",
			},
		),
		ContactsFailedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "coldreach_contacts_failed_total",
				Help: "Total number of contacts with a failed delivery outcome",
			},
		),
		DispatchAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coldreach_dispatch_attempts_total",
				Help: "Total outbound request attempts by route and outcome",
			},
			[]string{"path", "outcome"},
		),
		RelayRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coldreach_relay_requests_total",
				Help: "Total number of requests handled by the bundled relay",
			},
			[]string{"outcome"},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.CampaignsTotal,
		m.ContactsSentTotal,
		m.ContactsFailedTotal,
		m.DispatchAttemptsTotal,
		m.RelayRequestsTotal,
	)

	return m
}

// Registry returns the underlying registry for the HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Set installs the global metrics instance.
func Set(m *Metrics) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalMetrics = m
}

// Get returns the global metrics instance, or nil when metrics are
// disabled. Callers must nil-check.
func Get() *Metrics {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalMetrics
}
