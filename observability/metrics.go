package observability

import (
	gu "github.com/xraph/go-utils/metrics"
)

// Metrics holds metric instruments for prehook, backed by any go-utils
// MetricFactory.
type Metrics struct {
	RegistrationsTotal   gu.Counter
	UnregistrationsTotal gu.Counter
	UnregisterNoopsTotal gu.Counter
	ConfigCallLatency    gu.Histogram
}

// NewMetrics creates prehook metric instruments using the supplied factory.
// Pass metrics.NewMetricsCollector() for standalone usage.
func NewMetrics(factory gu.MetricFactory) *Metrics {
	return &Metrics{
		RegistrationsTotal:   factory.Counter("prehook_registrations_total"),
		UnregistrationsTotal: factory.Counter("prehook_unregistrations_total"),
		UnregisterNoopsTotal: factory.Counter("prehook_unregister_noops_total"),
		ConfigCallLatency:    factory.Histogram("prehook_config_call_latency_seconds"),
	}
}

// RecordRegistration records a completed trigger registration.
func (m *Metrics) RecordRegistration(family string, update bool) {
	status := "create"
	if update {
		status = "update"
	}
	m.RegistrationsTotal.WithLabels(map[string]string{"family": family, "status": status}).Inc()
}

// RecordUnregistration records an unregister call. No-ops (stale URI or
// already-empty slot) count separately.
func (m *Metrics) RecordUnregistration(family string, noop bool) {
	if noop {
		m.UnregisterNoopsTotal.WithLabels(map[string]string{"family": family}).Inc()
		return
	}
	m.UnregistrationsTotal.WithLabels(map[string]string{"family": family}).Inc()
}

// RecordConfigCall records the latency of one remote config read or write.
func (m *Metrics) RecordConfigCall(latencySeconds float64) {
	m.ConfigCallLatency.Observe(latencySeconds)
}
