package observability

import (
	"testing"

	"github.com/xraph/go-utils/metrics"
)

func TestNewMetricsCreatesInstruments(t *testing.T) {
	m := NewMetrics(metrics.NewMetricsCollector("test"))

	if m.RegistrationsTotal == nil {
		t.Fatal("RegistrationsTotal should not be nil")
	}
	if m.UnregistrationsTotal == nil {
		t.Fatal("UnregistrationsTotal should not be nil")
	}
	if m.UnregisterNoopsTotal == nil {
		t.Fatal("UnregisterNoopsTotal should not be nil")
	}
	if m.ConfigCallLatency == nil {
		t.Fatal("ConfigCallLatency should not be nil")
	}
}

func TestRecordHelpers(t *testing.T) {
	m := NewMetrics(metrics.NewMetricsCollector("test"))

	// Helpers must accept every label combination without panicking.
	m.RecordRegistration("beforeCreate", false)
	m.RecordRegistration("beforeSignIn", true)
	m.RecordUnregistration("beforeCreate", false)
	m.RecordUnregistration("beforeCreate", true)
	m.RecordConfigCall(0.25)
}
