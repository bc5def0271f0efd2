package prehook

import (
	"log/slog"

	"github.com/authgate/prehook/identityplatform"
	"github.com/authgate/prehook/observability"
)

// Option configures a Prehook instance.
type Option func(*Prehook) error

// WithConfigService sets the blocking-config backing service. Required.
func WithConfigService(svc identityplatform.ConfigService) Option {
	return func(p *Prehook) error {
		p.svc = svc
		return nil
	}
}

// WithLogger sets the structured logger for the Prehook instance.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prehook) error {
		p.logger = logger
		return nil
	}
}

// WithMetrics sets the metric instruments recorded by registrar operations.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Prehook) error {
		p.metrics = m
		return nil
	}
}

// WithTracer sets the tracer used to span registrar operations.
func WithTracer(t *observability.Tracer) Option {
	return func(p *Prehook) error {
		p.tracer = t
		return nil
	}
}

// WithValidator sets a wire-shape validator run against every patched
// config before it is written back.
func WithValidator(v *identityplatform.Validator) Option {
	return func(p *Prehook) error {
		p.validator = v
		return nil
	}
}
