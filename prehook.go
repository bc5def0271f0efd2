package prehook

import (
	"log/slog"

	"github.com/authgate/prehook/identityplatform"
	"github.com/authgate/prehook/observability"
)

// Prehook is the auth-blocking function registrar.
type Prehook struct {
	svc       identityplatform.ConfigService
	validator *identityplatform.Validator
	metrics   *observability.Metrics
	tracer    *observability.Tracer
	logger    *slog.Logger
}

// New creates a new Prehook with the given options.
func New(opts ...Option) (*Prehook, error) {
	p := &Prehook{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	if p.svc == nil {
		return nil, ErrNoConfigService
	}
	return p, nil
}

// ConfigService returns the underlying config service.
func (p *Prehook) ConfigService() identityplatform.ConfigService {
	return p.svc
}
