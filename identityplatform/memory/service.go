// Package memory provides an in-memory ConfigService implementation for
// unit testing.
package memory

import (
	"context"
	"sync"

	prehook "github.com/authgate/prehook"
	"github.com/authgate/prehook/identityplatform"
)

// compile-time interface check.
var _ identityplatform.ConfigService = (*Service)(nil)

// Service is an in-memory implementation of identityplatform.ConfigService
// for testing. All reads and writes deep-copy so callers can never mutate
// stored state through aliased pointers.
type Service struct {
	mu sync.RWMutex

	configs map[string]*identityplatform.BlockingConfig // keyed by project ID
	writes  int
	closed  bool
}

// New creates a new in-memory config service.
func New() *Service {
	return &Service{
		configs: make(map[string]*identityplatform.BlockingConfig),
	}
}

// GetBlockingConfig returns a copy of the stored config, or an empty config
// for projects that have never been written.
func (s *Service) GetBlockingConfig(_ context.Context, projectID string) (*identityplatform.BlockingConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, prehook.ErrServiceClosed
	}

	cfg, ok := s.configs[projectID]
	if !ok {
		return &identityplatform.BlockingConfig{}, nil
	}
	return cfg.Clone(), nil
}

// SetBlockingConfig stores a copy of cfg for the project.
func (s *Service) SetBlockingConfig(_ context.Context, projectID string, cfg *identityplatform.BlockingConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return prehook.ErrServiceClosed
	}

	s.configs[projectID] = cfg.Clone()
	s.writes++
	return nil
}

// Ping reports whether the service is still open.
func (s *Service) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return prehook.ErrServiceClosed
	}
	return nil
}

// Close marks the service as closed.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Writes returns the number of successful SetBlockingConfig calls. Tests use
// it to assert that no-op unregisters never write.
func (s *Service) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
