// Package redis implements identityplatform.ConfigService on Redis via
// Grove KV. It is intended as a write-through mirror of the remote project
// configuration for local tooling and emulator workflows.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/grove/kv"
	"github.com/xraph/grove/kv/drivers/redisdriver"

	"github.com/authgate/prehook/identityplatform"
)

// compile-time interface check
var _ identityplatform.ConfigService = (*Service)(nil)

// prefixConfig keys one blocking-functions config per project.
const prefixConfig = "prehook:cfg:"

// Service implements identityplatform.ConfigService using Redis via Grove KV.
type Service struct {
	kv  *kv.Store
	rdb goredis.UniversalClient
}

// New creates a new Redis config service backed by Grove KV.
func New(store *kv.Store) *Service {
	return &Service{
		kv:  store,
		rdb: redisdriver.UnwrapClient(store),
	}
}

// GetBlockingConfig loads the stored config for a project. Projects with no
// stored config resolve to an empty config, never a nil one.
func (s *Service) GetBlockingConfig(ctx context.Context, projectID string) (*identityplatform.BlockingConfig, error) {
	raw, err := s.kv.GetRaw(ctx, configKey(projectID))
	if err != nil {
		if isNotFound(err) {
			return &identityplatform.BlockingConfig{}, nil
		}
		return nil, fmt.Errorf("prehook/redis: get config: %w", err)
	}

	var cfg identityplatform.BlockingConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("prehook/redis: decode config: %w", err)
	}
	return &cfg, nil
}

// SetBlockingConfig stores the full config for a project.
func (s *Service) SetBlockingConfig(ctx context.Context, projectID string, cfg *identityplatform.BlockingConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("prehook/redis: marshal config: %w", err)
	}
	if err := s.kv.SetRaw(ctx, configKey(projectID), raw); err != nil {
		return fmt.Errorf("prehook/redis: set config: %w", err)
	}
	return nil
}

// Ping checks Redis connectivity.
func (s *Service) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}

// Close closes the KV store.
func (s *Service) Close() error {
	return s.kv.Close()
}

// configKey returns the primary key for a project's config.
func configKey(projectID string) string {
	return prefixConfig + projectID
}

// isNotFound checks if an error is a KV not-found sentinel.
func isNotFound(err error) bool {
	return errors.Is(err, kv.ErrNotFound) || errors.Is(err, goredis.Nil)
}
