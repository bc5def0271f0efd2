package identityplatform

import "context"

// ConfigService is the contract for reading and writing a project's
// blocking-functions configuration. The remote resource is a single shared
// object per project; Get and Set carry no concurrency token, so callers
// serialize deployments per project.
type ConfigService interface {
	// GetBlockingConfig fetches the current config for a project. Projects
	// with no blocking functions yield an empty, non-nil config.
	GetBlockingConfig(ctx context.Context, projectID string) (*BlockingConfig, error)

	// SetBlockingConfig persists a full replacement config for a project.
	SetBlockingConfig(ctx context.Context, projectID string, cfg *BlockingConfig) error

	// Ping checks connectivity to the backing service.
	Ping(ctx context.Context) error

	// Close releases the backing connection.
	Close() error
}
