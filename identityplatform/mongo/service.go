// Package mongo implements identityplatform.ConfigService using MongoDB via
// Grove ORM, keyed by project ID. Like the redis driver it serves as a local
// mirror of the remote project configuration.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/authgate/prehook/identityplatform"
)

// colBlockingConfigs holds one document per project.
const colBlockingConfigs = "prehook_blocking_configs"

// Compile-time interface check.
var _ identityplatform.ConfigService = (*Service)(nil)

// Service implements identityplatform.ConfigService using MongoDB via Grove ORM.
type Service struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB config service backed by Grove ORM.
func New(db *grove.DB) *Service {
	return &Service{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Service) DB() *grove.DB { return s.db }

// Migrate creates indexes for the config collection.
func (s *Service) Migrate(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "updated_at", Value: -1}}},
	}

	_, err := s.mdb.Collection(colBlockingConfigs).Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("prehook/mongo: migrate %s indexes: %w", colBlockingConfigs, err)
	}

	return nil
}

// GetBlockingConfig returns the stored config for a project. Projects with
// no stored document resolve to an empty config, never a nil one.
func (s *Service) GetBlockingConfig(ctx context.Context, projectID string) (*identityplatform.BlockingConfig, error) {
	var m configModel

	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": projectID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return &identityplatform.BlockingConfig{}, nil
		}

		return nil, fmt.Errorf("prehook/mongo: get config: %w", err)
	}

	return fromConfigModel(&m)
}

// SetBlockingConfig upserts the full config document for a project.
func (s *Service) SetBlockingConfig(ctx context.Context, projectID string, cfg *identityplatform.BlockingConfig) error {
	m, err := toConfigModel(projectID, cfg)
	if err != nil {
		return err
	}
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": projectID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("prehook/mongo: update config: %w", err)
	}

	if res.MatchedCount() == 0 {
		if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
			return fmt.Errorf("prehook/mongo: insert config: %w", err)
		}
	}

	return nil
}

// Ping checks database connectivity.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Service) Close() error {
	return s.db.Close()
}

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error is the Mongo no-documents sentinel.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
