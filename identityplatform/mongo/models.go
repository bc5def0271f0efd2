package mongo

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/authgate/prehook/identityplatform"
)

// configModel stores the blocking-functions section as a raw JSON document
// so the wire shape (string-typed booleans included) survives round trips
// unchanged.
type configModel struct {
	grove.BaseModel `grove:"table:prehook_blocking_configs"`

	ProjectID string          `grove:"id,pk"      bson:"_id"`
	Config    json.RawMessage `grove:"config"     bson:"config"`
	UpdatedAt time.Time       `grove:"updated_at" bson:"updated_at"`
}

func toConfigModel(projectID string, cfg *identityplatform.BlockingConfig) (*configModel, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("prehook/mongo: marshal config: %w", err)
	}

	return &configModel{
		ProjectID: projectID,
		Config:    raw,
	}, nil
}

func fromConfigModel(m *configModel) (*identityplatform.BlockingConfig, error) {
	var cfg identityplatform.BlockingConfig
	if err := json.Unmarshal(m.Config, &cfg); err != nil {
		return nil, fmt.Errorf("prehook/mongo: decode config for %q: %w", m.ProjectID, err)
	}

	return &cfg, nil
}
