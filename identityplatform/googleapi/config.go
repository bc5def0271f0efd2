// Package googleapi implements identityplatform.ConfigService against the
// Identity Toolkit admin API.
package googleapi

import (
	"time"

	env "github.com/caarlos0/env/v11"
)

// Config holds client configuration, typically parsed from the environment.
type Config struct {
	// BaseURL is the admin API base URL.
	BaseURL string `env:"IDENTITY_TOOLKIT_URL" envDefault:"https://identitytoolkit.googleapis.com"`

	// EmulatorHost points the client at a local auth emulator instead of
	// the production API. Emulator requests use the well-known owner token
	// and skip the real token source.
	EmulatorHost string `env:"AUTH_EMULATOR_HOST" envDefault:""`

	// RequestTimeout is the HTTP timeout per API call.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	// RateLimit caps config API calls per second per project.
	// 0 disables throttling.
	RateLimit int `env:"RATE_LIMIT" envDefault:"10"`
}

// ConfigFromEnv parses a Config from PREHOOK_-prefixed environment variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	err := env.ParseWithOptions(&cfg, env.Options{
		Prefix: "PREHOOK_",
	})
	return cfg, err
}
