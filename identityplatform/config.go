// Package identityplatform models the remote blocking-functions configuration
// resource and defines the ConfigService contract its drivers implement.
package identityplatform

import "fmt"

// BlockingConfig is the blocking-functions section of a project's
// identity-platform configuration.
type BlockingConfig struct {
	// Triggers holds the per-event trigger slots.
	Triggers *Triggers `json:"triggers,omitempty"`

	// ForwardInboundCredentials selects which credential types are passed
	// to the blocking functions when their events fire.
	ForwardInboundCredentials *ForwardInboundCredentials `json:"forwardInboundCredentials,omitempty"`
}

// Triggers holds one slot per blocking event family.
type Triggers struct {
	// BeforeCreate is the trigger slot for the before-create family.
	BeforeCreate *BlockingFunction `json:"beforeCreate,omitempty"`

	// BeforeSignIn is the trigger slot for the before-sign-in family.
	BeforeSignIn *BlockingFunction `json:"beforeSignIn,omitempty"`
}

// BlockingFunction is one registered trigger slot. A slot with an empty
// FunctionURI is unregistered.
type BlockingFunction struct {
	// FunctionURI is the callable HTTPS URI of the registered function.
	FunctionURI string `json:"functionUri,omitempty"`
}

// ForwardInboundCredentials selects forwarded credential types. The wire
// format uses string-typed booleans, hence StringBool.
type ForwardInboundCredentials struct {
	IDToken      StringBool `json:"idToken"`
	AccessToken  StringBool `json:"accessToken"`
	RefreshToken StringBool `json:"refreshToken"`
}

// StringBool is a boolean that marshals as the JSON strings "true"/"false",
// matching the wire format of the remote config resource.
type StringBool bool

// MarshalJSON implements json.Marshaler.
func (s StringBool) MarshalJSON() ([]byte, error) {
	if s {
		return []byte(`"true"`), nil
	}
	return []byte(`"false"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. Bare booleans are accepted for
// robustness against config blobs written by other tools.
func (s *StringBool) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"true"`, `true`:
		*s = true
	case `"false"`, `false`, `null`, `""`:
		*s = false
	default:
		return fmt.Errorf("identityplatform: invalid string boolean %s", data)
	}
	return nil
}

// RegisteredURI returns the function URI held by a trigger slot, or the
// empty string when the slot is absent or unregistered.
func (t *BlockingFunction) RegisteredURI() string {
	if t == nil {
		return ""
	}
	return t.FunctionURI
}

// EnsureTriggers returns the config's trigger slots, allocating them when
// the remote config had none.
func (c *BlockingConfig) EnsureTriggers() *Triggers {
	if c.Triggers == nil {
		c.Triggers = &Triggers{}
	}
	return c.Triggers
}

// Clone returns a deep copy of the config.
func (c *BlockingConfig) Clone() *BlockingConfig {
	if c == nil {
		return nil
	}

	out := &BlockingConfig{}
	if c.Triggers != nil {
		out.Triggers = &Triggers{}
		if c.Triggers.BeforeCreate != nil {
			bc := *c.Triggers.BeforeCreate
			out.Triggers.BeforeCreate = &bc
		}
		if c.Triggers.BeforeSignIn != nil {
			bs := *c.Triggers.BeforeSignIn
			out.Triggers.BeforeSignIn = &bs
		}
	}
	if c.ForwardInboundCredentials != nil {
		creds := *c.ForwardInboundCredentials
		out.ForwardInboundCredentials = &creds
	}
	return out
}
