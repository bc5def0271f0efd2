package identityplatform

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// blockingConfigSchema is the wire shape of the blocking-functions config.
// Writes are validated against it before they reach the shared project
// config resource.
const blockingConfigSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"triggers": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"beforeCreate": {"$ref": "#/$defs/trigger"},
				"beforeSignIn": {"$ref": "#/$defs/trigger"}
			}
		},
		"forwardInboundCredentials": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"idToken": {"$ref": "#/$defs/stringBool"},
				"accessToken": {"$ref": "#/$defs/stringBool"},
				"refreshToken": {"$ref": "#/$defs/stringBool"}
			}
		}
	},
	"$defs": {
		"trigger": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"functionUri": {"type": "string"}
			}
		},
		"stringBool": {"enum": ["true", "false"]}
	}
}`

const schemaURL = "prehook://schema/blocking-config"

// Validator validates blocking config blobs against the wire schema.
type Validator struct {
	once     sync.Once
	compiled *jsonschema.Schema
	compErr  error
}

// NewValidator creates a config validator. The schema compiles lazily on
// first use and is cached for the validator's lifetime.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks that cfg conforms to the blocking config wire shape.
func (v *Validator) Validate(cfg *BlockingConfig) error {
	compiled, err := v.compile()
	if err != nil {
		return fmt.Errorf("schema compilation error: %w", err)
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	return compiled.Validate(doc)
}

func (v *Validator) compile() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		var doc any
		if err := json.Unmarshal([]byte(blockingConfigSchema), &doc); err != nil {
			v.compErr = fmt.Errorf("unmarshal schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			v.compErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		v.compiled, v.compErr = c.Compile(schemaURL)
	})

	return v.compiled, v.compErr
}
