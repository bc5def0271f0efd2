package prehook

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/authgate/prehook/backend"
	"github.com/authgate/prehook/id"
	"github.com/authgate/prehook/identityplatform"
)

// ValidateBlockingTrigger checks that no other blocking endpoint in the plan
// claims the same event type, then folds the endpoint's token-forwarding
// options into the plan's merged identity-platform options. The merged
// options are initialized to all-false when this is the first blocking
// endpoint processed for the plan.
func ValidateBlockingTrigger(ep *backend.Endpoint, plan *backend.Backend) error {
	if ep.BlockingTrigger == nil {
		return fmt.Errorf("%w: endpoint %q has no blocking trigger", ErrInvalidTriggerType, ep.ID)
	}

	for _, other := range plan.BlockingEndpoints() {
		if sameEndpoint(other, ep) {
			continue
		}
		if other.BlockingTrigger.EventType == ep.BlockingTrigger.EventType {
			return fmt.Errorf("%w: %s claimed by both %q and %q",
				ErrDuplicateTrigger, ep.BlockingTrigger.EventType, other.ID, ep.ID)
		}
	}

	merged := plan.Options.IdentityPlatform
	if merged == nil {
		merged = &backend.IdentityPlatformOptions{}
		plan.Options.IdentityPlatform = merged
	}

	opts := ep.BlockingTrigger.Options
	merged.AccessToken = merged.AccessToken || opts.AccessToken
	merged.IDToken = merged.IDToken || opts.IDToken
	merged.RefreshToken = merged.RefreshToken || opts.RefreshToken

	return nil
}

// CopyIdentityPlatformOptions overwrites the endpoint's token-forwarding
// options with the plan's merged options. Endpoints without a blocking
// trigger and plans without merged options are left untouched and treated
// as all-false respectively. Idempotent.
func CopyIdentityPlatformOptions(ep *backend.Endpoint, plan *backend.Backend) {
	if ep.BlockingTrigger == nil {
		return
	}

	var merged backend.IdentityPlatformOptions
	if plan.Options.IdentityPlatform != nil {
		merged = *plan.Options.IdentityPlatform
	}
	ep.BlockingTrigger.Options = merged
}

func sameEndpoint(a, b *backend.Endpoint) bool {
	return a.ID == b.ID && a.Project == b.Project && a.Region == b.Region
}

// RegisterTrigger registers the endpoint's function URI in its event
// family's trigger slot on the remote config, preserving the other slot.
// A fresh registration (update == false) also overwrites the config's
// forward-inbound-credentials flags with the endpoint's options; updates
// change the URI alone. The endpoint URI must be non-empty; that is the
// caller's precondition, established by the deploy stage.
func (p *Prehook) RegisterTrigger(ctx context.Context, ep *backend.Endpoint, update bool) error {
	if ep.BlockingTrigger == nil {
		return fmt.Errorf("%w: endpoint %q has no blocking trigger", ErrInvalidTriggerType, ep.ID)
	}

	eventType := ep.BlockingTrigger.EventType
	opID := id.NewOperationID()

	var span trace.Span
	if p.tracer != nil {
		ctx, span = p.tracer.StartRegisterSpan(ctx, opID.String(), ep.Project, ep.ID, eventType)
	}

	cfg, err := p.getConfig(ctx, ep.Project)
	if err != nil {
		return p.endSpan(span, err)
	}

	family := backend.Classify(eventType)
	triggers := cfg.EnsureTriggers()
	switch family {
	case backend.FamilyBeforeCreate:
		triggers.BeforeCreate = &identityplatform.BlockingFunction{FunctionURI: ep.URI}
	case backend.FamilyBeforeSignIn:
		triggers.BeforeSignIn = &identityplatform.BlockingFunction{FunctionURI: ep.URI}
	default:
		return p.endSpan(span, fmt.Errorf("%w: %q", ErrInvalidTriggerType, eventType))
	}

	if !update {
		opts := ep.BlockingTrigger.Options
		cfg.ForwardInboundCredentials = &identityplatform.ForwardInboundCredentials{
			IDToken:      identityplatform.StringBool(opts.IDToken),
			AccessToken:  identityplatform.StringBool(opts.AccessToken),
			RefreshToken: identityplatform.StringBool(opts.RefreshToken),
		}
	}

	if err := p.setConfig(ctx, ep.Project, cfg); err != nil {
		return p.endSpan(span, err)
	}

	if p.metrics != nil {
		p.metrics.RecordRegistration(family.String(), update)
	}

	p.logger.DebugContext(ctx, "blocking trigger registered",
		"operation_id", opID,
		"project", ep.Project,
		"endpoint", ep.ID,
		"family", family.String(),
		"update", update,
	)

	return p.endSpan(span, nil)
}

// UnregisterTrigger clears the endpoint's trigger slot on the remote config,
// but only when the slot still holds this endpoint's URI: an empty slot or a
// URI registered by a newer endpoint makes the call a no-op with no write.
// The other slot is preserved either way.
func (p *Prehook) UnregisterTrigger(ctx context.Context, ep *backend.Endpoint) error {
	if ep.BlockingTrigger == nil {
		return fmt.Errorf("%w: endpoint %q has no blocking trigger", ErrInvalidTriggerType, ep.ID)
	}

	eventType := ep.BlockingTrigger.EventType
	opID := id.NewOperationID()

	var span trace.Span
	if p.tracer != nil {
		ctx, span = p.tracer.StartUnregisterSpan(ctx, opID.String(), ep.Project, ep.ID, eventType)
	}

	cfg, err := p.getConfig(ctx, ep.Project)
	if err != nil {
		return p.endSpan(span, err)
	}

	family := backend.Classify(eventType)
	if family == backend.FamilyUnknown {
		return p.endSpan(span, fmt.Errorf("%w: %q", ErrInvalidTriggerType, eventType))
	}

	var slot *identityplatform.BlockingFunction
	if cfg.Triggers != nil {
		switch family {
		case backend.FamilyBeforeCreate:
			slot = cfg.Triggers.BeforeCreate
		case backend.FamilyBeforeSignIn:
			slot = cfg.Triggers.BeforeSignIn
		}
	}

	// Compare-and-clear: a stale unregister must not clobber a trigger that
	// another endpoint registered since.
	registered := slot.RegisteredURI()
	if registered == "" || registered != ep.URI {
		if p.metrics != nil {
			p.metrics.RecordUnregistration(family.String(), true)
		}
		p.logger.DebugContext(ctx, "unregister skipped",
			"operation_id", opID,
			"project", ep.Project,
			"endpoint", ep.ID,
			"family", family.String(),
			"registered_uri", registered,
		)
		return p.endSpan(span, nil)
	}

	switch family {
	case backend.FamilyBeforeCreate:
		cfg.Triggers.BeforeCreate = &identityplatform.BlockingFunction{}
	case backend.FamilyBeforeSignIn:
		cfg.Triggers.BeforeSignIn = &identityplatform.BlockingFunction{}
	}

	if err := p.setConfig(ctx, ep.Project, cfg); err != nil {
		return p.endSpan(span, err)
	}

	if p.metrics != nil {
		p.metrics.RecordUnregistration(family.String(), false)
	}

	p.logger.DebugContext(ctx, "blocking trigger unregistered",
		"operation_id", opID,
		"project", ep.Project,
		"endpoint", ep.ID,
		"family", family.String(),
	)

	return p.endSpan(span, nil)
}

// getConfig reads the remote config, timing the call. Fetch failures
// propagate unwrapped.
func (p *Prehook) getConfig(ctx context.Context, projectID string) (*identityplatform.BlockingConfig, error) {
	start := time.Now()
	cfg, err := p.svc.GetBlockingConfig(ctx, projectID)
	if p.metrics != nil {
		p.metrics.RecordConfigCall(time.Since(start).Seconds())
	}
	return cfg, err
}

// setConfig validates the patched config when a validator is configured,
// then writes it back. Write failures propagate unwrapped.
func (p *Prehook) setConfig(ctx context.Context, projectID string, cfg *identityplatform.BlockingConfig) error {
	if p.validator != nil {
		if err := p.validator.Validate(cfg); err != nil {
			return fmt.Errorf("prehook: config patch failed validation: %w", err)
		}
	}

	start := time.Now()
	err := p.svc.SetBlockingConfig(ctx, projectID, cfg)
	if p.metrics != nil {
		p.metrics.RecordConfigCall(time.Since(start).Seconds())
	}
	return err
}

func (p *Prehook) endSpan(span trace.Span, err error) error {
	if p.tracer != nil {
		msg := ""
		if err != nil {
			msg = err.Error()
		}
		p.tracer.EndSpan(span, msg)
	}
	return err
}
