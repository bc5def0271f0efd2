package backend

import "github.com/authgate/prehook/id"

// Endpoint represents one deployable function unit in a deployment plan.
type Endpoint struct {
	// ID is the function identifier, unique within a project and region.
	ID string `json:"id"`

	// Project is the project the function deploys into.
	Project string `json:"project"`

	// Region is the deployment region.
	Region string `json:"region"`

	// URI is the callable HTTPS URI assigned to the function. Empty until
	// the function has been created by the deploy stage.
	URI string `json:"uri,omitempty"`

	// BlockingTrigger is set when this endpoint runs synchronously before
	// an identity-platform auth event. Nil for all other trigger kinds.
	BlockingTrigger *BlockingTrigger `json:"blocking_trigger,omitempty"`
}

// BlockingTrigger describes an auth-blocking trigger on an endpoint.
type BlockingTrigger struct {
	// EventType is one of the Event* constants in this package.
	EventType string `json:"event_type"`

	// Options are the token-forwarding flags this endpoint requested.
	Options IdentityPlatformOptions `json:"options"`
}

// IdentityPlatformOptions are the credential types forwarded to a blocking
// function when its auth event fires.
type IdentityPlatformOptions struct {
	// AccessToken forwards the user's OAuth access token.
	AccessToken bool `json:"access_token"`

	// IDToken forwards the user's OIDC ID token.
	IDToken bool `json:"id_token"`

	// RefreshToken forwards the user's refresh token.
	RefreshToken bool `json:"refresh_token"`
}

// IsBlockingTriggered reports whether this endpoint carries a blocking trigger.
func (ep *Endpoint) IsBlockingTriggered() bool {
	return ep.BlockingTrigger != nil
}

// Backend is one deployment plan: the endpoints being deployed plus options
// shared by every resource in the plan.
type Backend struct {
	// PlanID identifies this planning pass in logs and traces.
	PlanID id.ID `json:"plan_id"`

	// ProjectID is the project this plan deploys into.
	ProjectID string `json:"project_id"`

	// Endpoints are the function units in this plan.
	Endpoints []*Endpoint `json:"endpoints"`

	// Options are resource options shared across the plan.
	Options ResourceOptions `json:"options"`
}

// ResourceOptions holds plan-wide resource options.
type ResourceOptions struct {
	// IdentityPlatform holds the token-forwarding flags merged across all
	// blocking endpoints in the plan. Nil until the first blocking endpoint
	// has been validated; the validation pass initializes it.
	IdentityPlatform *IdentityPlatformOptions `json:"identity_platform,omitempty"`
}

// New creates a deployment plan for the given project.
func New(projectID string, endpoints ...*Endpoint) *Backend {
	return &Backend{
		PlanID:    id.NewPlanID(),
		ProjectID: projectID,
		Endpoints: endpoints,
	}
}

// BlockingEndpoints returns the endpoints in this plan that carry a
// blocking trigger, in plan order.
func (b *Backend) BlockingEndpoints() []*Endpoint {
	var out []*Endpoint
	for _, ep := range b.Endpoints {
		if ep.IsBlockingTriggered() {
			out = append(out, ep)
		}
	}
	return out
}
