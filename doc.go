// Package prehook manages identity-platform auth-blocking functions from a
// cloud-function deployment pipeline.
//
// Prehook is a library — not a service. Import it into your deployment
// orchestrator to validate blocking triggers across a deployment plan, merge
// token-forwarding options, and reconcile trigger registrations against the
// remote blocking-functions configuration resource.
//
// Key features:
//   - At-most-one blocking endpoint per event type within a plan
//   - Plan-wide union of token-forwarding flags, copied back onto endpoints
//   - Read-modify-write registration against a pluggable ConfigService
//     (Identity Toolkit API, Redis, MongoDB, Memory)
//   - Compare-and-clear unregistration that never clobbers a newer trigger
//
// Quick start:
//
//	p, err := prehook.New(
//	    prehook.WithConfigService(svc),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := prehook.ValidateBlockingTrigger(ep, plan); err != nil {
//	    return err
//	}
//	prehook.CopyIdentityPlatformOptions(ep, plan)
//
//	if err := p.RegisterTrigger(ctx, ep, false); err != nil {
//	    return err
//	}
package prehook
