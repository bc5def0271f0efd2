package prehook

import "errors"

// Sentinel errors returned by prehook operations.
var (
	// ErrNoConfigService is returned when a Prehook is created without a
	// config service.
	ErrNoConfigService = errors.New("prehook: config service is required")

	// ErrDuplicateTrigger is returned when two blocking endpoints in the
	// same deployment plan claim the same event type.
	ErrDuplicateTrigger = errors.New("prehook: blocking trigger already claimed in this plan")

	// ErrInvalidTriggerType is returned when an endpoint's event type is
	// outside the blocking event families. Upstream filtering should make
	// this unreachable; hitting it indicates a contract violation.
	ErrInvalidTriggerType = errors.New("prehook: invalid blocking trigger type")

	// ErrServiceClosed is returned when a config service operation is
	// attempted after the service is closed.
	ErrServiceClosed = errors.New("prehook: config service is closed")
)
