package secureelement

import "errors"

var (
	// ErrSlotNotProvisioned stands in for a secure element reporting
	// that the requested root-secret slot has never been provisioned.
	// SimSession never returns it: it provisions every slot on first
	// use.
	ErrSlotNotProvisioned = errors.New("secureelement: slot not provisioned")

	// ErrCommFailure stands in for the hardware-communication failures
	// a real secure element driver can report (bus error, timeout,
	// NACK). SimSession never returns it; it exists so callers can
	// match on it regardless of which Session implementation is wired
	// in.
	ErrCommFailure = errors.New("secureelement: communication failure")
)
