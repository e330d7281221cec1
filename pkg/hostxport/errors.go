package hostxport

import "errors"

// Sense-style categories a host mass-storage transport maps every
// engine error into.
var (
	// ErrNotReady means the device (or a dependency below it, such as
	// the storage link or the secure element) is not currently usable,
	// including a data sector that failed authentication.
	ErrNotReady = errors.New("hostxport: device not ready")

	// ErrIllegalRequest means the caller's request was malformed
	// (bad size, bad argument) independent of device state.
	ErrIllegalRequest = errors.New("hostxport: illegal request")

	// ErrMediumError means the medium's metadata is in an unusable
	// format or a sector's replay counter is exhausted (counter
	// overflow).
	ErrMediumError = errors.New("hostxport: medium error")
)
