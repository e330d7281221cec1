package blockengine

import "errors"

// Package-level sentinel errors, wrapped with fmt.Errorf("...: %w", ...)
// at call sites that need extra context. These realize the error
// taxonomy the engine reports to its callers: a bad argument or size
// mismatch is the caller's fault, a format or authentication failure
// means the medium or its metadata is corrupt or tampered, a counter
// overflow means a sector's replay counter is exhausted, and
// transport/secure-element errors mean the dependency below the
// engine failed.
var (
	// ErrSizeMismatch is returned when a Read/Write buffer's length
	// doesn't equal nblocks*layout.SectorSize, or when the link reports
	// a block size other than layout.SectorSize.
	ErrSizeMismatch = errors.New("blockengine: buffer size mismatch")

	// ErrInvalidArgument is returned for invalid nblocks (e.g. zero)
	// or other malformed call arguments.
	ErrInvalidArgument = errors.New("blockengine: invalid argument")

	// ErrInvalidFormat is returned when the cached metadata sector
	// cannot be encoded for write-back. A metadata sector read back
	// from the link that fails to decode is not reported: it is
	// replaced by an empty default sector.
	ErrInvalidFormat = errors.New("blockengine: invalid metadata format")

	// ErrAuthenticationFailed is returned when a data sector's GCM tag
	// fails to verify: the sector was corrupted or tampered with.
	ErrAuthenticationFailed = errors.New("blockengine: authentication failed")

	// ErrCounterOverflow is returned when a data sector's replay
	// counter would wrap past its 32-bit range on the next write.
	ErrCounterOverflow = errors.New("blockengine: replay counter overflow")

	// ErrTransport is returned when the underlying storagelink.Link
	// fails.
	ErrTransport = errors.New("blockengine: transport error")

	// ErrSecureElementError is the taxonomy's secure-element failure.
	// No Engine method returns it: NewEngine takes an already-derived
	// key, and pkg/keybind reports derivation failures with its own
	// ErrSecureElementError.
	ErrSecureElementError = errors.New("blockengine: secure element error")
)
