package aead

import "errors"

// Package-level sentinel errors. Wrap with fmt.Errorf("...: %w", ...) at
// call sites that need extra context.
var (
	// ErrInvalidKeySize is returned when a key is not 16, 24, or 32 bytes.
	ErrInvalidKeySize = errors.New("aead: invalid key size, must be 16, 24, or 32 bytes")

	// ErrInvalidArgument is returned when input/output buffers alias, or
	// a buffer has the wrong length for the operation.
	ErrInvalidArgument = errors.New("aead: invalid argument")

	// ErrAuthenticationFailed is returned when GCM tag verification fails.
	// The contents of any output buffer are unspecified after this error.
	ErrAuthenticationFailed = errors.New("aead: authentication failed")
)
