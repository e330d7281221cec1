package metasector

import "errors"

var (
	// ErrInvalidSize is returned when a buffer passed to Decode or
	// Encode is not exactly layout.SectorSize bytes.
	ErrInvalidSize = errors.New("metasector: invalid buffer size")

	// ErrInvalidFormat is returned when a decoded sector's magic,
	// version, or group-size byte does not match what this build
	// expects.
	ErrInvalidFormat = errors.New("metasector: invalid format")

	// ErrChecksumMismatch is returned when a nonzero stored CRC-32C
	// does not match the one computed over the decoded sector.
	ErrChecksumMismatch = errors.New("metasector: checksum mismatch")

	// ErrIndexOutOfRange is returned by GetEntry/SetEntry when idx is
	// not a valid entry index.
	ErrIndexOutOfRange = errors.New("metasector: index out of range")
)
