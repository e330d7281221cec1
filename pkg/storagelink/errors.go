package storagelink

import "errors"

var (
	// ErrOutOfRange is returned when a request addresses blocks beyond
	// the device's reported capacity.
	ErrOutOfRange = errors.New("storagelink: block address out of range")

	// ErrSizeMismatch is returned when a caller's buffer length doesn't
	// match nblocks*blockSize.
	ErrSizeMismatch = errors.New("storagelink: buffer size mismatch")

	// ErrProtocol is returned by FramedLink when a received frame's
	// magic, version, sequence number, or command byte doesn't match
	// what was expected.
	ErrProtocol = errors.New("storagelink: protocol error")

	// ErrPayloadTooLarge is returned when a frame's payload would
	// exceed MaxPayload.
	ErrPayloadTooLarge = errors.New("storagelink: payload too large")

	// ErrTransport is returned when the underlying io.ReadWriter fails.
	ErrTransport = errors.New("storagelink: transport error")
)
