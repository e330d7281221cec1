// Package storagelink implements the storage-link transport the block
// engine consumes to talk to the underlying physical medium:
// GetCapacity/Read/Write/Flush over a fixed-size block address space.
//
// Link is the interface the engine depends on. MemoryLink is a plain
// byte-slice-backed implementation for unit tests. FramedLink
// reproduces the wire protocol in
// original_source/src/spi_link/protocol.rs over any io.ReadWriter, so
// the same engine code can run against a real SPI/UART link or an
// in-memory test pipe.
package storagelink

import "context"

// Link is the storage-link transport consumed by the block engine.
// All methods operate in units of physical blocks; callers are
// responsible for translating logical addresses via pkg/layout first.
type Link interface {
	// GetCapacity returns the device's fixed block size and its total
	// physical block count.
	GetCapacity(ctx context.Context) (blockSize, blockCount uint32, err error)

	// Read reads nblocks physical blocks starting at lba into out,
	// which must be exactly nblocks*blockSize bytes.
	Read(ctx context.Context, lba, nblocks uint32, out []byte) error

	// Write writes nblocks physical blocks starting at lba from data,
	// which must be exactly nblocks*blockSize bytes.
	Write(ctx context.Context, lba, nblocks uint32, data []byte) error

	// Flush requests that any buffering between the link and the
	// physical medium be committed.
	Flush(ctx context.Context) error
}
