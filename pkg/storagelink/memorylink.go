package storagelink

import (
	"context"
	"sync"
)

// MemoryLink is a Link backed by a plain in-process byte slice. It is
// used to exercise pkg/blockengine without any real transport.
type MemoryLink struct {
	mu         sync.Mutex
	blockSize  uint32
	blockCount uint32
	data       []byte
	flushes    int
}

// NewMemoryLink creates a MemoryLink with blockCount blocks of
// blockSize bytes each, zero-initialized.
func NewMemoryLink(blockSize, blockCount uint32) *MemoryLink {
	return &MemoryLink{
		blockSize:  blockSize,
		blockCount: blockCount,
		data:       make([]byte, uint64(blockSize)*uint64(blockCount)),
	}
}

// GetCapacity implements Link.
func (m *MemoryLink) GetCapacity(ctx context.Context) (uint32, uint32, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	return m.blockSize, m.blockCount, nil
}

// Read implements Link.
func (m *MemoryLink) Read(ctx context.Context, lba, nblocks uint32, out []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if uint64(len(out)) != uint64(nblocks)*uint64(m.blockSize) {
		return ErrSizeMismatch
	}
	start, end, err := m.byteRange(lba, nblocks)
	if err != nil {
		return err
	}
	copy(out, m.data[start:end])
	return nil
}

// Write implements Link.
func (m *MemoryLink) Write(ctx context.Context, lba, nblocks uint32, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if uint64(len(data)) != uint64(nblocks)*uint64(m.blockSize) {
		return ErrSizeMismatch
	}
	start, end, err := m.byteRange(lba, nblocks)
	if err != nil {
		return err
	}
	copy(m.data[start:end], data)
	return nil
}

// Flush implements Link. MemoryLink has no write-back buffering of
// its own; Flush only counts calls for tests that assert flush
// ordering.
func (m *MemoryLink) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes++
	return nil
}

// Flushes returns the number of times Flush has been called, for test
// assertions about write-back ordering.
func (m *MemoryLink) Flushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushes
}

func (m *MemoryLink) byteRange(lba, nblocks uint32) (start, end uint64, err error) {
	if nblocks == 0 {
		return 0, 0, nil
	}
	if uint64(lba)+uint64(nblocks) > uint64(m.blockCount) {
		return 0, 0, ErrOutOfRange
	}
	start = uint64(lba) * uint64(m.blockSize)
	end = start + uint64(nblocks)*uint64(m.blockSize)
	return start, end, nil
}
