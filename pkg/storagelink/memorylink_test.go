package storagelink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryLinkReadWriteRoundTrip(t *testing.T) {
	ctx := context.Background()
	link := NewMemoryLink(512, 100)

	data := make([]byte, 512*3)
	for i := range data {
		data[i] = byte(i)
	}

	require.NoError(t, link.Write(ctx, 10, 3, data))

	out := make([]byte, 512*3)
	require.NoError(t, link.Read(ctx, 10, 3, out))
	require.Equal(t, data, out)
}

func TestMemoryLinkGetCapacity(t *testing.T) {
	ctx := context.Background()
	link := NewMemoryLink(512, 1000)

	bs, bc, err := link.GetCapacity(ctx)
	require.NoError(t, err)
	require.Equal(t, uint32(512), bs)
	require.Equal(t, uint32(1000), bc)
}

func TestMemoryLinkRejectsOutOfRange(t *testing.T) {
	ctx := context.Background()
	link := NewMemoryLink(512, 10)

	out := make([]byte, 512)
	err := link.Read(ctx, 9, 2, out)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestMemoryLinkRejectsSizeMismatch(t *testing.T) {
	ctx := context.Background()
	link := NewMemoryLink(512, 10)

	err := link.Read(ctx, 0, 2, make([]byte, 511))
	require.ErrorIs(t, err, ErrSizeMismatch)
}

func TestMemoryLinkFlushCounts(t *testing.T) {
	ctx := context.Background()
	link := NewMemoryLink(512, 10)

	require.Equal(t, 0, link.Flushes())
	require.NoError(t, link.Flush(ctx))
	require.NoError(t, link.Flush(ctx))
	require.Equal(t, 2, link.Flushes())
}

func TestMemoryLinkSatisfiesInterface(t *testing.T) {
	var _ Link = (*MemoryLink)(nil)
}
