package storagelink

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newServedPipe(t *testing.T, backing Link) (*FramedLink, func()) {
	t.Helper()
	pipe := NewPipe()
	clientConn, serverConn := pipe.Ends()

	ctx, cancel := context.WithCancel(context.Background())
	go Serve(ctx, serverConn, backing)

	client := NewFramedLink(clientConn, 512)
	cleanup := func() {
		cancel()
		pipe.Close()
	}
	return client, cleanup
}

func TestFramedLinkGetCapacity(t *testing.T) {
	backing := NewMemoryLink(512, 64)
	client, cleanup := newServedPipe(t, backing)
	defer cleanup()

	ctx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()

	bs, bc, err := client.GetCapacity(ctx)
	require.NoError(t, err)
	require.Equal(t, uint32(512), bs)
	require.Equal(t, uint32(64), bc)
}

func TestFramedLinkReadWriteRoundTrip(t *testing.T) {
	backing := NewMemoryLink(512, 64)
	client, cleanup := newServedPipe(t, backing)
	defer cleanup()

	ctx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()

	data := make([]byte, 512*4)
	for i := range data {
		data[i] = byte(i * 3)
	}

	require.NoError(t, client.Write(ctx, 5, 4, data))

	out := make([]byte, 512*4)
	require.NoError(t, client.Read(ctx, 5, 4, out))
	require.Equal(t, data, out)
}

func TestFramedLinkFlush(t *testing.T) {
	backing := NewMemoryLink(512, 64)
	client, cleanup := newServedPipe(t, backing)
	defer cleanup()

	ctx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()

	require.NoError(t, client.Flush(ctx))
	require.Equal(t, 1, backing.Flushes())
}

func TestFramedLinkSatisfiesInterface(t *testing.T) {
	var _ Link = (*FramedLink)(nil)
}
