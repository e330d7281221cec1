package storagelink

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// FramedLink is a Link that speaks the BK wire protocol over any
// io.ReadWriter: a request/response frame exchange with a 16-byte
// header optionally followed by a payload.
//
// MaxPayload caps a single frame at one block's worth of data, so
// multi-block Read/Write calls are split into one frame per block,
// using the header's reserved field as a chunk index.
type FramedLink struct {
	rw        io.ReadWriter
	blockSize uint32

	mu  sync.Mutex
	seq uint16
}

// NewFramedLink wraps rw, a transport that moves fixed blockSize-byte
// blocks one frame at a time.
func NewFramedLink(rw io.ReadWriter, blockSize uint32) *FramedLink {
	return &FramedLink{rw: rw, blockSize: blockSize}
}

func (l *FramedLink) nextSeq() uint16 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	return l.seq
}

func (l *FramedLink) roundTrip(ctx context.Context, req header, payload []byte) (header, []byte, error) {
	if err := ctx.Err(); err != nil {
		return header{}, nil, err
	}
	if len(payload) > MaxPayload {
		return header{}, nil, ErrPayloadTooLarge
	}

	// Header and payload are written as two distinct calls, and read
	// back as two distinct calls on the other side (see Serve). This
	// keeps the exchange correct whether rw preserves message
	// boundaries per Write (as the in-memory test pipe's underlying
	// bridge does) or is a plain byte stream.
	hdrBytes := req.marshal()
	if _, err := l.rw.Write(hdrBytes[:]); err != nil {
		return header{}, nil, fmt.Errorf("%w: write request header: %v", ErrTransport, err)
	}
	if len(payload) > 0 {
		if _, err := l.rw.Write(payload); err != nil {
			return header{}, nil, fmt.Errorf("%w: write request payload: %v", ErrTransport, err)
		}
	}

	var respHdrBuf [headerLen]byte
	if _, err := io.ReadFull(l.rw, respHdrBuf[:]); err != nil {
		return header{}, nil, fmt.Errorf("%w: read response header: %v", ErrTransport, err)
	}
	resp, err := unmarshalHeader(respHdrBuf[:])
	if err != nil {
		return header{}, nil, err
	}
	if resp.seq != req.seq || !resp.cmd.isResponse() || resp.cmd.base() != req.cmd {
		return header{}, nil, ErrProtocol
	}
	if resp.arg0 != 0 {
		return header{}, nil, fmt.Errorf("%w: device reported status %d", ErrProtocol, resp.arg0)
	}

	return resp, nil, nil
}

// roundTripWithRespPayload is roundTrip plus reading respPayloadLen
// bytes of response payload.
func (l *FramedLink) roundTripWithRespPayload(ctx context.Context, req header, reqPayload []byte, respPayloadLen int) (header, []byte, error) {
	resp, _, err := l.roundTrip(ctx, req, reqPayload)
	if err != nil {
		return header{}, nil, err
	}
	if respPayloadLen == 0 {
		return resp, nil, nil
	}
	buf := make([]byte, respPayloadLen)
	if _, err := io.ReadFull(l.rw, buf); err != nil {
		return header{}, nil, fmt.Errorf("%w: read response payload: %v", ErrTransport, err)
	}
	return resp, buf, nil
}

// GetCapacity implements Link.
func (l *FramedLink) GetCapacity(ctx context.Context) (uint32, uint32, error) {
	req := header{cmd: cmdGetCapacity, seq: l.nextSeq()}
	_, payload, err := l.roundTripWithRespPayload(ctx, req, nil, 8)
	if err != nil {
		return 0, 0, err
	}
	blockSize := le32(payload[0:4])
	blockCount := le32(payload[4:8])
	return blockSize, blockCount, nil
}

// Read implements Link, issuing one frame per block.
func (l *FramedLink) Read(ctx context.Context, lba, nblocks uint32, out []byte) error {
	if uint64(len(out)) != uint64(nblocks)*uint64(l.blockSize) {
		return ErrSizeMismatch
	}
	for i := uint32(0); i < nblocks; i++ {
		req := header{
			cmd:      cmdRead,
			seq:      l.nextSeq(),
			reserved: uint16(i),
			arg0:     lba + i,
			arg1:     1,
		}
		_, payload, err := l.roundTripWithRespPayload(ctx, req, nil, int(l.blockSize))
		if err != nil {
			return err
		}
		copy(out[uint64(i)*uint64(l.blockSize):], payload)
	}
	return nil
}

// Write implements Link, issuing one frame per block.
func (l *FramedLink) Write(ctx context.Context, lba, nblocks uint32, data []byte) error {
	if uint64(len(data)) != uint64(nblocks)*uint64(l.blockSize) {
		return ErrSizeMismatch
	}
	for i := uint32(0); i < nblocks; i++ {
		req := header{
			cmd:      cmdWrite,
			seq:      l.nextSeq(),
			reserved: uint16(i),
			arg0:     lba + i,
			arg1:     1,
		}
		block := data[uint64(i)*uint64(l.blockSize) : uint64(i+1)*uint64(l.blockSize)]
		if _, _, err := l.roundTrip(ctx, req, block); err != nil {
			return err
		}
	}
	return nil
}

// Flush implements Link.
func (l *FramedLink) Flush(ctx context.Context) error {
	req := header{cmd: cmdFlush, seq: l.nextSeq()}
	_, _, err := l.roundTrip(ctx, req, nil)
	return err
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

var _ Link = (*FramedLink)(nil)
