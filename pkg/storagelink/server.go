package storagelink

import (
	"context"
	"io"
)

// Serve reads frames from rw and services them against backing,
// writing back responses, until rw returns an error (typically
// because the peer closed its end). It plays the role the firmware's
// SPI/UART command loop plays on real hardware, and lets FramedLink be
// exercised end-to-end in tests without a real transport.
func Serve(ctx context.Context, rw io.ReadWriter, backing Link) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var hdrBuf [headerLen]byte
		if _, err := io.ReadFull(rw, hdrBuf[:]); err != nil {
			return err
		}
		req, err := unmarshalHeader(hdrBuf[:])
		if err != nil {
			return err
		}

		resp, payload, serveErr := serveOne(ctx, rw, req, backing)
		if serveErr != nil {
			resp = header{cmd: req.cmd.response(), seq: req.seq, arg0: 1}
			payload = nil
		}

		// Mirrors the client: header and payload are written as two
		// distinct calls, matching the two distinct reads the client
		// performs for each.
		hdrBytes := resp.marshal()
		if _, err := rw.Write(hdrBytes[:]); err != nil {
			return err
		}
		if len(payload) > 0 {
			if _, err := rw.Write(payload); err != nil {
				return err
			}
		}
	}
}

func serveOne(ctx context.Context, rw io.ReadWriter, req header, backing Link) (header, []byte, error) {
	resp := header{cmd: req.cmd.response(), seq: req.seq}

	switch req.cmd {
	case cmdGetCapacity:
		blockSize, blockCount, err := backing.GetCapacity(ctx)
		if err != nil {
			return header{}, nil, err
		}
		payload := make([]byte, 8)
		putLE32(payload[0:4], blockSize)
		putLE32(payload[4:8], blockCount)
		return resp, payload, nil

	case cmdRead:
		blockSize, _, err := backing.GetCapacity(ctx)
		if err != nil {
			return header{}, nil, err
		}
		out := make([]byte, req.arg1*blockSize)
		if err := backing.Read(ctx, req.arg0, req.arg1, out); err != nil {
			return header{}, nil, err
		}
		return resp, out, nil

	case cmdWrite:
		blockSize, _, err := backing.GetCapacity(ctx)
		if err != nil {
			return header{}, nil, err
		}
		payload := make([]byte, req.arg1*blockSize)
		if _, err := io.ReadFull(rw, payload); err != nil {
			return header{}, nil, err
		}
		if err := backing.Write(ctx, req.arg0, req.arg1, payload); err != nil {
			return header{}, nil, err
		}
		return resp, nil, nil

	case cmdFlush:
		if err := backing.Flush(ctx); err != nil {
			return header{}, nil, err
		}
		return resp, nil, nil

	default:
		return header{}, nil, ErrProtocol
	}
}

func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
