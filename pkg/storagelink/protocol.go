package storagelink

import "encoding/binary"

const (
	protocolVersion = 1
	respFlag        = 0x80

	// MaxPayload is the largest payload a single frame can carry.
	MaxPayload = 512

	// headerLen is the wire size of header: magic(2) + version(1) +
	// cmd(1) + seq(2) + reserved(2) + arg0(4) + arg1(4).
	headerLen = 16
)

var protocolMagic = [2]byte{'B', 'K'}

// cmd identifies the requested operation in a frame header.
type cmd uint8

const (
	cmdGetStatus   cmd = 1
	cmdGetCapacity cmd = 2
	cmdRead        cmd = 3
	cmdWrite       cmd = 4
	cmdFlush       cmd = 5
)

// header is the 16-byte frame header, mirroring Header in
// original_source/src/spi_link/protocol.rs. FramedLink splits a
// multi-block Read/Write into one frame per block and carries the
// block's position within the request in reserved as a chunk index.
type header struct {
	cmd      cmd
	seq      uint16
	reserved uint16
	arg0     uint32
	arg1     uint32
}

func (h header) marshal() [headerLen]byte {
	var buf [headerLen]byte
	buf[0], buf[1] = protocolMagic[0], protocolMagic[1]
	buf[2] = protocolVersion
	buf[3] = byte(h.cmd)
	binary.LittleEndian.PutUint16(buf[4:6], h.seq)
	binary.LittleEndian.PutUint16(buf[6:8], h.reserved)
	binary.LittleEndian.PutUint32(buf[8:12], h.arg0)
	binary.LittleEndian.PutUint32(buf[12:16], h.arg1)
	return buf
}

func unmarshalHeader(buf []byte) (header, error) {
	if len(buf) != headerLen {
		return header{}, ErrProtocol
	}
	if buf[0] != protocolMagic[0] || buf[1] != protocolMagic[1] {
		return header{}, ErrProtocol
	}
	if buf[2] != protocolVersion {
		return header{}, ErrProtocol
	}
	return header{
		cmd:      cmd(buf[3]),
		seq:      binary.LittleEndian.Uint16(buf[4:6]),
		reserved: binary.LittleEndian.Uint16(buf[6:8]),
		arg0:     binary.LittleEndian.Uint32(buf[8:12]),
		arg1:     binary.LittleEndian.Uint32(buf[12:16]),
	}, nil
}

func (c cmd) isResponse() bool {
	return uint8(c)&respFlag != 0
}

func (c cmd) base() cmd {
	return cmd(uint8(c) &^ respFlag)
}

func (c cmd) response() cmd {
	return cmd(uint8(c.base()) | respFlag)
}
