// Package metasector implements the metadata sector codec (component
// C3): the fixed 512-byte on-disk record that tracks, for one group of
// data sectors, the replay counter and authentication tag each data
// sector was last sealed under.
//
// Layout (512 bytes), little-endian:
//
//	[0..4]   magic "BKMD"
//	[4]      version (1)
//	[5]      group size sanity byte (layout.SectorsPerGroup)
//	[6..8]   reserved
//	[8..12]  seq (u32)
//	[12..16] crc32c of the sector with this field zeroed
//	[16..32] reserved
//	[32..]   entries (SectorsPerGroup * 20 bytes)
package metasector

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/bindkem/blockcore/pkg/aead"
	"github.com/bindkem/blockcore/pkg/layout"
)

const (
	magic          = "BKMD"
	version        = 1
	headerLen      = 32
	entryLen       = 4 + aead.TagSize
	crcFieldOffset = 12
)

var crcTable = crc32.MakeTable(crc32.Castagnoli)

// Entry is the per-data-sector record: the counter the sector was last
// sealed under, and the authentication tag produced for it.
type Entry struct {
	Counter uint32
	Tag     [aead.TagSize]byte
}

// IsEmpty reports whether e is the zero entry, meaning the
// corresponding data sector has never been written.
func (e Entry) IsEmpty() bool {
	return e.Counter == 0 && e.Tag == [aead.TagSize]byte{}
}

// Sector is one group's metadata: a monotonically increasing
// write-back sequence number plus one Entry per data sector in the
// group.
type Sector struct {
	Seq     uint32
	Entries [layout.SectorsPerGroup]Entry
}

// Default returns the zero-value sector used when a metadata sector
// has never been written (e.g. a fresh volume).
func Default() *Sector {
	return &Sector{}
}

// Decode parses a raw layout.SectorSize-byte buffer into a Sector. It
// returns ErrInvalidFormat if the magic, version, or group-size byte
// don't match, and ErrChecksumMismatch if a nonzero stored CRC-32C
// doesn't match the computed one.
func Decode(buf []byte) (*Sector, error) {
	if len(buf) != layout.SectorSize {
		return nil, ErrInvalidSize
	}
	if string(buf[0:4]) != magic {
		return nil, ErrInvalidFormat
	}
	if buf[4] != version {
		return nil, ErrInvalidFormat
	}
	if buf[5] != layout.SectorsPerGroup {
		return nil, ErrInvalidFormat
	}

	storedCRC := binary.LittleEndian.Uint32(buf[crcFieldOffset : crcFieldOffset+4])
	if storedCRC != 0 {
		if computeCRC(buf) != storedCRC {
			return nil, ErrChecksumMismatch
		}
	}

	seq := binary.LittleEndian.Uint32(buf[8:12])

	out := &Sector{Seq: seq}
	off := headerLen
	for i := 0; i < layout.SectorsPerGroup; i++ {
		out.Entries[i].Counter = binary.LittleEndian.Uint32(buf[off : off+4])
		off += 4
		copy(out.Entries[i].Tag[:], buf[off:off+aead.TagSize])
		off += aead.TagSize
	}
	return out, nil
}

// DecodeOrDefault is Decode, but returns a fresh Default sector
// instead of an error on any decode failure. This matches the
// device's bootstrap rule: an unreadable or never-written metadata
// sector is treated as "every counter starts at zero".
func DecodeOrDefault(buf []byte) *Sector {
	s, err := Decode(buf)
	if err != nil {
		return Default()
	}
	return s
}

// Encode serializes s into buf, which must be exactly
// layout.SectorSize bytes. The CRC-32C field is always (re)computed
// and written.
func (s *Sector) Encode(buf []byte) error {
	if len(buf) != layout.SectorSize {
		return ErrInvalidSize
	}

	for i := range buf {
		buf[i] = 0
	}

	copy(buf[0:4], magic)
	buf[4] = version
	buf[5] = layout.SectorsPerGroup
	binary.LittleEndian.PutUint32(buf[8:12], s.Seq)

	off := headerLen
	for _, e := range s.Entries {
		binary.LittleEndian.PutUint32(buf[off:off+4], e.Counter)
		off += 4
		copy(buf[off:off+aead.TagSize], e.Tag[:])
		off += aead.TagSize
	}

	binary.LittleEndian.PutUint32(buf[crcFieldOffset:crcFieldOffset+4], computeCRC(buf))
	return nil
}

// GetEntry returns the entry at idx, or ErrIndexOutOfRange if idx is
// not a valid data-sector index within the group.
func (s *Sector) GetEntry(idx int) (Entry, error) {
	if idx < 0 || idx >= layout.SectorsPerGroup {
		return Entry{}, ErrIndexOutOfRange
	}
	return s.Entries[idx], nil
}

// SetEntry updates the entry at idx in place, or returns
// ErrIndexOutOfRange if idx is not a valid data-sector index.
func (s *Sector) SetEntry(idx int, counter uint32, tag [aead.TagSize]byte) error {
	if idx < 0 || idx >= layout.SectorsPerGroup {
		return ErrIndexOutOfRange
	}
	s.Entries[idx] = Entry{Counter: counter, Tag: tag}
	return nil
}

// computeCRC returns the CRC-32C of buf with the CRC field itself
// treated as zero, matching the convention of zeroing a checksum
// field before checksumming the record it lives in.
func computeCRC(buf []byte) uint32 {
	scratch := make([]byte, len(buf))
	copy(scratch, buf)
	for i := range scratch[crcFieldOffset : crcFieldOffset+4] {
		scratch[crcFieldOffset+i] = 0
	}
	return crc32.Checksum(scratch, crcTable)
}
