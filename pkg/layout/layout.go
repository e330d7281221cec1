// Package layout implements the logical-to-physical sector mapping
// (component C2): pure, stateless arithmetic translating a logical
// block address into its physical data sector and the physical
// metadata sector that guards it.
//
// Physical storage is divided into fixed-size groups of SectorsPerGroup
// data sectors followed by one metadata sector (GroupPhysSectors total).
// Logical addresses only ever name data sectors; metadata sectors are
// never directly addressable by a caller.
package layout

const (
	// SectorSize is the fixed sector size in bytes.
	SectorSize = 512

	// SectorsPerGroup is the number of data sectors per group (G).
	SectorsPerGroup = 24

	// GroupPhysSectors is the number of physical sectors per group,
	// including the trailing metadata sector (G+1).
	GroupPhysSectors = SectorsPerGroup + 1
)

// Map translates a logical block address into:
//   - dataPhys: the physical sector holding the encrypted data
//   - metaPhys: the physical sector holding the group's metadata
//   - idx: the entry index within that metadata sector's entry table
func Map(lbaLogical uint32) (dataPhys, metaPhys uint32, idx int) {
	group := lbaLogical / SectorsPerGroup
	idx = int(lbaLogical % SectorsPerGroup)

	base := group * GroupPhysSectors
	dataPhys = base + uint32(idx)
	metaPhys = base + SectorsPerGroup
	return dataPhys, metaPhys, idx
}

// LogicalBlockCountFromPhysical returns the number of logical (data)
// blocks addressable on a device with physicalBlockCount physical
// sectors, discarding any partial trailing group.
func LogicalBlockCountFromPhysical(physicalBlockCount uint32) uint32 {
	groups := physicalBlockCount / GroupPhysSectors
	return groups * SectorsPerGroup
}

// PhysicalBlockCountNeededForLogical returns the number of physical
// sectors required to back logicalBlockCount logical blocks, rounding
// up to a whole number of groups.
func PhysicalBlockCountNeededForLogical(logicalBlockCount uint32) uint32 {
	groups := (logicalBlockCount + (SectorsPerGroup - 1)) / SectorsPerGroup
	return groups * GroupPhysSectors
}

// ValidateBlockSize reports ErrUnsupportedBlockSize unless blockSize
// equals SectorSize. The engine only ever speaks in fixed 512-byte
// sectors; any other reported block size cannot be laid out.
func ValidateBlockSize(blockSize uint32) error {
	if blockSize != SectorSize {
		return ErrUnsupportedBlockSize
	}
	return nil
}
