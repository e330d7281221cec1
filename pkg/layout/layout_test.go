package layout

import "testing"

func TestMapFirstGroup(t *testing.T) {
	cases := []struct {
		lba      uint32
		wantData uint32
		wantMeta uint32
		wantIdx  int
	}{
		{0, 0, 24, 0},
		{1, 1, 24, 1},
		{23, 23, 24, 23},
	}

	for _, tc := range cases {
		data, meta, idx := Map(tc.lba)
		if data != tc.wantData || meta != tc.wantMeta || idx != tc.wantIdx {
			t.Errorf("Map(%d) = (%d, %d, %d), want (%d, %d, %d)",
				tc.lba, data, meta, idx, tc.wantData, tc.wantMeta, tc.wantIdx)
		}
	}
}

func TestMapSecondGroup(t *testing.T) {
	// Group 1 starts at physical sector 25.
	data, meta, idx := Map(24)
	if data != 25 || meta != 49 || idx != 0 {
		t.Fatalf("Map(24) = (%d, %d, %d), want (25, 49, 0)", data, meta, idx)
	}

	data, meta, idx = Map(47)
	if data != 48 || meta != 49 || idx != 23 {
		t.Fatalf("Map(47) = (%d, %d, %d), want (48, 49, 23)", data, meta, idx)
	}
}

// TestMapNeverReturnsAMetaSectorAsData covers P5: for any logical
// address, the data sector returned is never the group's metadata
// sector.
func TestMapNeverReturnsAMetaSectorAsData(t *testing.T) {
	for lba := uint32(0); lba < 24*50; lba++ {
		data, meta, _ := Map(lba)
		if data == meta {
			t.Fatalf("Map(%d): data sector %d collides with meta sector", lba, data)
		}
	}
}

// TestGroupsPartitionPhysicalSpace covers P6: distinct logical
// addresses across the first ten groups map to distinct data sectors.
func TestGroupsPartitionPhysicalSpace(t *testing.T) {
	seen := make(map[uint32]bool)
	for lba := uint32(0); lba < 24*10; lba++ {
		data, _, _ := Map(lba)
		if seen[data] {
			t.Fatalf("Map(%d): data sector %d reused", lba, data)
		}
		seen[data] = true
	}
}

func TestLogicalBlockCountFromPhysical(t *testing.T) {
	cases := []struct {
		physical uint32
		want     uint32
	}{
		{0, 0},
		{24, 0},  // partial group, no metadata sector yet
		{25, 24}, // exactly one full group
		{49, 24}, // one full group plus a partial second group
		{50, 48}, // two full groups
	}
	for _, tc := range cases {
		got := LogicalBlockCountFromPhysical(tc.physical)
		if got != tc.want {
			t.Errorf("LogicalBlockCountFromPhysical(%d) = %d, want %d", tc.physical, got, tc.want)
		}
	}
}

func TestPhysicalBlockCountNeededForLogical(t *testing.T) {
	cases := []struct {
		logical uint32
		want    uint32
	}{
		{0, 0},
		{1, 25},
		{24, 25},
		{25, 50},
		{48, 50},
	}
	for _, tc := range cases {
		got := PhysicalBlockCountNeededForLogical(tc.logical)
		if got != tc.want {
			t.Errorf("PhysicalBlockCountNeededForLogical(%d) = %d, want %d", tc.logical, got, tc.want)
		}
	}
}

func TestLogicalPhysicalRoundTrip(t *testing.T) {
	for groups := uint32(0); groups < 20; groups++ {
		logical := groups * SectorsPerGroup
		physical := PhysicalBlockCountNeededForLogical(logical)
		if got := LogicalBlockCountFromPhysical(physical); got != logical {
			t.Errorf("round trip for %d groups: got %d logical blocks, want %d", groups, got, logical)
		}
	}
}

func TestValidateBlockSize(t *testing.T) {
	if err := ValidateBlockSize(SectorSize); err != nil {
		t.Errorf("ValidateBlockSize(%d) = %v, want nil", SectorSize, err)
	}
	for _, bs := range []uint32{0, 256, 511, 513, 4096} {
		if err := ValidateBlockSize(bs); err != ErrUnsupportedBlockSize {
			t.Errorf("ValidateBlockSize(%d) = %v, want ErrUnsupportedBlockSize", bs, err)
		}
	}
}
