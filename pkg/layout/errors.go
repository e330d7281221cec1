package layout

import "errors"

// ErrUnsupportedBlockSize is returned when a reported block size is not
// SectorSize; the layout mapper has no notion of variable sector sizes.
var ErrUnsupportedBlockSize = errors.New("layout: unsupported block size")
