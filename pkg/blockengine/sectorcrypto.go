package blockengine

import (
	"encoding/binary"

	"github.com/bindkem/blockcore/pkg/aead"
	"github.com/bindkem/blockcore/pkg/layout"
)

// ivDomainConst tags every IV with this engine's domain, so a sector
// IV can never collide with an IV built for an unrelated purpose even
// if (lba, counter) were ever reused. Grounded on the "BK\0\x01"
// constant in original_source/src/crypto/disk_crypto.rs.
var ivDomainConst = [4]byte{0x42, 0x4B, 0x00, 0x01}

// makeIV builds the 96-bit GCM IV for (lbaLogical, counter):
// lbaLogical(4) || counter(4) || ivDomainConst(4), all little-endian.
// Binding both the logical address and the counter into the IV is
// what makes (key, IV) reuse require both an address collision and a
// counter collision, and the counter alone is bumped on every write.
func makeIV(lbaLogical, counter uint32) [aead.NonceSize]byte {
	var iv [aead.NonceSize]byte
	binary.LittleEndian.PutUint32(iv[0:4], lbaLogical)
	binary.LittleEndian.PutUint32(iv[4:8], counter)
	copy(iv[8:12], ivDomainConst[:])
	return iv
}

// makeAAD builds the 8-byte AAD for (lbaLogical, counter): binding the
// same pair as additional authenticated data means a ciphertext
// sector can't be silently relocated to a different logical address
// or replayed under a different counter without failing
// authentication.
func makeAAD(lbaLogical, counter uint32) [8]byte {
	var aad [8]byte
	binary.LittleEndian.PutUint32(aad[0:4], lbaLogical)
	binary.LittleEndian.PutUint32(aad[4:8], counter)
	return aad
}

// encryptSector seals one plaintext sector for (lbaLogical, counter).
// counter must be nonzero: zero is reserved to mean "sector never
// written".
func encryptSector(box *aead.Box, lbaLogical, counter uint32, plaintext, ciphertextOut []byte) ([aead.TagSize]byte, error) {
	if len(plaintext) != layout.SectorSize || len(ciphertextOut) != layout.SectorSize {
		return [aead.TagSize]byte{}, ErrSizeMismatch
	}
	if counter == 0 {
		return [aead.TagSize]byte{}, ErrInvalidArgument
	}

	iv := makeIV(lbaLogical, counter)
	aadBytes := makeAAD(lbaLogical, counter)
	return box.EncryptAndTag(iv[:], aadBytes[:], plaintext, ciphertextOut)
}

// decryptSector opens one ciphertext sector sealed for
// (lbaLogical, counter).
func decryptSector(box *aead.Box, lbaLogical, counter uint32, ciphertext []byte, tag [aead.TagSize]byte, plaintextOut []byte) error {
	if len(ciphertext) != layout.SectorSize || len(plaintextOut) != layout.SectorSize {
		return ErrSizeMismatch
	}
	if counter == 0 {
		return ErrInvalidArgument
	}

	iv := makeIV(lbaLogical, counter)
	aadBytes := makeAAD(lbaLogical, counter)
	if err := box.AuthDecrypt(iv[:], aadBytes[:], ciphertext, tag, plaintextOut); err != nil {
		if err == aead.ErrAuthenticationFailed {
			return ErrAuthenticationFailed
		}
		return err
	}
	return nil
}
