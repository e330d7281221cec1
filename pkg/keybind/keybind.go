// Package keybind implements the key-binding protocol: deriving a
// volume's AES-GCM key from a secure element's root slot such that the
// key never exists outside the element and the host together, and
// never survives a swap to a different element or a different volume.
//
// The derivation message is serial || volume_id || "bindkey".
package keybind

import (
	"fmt"

	"github.com/bindkem/blockcore/pkg/secureelement"
)

// DomainTag is appended to the HMAC message to bind the derivation to
// this one purpose, so the same root secret can't be reused to derive
// an unrelated key from a colliding message.
const DomainTag = "bindkey"

// VolumeIDLen is the length in bytes of the caller-chosen identifier
// for a volume (e.g. a partition UUID), bound into every derived key.
const VolumeIDLen = 16

// DeriveVolumeKey computes the AES-GCM key for one volume by calling
// HMAC-SHA256(rootSlot, serial || volumeID || "bindkey") on sess. The
// result changes if the session is swapped for a different secure
// element (different serial) or volumeID changes, and is stable
// across repeated calls for the same (element, volume) pair.
func DeriveVolumeKey(sess secureelement.Session, rootSlot uint16, volumeID [VolumeIDLen]byte) ([32]byte, error) {
	serial, err := sess.SerialNumber()
	if err != nil {
		return [32]byte{}, fmt.Errorf("%w: read serial number: %v", ErrSecureElementError, err)
	}

	msg := make([]byte, 0, len(serial)+VolumeIDLen+len(DomainTag))
	msg = append(msg, serial[:]...)
	msg = append(msg, volumeID[:]...)
	msg = append(msg, DomainTag...)

	key, err := sess.HMACSHA256(rootSlot, msg)
	if err != nil {
		return [32]byte{}, fmt.Errorf("%w: hmac: %v", ErrSecureElementError, err)
	}
	return key, nil
}
