// Package aead implements the sector-level authenticated-encryption
// primitive: a keyed AES-GCM box with a 96-bit IV and a 128-bit tag.
package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"unsafe"
)

const (
	// NonceSize is the AEAD IV length in bytes (96 bits).
	NonceSize = 12

	// TagSize is the authentication tag length in bytes (128 bits).
	TagSize = 16
)

// Box is a stateful AES-GCM box bound to one symmetric key. It mirrors
// the AesGcm struct from original_source/src/crypto/aes.rs: one context
// per key, reused across many encrypt/decrypt calls rather than
// recreated per sector.
type Box struct {
	gcm cipher.AEAD
}

// NewBox creates an AES-GCM box for a 128/192/256-bit key.
func NewBox(key []byte) (*Box, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, err
	}

	return &Box{gcm: gcm}, nil
}

// EncryptAndTag encrypts plaintext under iv/aad and writes the ciphertext
// into ciphertextOut (which must be the same length as plaintext and a
// distinct buffer), returning the 16-byte authentication tag.
func (b *Box) EncryptAndTag(iv, aad, plaintext, ciphertextOut []byte) ([TagSize]byte, error) {
	var tag [TagSize]byte

	if len(iv) != NonceSize {
		return tag, ErrInvalidArgument
	}
	if len(ciphertextOut) != len(plaintext) {
		return tag, ErrInvalidArgument
	}
	if aliases(plaintext, ciphertextOut) {
		return tag, ErrInvalidArgument
	}

	sealed := b.gcm.Seal(ciphertextOut[:0], iv, plaintext, aad)
	copy(ciphertextOut, sealed[:len(plaintext)])
	copy(tag[:], sealed[len(plaintext):])
	return tag, nil
}

// AuthDecrypt verifies tag over ciphertext/iv/aad and, on success, writes
// the recovered plaintext into plaintextOut (same length as ciphertext, a
// distinct buffer). On tag mismatch it returns ErrAuthenticationFailed and
// the contents of plaintextOut are unspecified.
func (b *Box) AuthDecrypt(iv, aad, ciphertext []byte, tag [TagSize]byte, plaintextOut []byte) error {
	if len(iv) != NonceSize {
		return ErrInvalidArgument
	}
	if len(plaintextOut) != len(ciphertext) {
		return ErrInvalidArgument
	}
	if aliases(ciphertext, plaintextOut) {
		return ErrInvalidArgument
	}

	sealed := make([]byte, 0, len(ciphertext)+TagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag[:]...)

	opened, err := b.gcm.Open(plaintextOut[:0], iv, sealed, aad)
	if err != nil {
		return ErrAuthenticationFailed
	}
	// Open writes into plaintextOut's backing array when capacity allows
	// it; copy defensively in case it reallocated.
	if len(opened) > 0 && &opened[0] != &plaintextOut[0] {
		copy(plaintextOut, opened)
	}
	return nil
}

// aliases reports whether a and b overlap in memory. Aliased
// input/output buffers are rejected outright rather than handled in
// place.
func aliases(a, b []byte) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	aStart := uintptr(unsafe.Pointer(&a[0]))
	bStart := uintptr(unsafe.Pointer(&b[0]))
	return aStart < bStart+uintptr(len(b)) && bStart < aStart+uintptr(len(a))
}
