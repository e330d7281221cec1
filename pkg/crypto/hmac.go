package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
)

// SHA256LenBytes is the SHA-256 output length in bytes.
const SHA256LenBytes = 32

// HMACSHA256 computes the HMAC-SHA256 of a message using the given key.
// Used by pkg/secureelement's simulated session for challenge/response,
// which is the HMAC that pkg/keybind's volume-key derivation calls through
// the Session interface.
//
// Returns a 32-byte (256-bit) MAC.
func HMACSHA256(key, message []byte) [SHA256LenBytes]byte {
	h := hmac.New(sha256.New, key)
	h.Write(message)
	var result [SHA256LenBytes]byte
	copy(result[:], h.Sum(nil))
	return result
}
