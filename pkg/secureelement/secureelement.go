// Package secureelement models the hardware secure element that root
// secrets are bound to (component C5's hardware half): a device that
// holds per-slot root secrets and exposes only a narrow HMAC
// challenge/response surface, never the secret itself.
//
// Session is grounded on the ATECC-family driver in
// original_source/src/crypto/secure_element.rs: a real implementation
// talks to the part over I2C/SWI and calls atcab_read_serial_number /
// atcab_kdf. SimSession stands in for that hardware in development and
// tests.
package secureelement

import (
	"sync"

	"github.com/bindkem/blockcore/pkg/crypto"
)

// SerialLen is the length in bytes of a secure element's serial
// number, matching ATCA_SERIAL_NUM_SIZE.
const SerialLen = 9

// Session is the narrow surface the rest of the system needs from a
// secure element: a readable serial number, and an HMAC-SHA256
// operation keyed by an opaque, non-exportable root secret living in
// one of the element's slots. No implementation of this interface
// exposes the underlying secret.
type Session interface {
	// SerialNumber returns the element's factory-programmed serial
	// number.
	SerialNumber() ([SerialLen]byte, error)

	// HMACSHA256 computes HMAC-SHA256(rootSecret(slot), message)
	// without ever returning rootSecret itself.
	HMACSHA256(slot uint16, message []byte) ([32]byte, error)
}

// SimSession is a software stand-in for a hardware secure element,
// used in development and tests. It holds per-slot root secrets in
// memory; secrets are derived deterministically from a seed via
// HKDF-SHA256 the first time a slot is touched, mirroring the
// element's ensure_master_secret_dev behavior of provisioning a slot
// on first use rather than requiring an explicit factory step.
//
// SimSession is not a security boundary: its "secrets" live in normal
// process memory. It exists only so the rest of the stack can be
// built and tested without real hardware.
type SimSession struct {
	mu     sync.Mutex
	serial [SerialLen]byte
	seed   []byte
	slots  map[uint16][]byte
}

// NewSimSession creates a simulated session with the given serial
// number and a seed used to derive root secrets for slots on first
// use. The same seed always reproduces the same per-slot secrets,
// which keeps tests deterministic.
func NewSimSession(serial [SerialLen]byte, seed []byte) *SimSession {
	return &SimSession{
		serial: serial,
		seed:   append([]byte(nil), seed...),
		slots:  make(map[uint16][]byte),
	}
}

// SerialNumber implements Session.
func (s *SimSession) SerialNumber() ([SerialLen]byte, error) {
	return s.serial, nil
}

// HMACSHA256 implements Session. It lazily provisions slot's root
// secret from the session seed on first use.
func (s *SimSession) HMACSHA256(slot uint16, message []byte) ([32]byte, error) {
	secret, err := s.rootSecret(slot)
	if err != nil {
		return [32]byte{}, err
	}
	return crypto.HMACSHA256(secret, message), nil
}

// Provision explicitly installs a root secret for slot, overriding
// whatever would otherwise be derived from the seed. This mirrors
// provision_root_secret writing a freshly-random secret into a data
// slot.
func (s *SimSession) Provision(slot uint16, secret []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slot] = append([]byte(nil), secret...)
}

func (s *SimSession) rootSecret(slot uint16) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if secret, ok := s.slots[slot]; ok {
		return secret, nil
	}

	var slotTag [2]byte
	slotTag[0] = byte(slot)
	slotTag[1] = byte(slot >> 8)

	secret, err := crypto.HKDFSHA256(s.seed, slotTag[:], []byte("bindkem-sim-root-secret"), 32)
	if err != nil {
		return nil, err
	}
	s.slots[slot] = secret
	return secret, nil
}
