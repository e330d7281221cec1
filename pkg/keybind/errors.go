package keybind

import "errors"

// ErrSecureElementError wraps any failure reported by the underlying
// secureelement.Session while deriving a volume key.
var ErrSecureElementError = errors.New("keybind: secure element error")
