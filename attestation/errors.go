package attestation

import "errors"

// ErrSignFailed is returned when the keypair handed to Assemble cannot be
// used for Ed25519 signing (a nil keypair or a private key of the wrong
// length), so the failure is surfaced as an error rather than a panic from
// ed25519.Sign.
var ErrSignFailed = errors.New("attestation: signing failed")

// CryptoError wraps ErrSignFailed and similar signing-path failures.
type CryptoError struct {
	Kind error
}

func (e *CryptoError) Error() string { return e.Kind.Error() }
func (e *CryptoError) Unwrap() error { return e.Kind }
