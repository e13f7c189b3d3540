package keystore

import "errors"

var (
	// ErrKeyGeneration is returned when Ed25519 keypair generation fails.
	ErrKeyGeneration = errors.New("keystore: keypair generation failed")

	// ErrKeyEncoding is returned when PEM/PKCS8/SPKI encoding or decoding
	// of a key fails.
	ErrKeyEncoding = errors.New("keystore: key encoding failed")

	// ErrPartialKeypair is returned when exactly one of the public/private
	// PEM files exists on disk; a keystore directory must hold both or
	// neither.
	ErrPartialKeypair = errors.New("keystore: only one of the keypair files is present")
)

// CryptoError wraps one of the sentinels above with the path it concerns.
type CryptoError struct {
	Kind error
	Path string
}

func (e *CryptoError) Error() string {
	if e.Path == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Path
}

func (e *CryptoError) Unwrap() error { return e.Kind }
