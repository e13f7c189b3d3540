// Package keystore manages the single piece of long-lived mutable state the
// kernel owns on disk: the Ed25519 signing keypair used by the attestation
// assembler. It is created once, on first use, and never rewritten.
package keystore
