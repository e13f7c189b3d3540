// Package attestation assembles the signed, independently verifiable bundle
// described by spec section 6: a manifest, the claims derived from the
// fingerprinter and Merkle engine, a set of self-verified sample inclusion
// proofs, and an Ed25519 signature over the canonical JSON encoding of the
// claims.
package attestation
