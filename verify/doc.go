// Package verify mirrors C1-C4 against a previously issued attestation
// bundle: it re-runs the fingerprinter and Merkle engine over a supplied
// artifact, recomputes the signed message digest from the bundle's own
// claims, and validates the Ed25519 signature, returning one boolean per
// check rather than a single opaque pass/fail.
package verify
