// Package merkle implements the root, inclusion-proof and verification
// algorithms over a binary Merkle tree of BLAKE2b-512 leaf digests.
//
// Unlike the teacher's Merkle Mountain Range (mmr), this tree is rebuilt
// bottom-up from a complete leaf set on every call: the kernel commits to a
// single artifact once per attestation, so there is no append-only log
// structure to preserve across calls, only the proof/verify contract the
// bundle format exposes. Odd-length levels duplicate the final node (paired
// with itself) rather than promoting it unpaired: a well-known convention
// for binary Merkle trees, distinct from how mmr/ handles imbalance (there,
// odd leaf counts are absorbed structurally by the peak/spur decomposition
// instead, with no duplication involved).
package merkle
