// Package fingerprint implements the one-pass streaming digest: it turns a
// byte stream into file-level digests and an ordered sequence of fixed-width
// Merkle leaf hashes. While streaming, auxiliary memory is the current chunk
// remainder and one transport read buffer, plus whatever the caller's
// merkle.LeafStore keeps; at EOF, Run loads every leaf from the store into
// memory to compute the root and returns them in its Result.
package fingerprint
