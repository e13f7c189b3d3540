package merkle

import "golang.org/x/crypto/blake2b"

// HashSize is the width, in bytes, of every leaf hash, node hash and root
// produced by this package (BLAKE2b-512 output).
const HashSize = 64

// emptySentinel is the fixed preimage for the root of a zero-leaf tree. It
// is part of the on-wire contract: changing it would silently break every
// previously issued empty-input attestation.
const emptySentinel = "resethiq:empty"

// EmptyRoot returns the sentinel root for a tree with zero leaves.
func EmptyRoot() []byte {
	sum := blake2b.Sum512([]byte(emptySentinel))
	return sum[:]
}

// HashLeaf returns the leaf digest for raw bytes (a chunk or a canonicalized
// record). The kernel never treats a leaf as anything other than the output
// of BLAKE2b-512 over exactly these bytes.
func HashLeaf(data []byte) []byte {
	sum := blake2b.Sum512(data)
	return sum[:]
}

// combine computes the parent of two child hashes, left_bytes || right_bytes
// fed through BLAKE2b-512 as a single 128-byte input.
func combine(left, right []byte) ([]byte, error) {
	if len(left) != HashSize || len(right) != HashSize {
		return nil, ErrBadLeafSize
	}
	h, err := blake2b.New512(nil)
	if err != nil {
		return nil, err
	}
	h.Write(left)
	h.Write(right)
	return h.Sum(nil), nil
}
