package merkle

import "errors"

var (
	// ErrEmptyTree is returned when a proof is requested for a tree with
	// zero leaves. The spec defines a root for the
	// empty tree but leaves proofs undefined in that case.
	ErrEmptyTree = errors.New("merkle: proof requested for an empty tree")

	// ErrIndexOutOfRange is returned when the requested leaf index does
	// not exist in the tree.
	ErrIndexOutOfRange = errors.New("merkle: leaf index out of range")

	// ErrBadLeafSize is returned when a leaf or sibling hash is not
	// exactly HashSize bytes.
	ErrBadLeafSize = errors.New("merkle: hash value has the wrong size")
)

// ProofError pairs one of the sentinels above with the request that
// triggered it, mirroring the {index_out_of_range, empty_tree} taxonomy in
// spec section 4.3.
type ProofError struct {
	Kind  error
	Index int
	NLeaf int
}

func (e *ProofError) Error() string {
	return e.Kind.Error()
}

func (e *ProofError) Unwrap() error { return e.Kind }
