package merkle

import "bytes"

// InclusionProof is the sibling co-path from one leaf to the root, bottom-up.
// It does not store orientation: the verifier derives left/right placement
// from the parity of the (halving) index at each level.
type InclusionProof struct {
	Index    int
	LeafHash []byte
	Siblings [][]byte
}

// Proof builds the inclusion proof for leaf index i against the tree formed
// by leaves.
func Proof(leaves [][]byte, index int) (*InclusionProof, error) {
	if len(leaves) == 0 {
		return nil, &ProofError{Kind: ErrEmptyTree}
	}
	if index < 0 || index >= len(leaves) {
		return nil, &ProofError{Kind: ErrIndexOutOfRange, Index: index, NLeaf: len(leaves)}
	}

	levels, err := buildLevels(leaves)
	if err != nil {
		return nil, err
	}

	idx := index
	var siblings [][]byte
	for lvl := 0; lvl < len(levels)-1; lvl++ {
		level := levels[lvl]
		var sibling []byte
		if idx == len(level)-1 && len(level)%2 == 1 {
			// Last node on an odd-sized level: it was duplicated to pair
			// with itself, so it is its own sibling.
			sibling = level[idx]
		} else {
			sibling = level[idx^1]
		}
		siblings = append(siblings, sibling)
		idx /= 2
	}

	return &InclusionProof{Index: index, LeafHash: leaves[index], Siblings: siblings}, nil
}

// Verify recomputes the path from proof.LeafHash to the root using
// proof.Siblings and reports whether it matches root.
func Verify(root []byte, proof *InclusionProof) bool {
	if proof == nil {
		return false
	}
	node := proof.LeafHash
	idx := proof.Index
	for _, sibling := range proof.Siblings {
		var err error
		if idx%2 == 1 {
			node, err = combine(sibling, node)
		} else {
			node, err = combine(node, sibling)
		}
		if err != nil {
			return false
		}
		idx /= 2
	}
	return bytes.Equal(node, root)
}
