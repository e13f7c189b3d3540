package fingerprint

import (
	"bytes"
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"github.com/forestrie/cdr-kernel/merkle"
)

func TestRunEmptyInput(t *testing.T) {
	res, err := Run(bytes.NewReader(nil), DefaultChunkSize, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Merkle.LeafCount)
	assert.Equal(t, hex.EncodeToString(merkle.EmptyRoot()), res.Merkle.Root)
	assert.Equal(t, int64(0), res.Bytes)
}

func TestRunExactSingleChunk(t *testing.T) {
	data := make([]byte, 4*1024*1024)
	res, err := Run(bytes.NewReader(data), 4*1024*1024, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Merkle.LeafCount)
	want := hex.EncodeToString(merkle.HashLeaf(data))
	assert.Equal(t, want, res.Merkle.Root)
}

func TestRunThreeLeavesOddLevel(t *testing.T) {
	chunk := 4 * 1024 * 1024
	data := make([]byte, chunk*2+17)
	for i := range data {
		data[i] = byte(i)
	}
	res, err := Run(bytes.NewReader(data), chunk, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Merkle.LeafCount)
	assert.Len(t, res.LeafHashes, 3)

	for i := 0; i < 3; i++ {
		proof, err := merkle.Proof(res.LeafHashes, i)
		require.NoError(t, err)
		root, _ := hex.DecodeString(res.Merkle.Root)
		assert.True(t, merkle.Verify(root, proof))
	}
}

func TestRunFileDigestsMatchRawHashes(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	res, err := Run(bytes.NewReader(data), 8, nil, nil)
	require.NoError(t, err)

	b2 := blake2b.Sum512(data)
	s5 := sha512.Sum512(data)
	assert.Equal(t, hex.EncodeToString(b2[:]), res.FileDigests.Blake2b512)
	assert.Equal(t, hex.EncodeToString(s5[:]), res.FileDigests.SHA512)
}

func TestRunChunkLargerThanFileYieldsOneLeaf(t *testing.T) {
	data := []byte("short")
	res, err := Run(bytes.NewReader(data), DefaultChunkSize, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Merkle.LeafCount)
}

func TestRunRejectsNonPositiveChunkSize(t *testing.T) {
	_, err := Run(bytes.NewReader([]byte("x")), 0, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadChunkSize)
}

func TestRunLeafCountMatchesCeilDivision(t *testing.T) {
	chunk := 10
	data := make([]byte, 101)
	res, err := Run(bytes.NewReader(data), chunk, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 11, res.Merkle.LeafCount) // ceil(101/10)
}
