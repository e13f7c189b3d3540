package fingerprint

import (
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"io"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/forestrie/cdr-kernel/merkle"
)

// DefaultChunkSize is the CLI and library default chunk width: 4 MiB.
const DefaultChunkSize = 4 * 1024 * 1024

// transportReadSize is the buffer size used for each Read call against the
// input stream, independent of chunk_size, per spec section 4.2 step 2.
const transportReadSize = 1 << 20 // 1 MiB

// FileDigests is the dual hash computed over the raw byte stream.
type FileDigests struct {
	Blake2b512 string `json:"blake2b_512"`
	SHA512     string `json:"sha512"`
}

// MerkleCommitment is the on-wire description of the tree the fingerprinter
// built: enough for an independent verifier to recompute it given the same
// chunk_size.
type MerkleCommitment struct {
	Algorithm string `json:"algorithm"`
	Root      string `json:"root"`
	LeafCount int    `json:"leaf_count"`
	ChunkSize int    `json:"chunk_size"`
}

// Result is everything one streaming pass over an artifact produces.
type Result struct {
	Bytes       int64
	Chunks      int
	LeafHashes  [][]byte
	FileDigests FileDigests
	Merkle      MerkleCommitment
}

// Run streams r in chunkSize-sized leaves, feeding store one leaf at a time,
// and returns the file digests and Merkle commitment. store may be nil, in
// which case a merkle.MemoryLeafStore is used.
func Run(r io.Reader, chunkSize int, store merkle.LeafStore, log *zap.SugaredLogger) (*Result, error) {
	if chunkSize <= 0 {
		return nil, &ConfigError{Kind: ErrBadChunkSize, Value: chunkSize}
	}
	if store == nil {
		store = merkle.NewMemoryLeafStore()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	b2 := newBlake2b512()
	s5 := sha512.New()

	var (
		total      int64
		accum      []byte
		readBuf    = make([]byte, transportReadSize)
		chunkCount int
	)

	log.Infow("fingerprint started", "chunk_size", chunkSize)

	for {
		n, rerr := r.Read(readBuf)
		if n > 0 {
			chunk := readBuf[:n]
			b2.Write(chunk)
			s5.Write(chunk)
			total += int64(n)
			accum = append(accum, chunk...)

			for len(accum) >= chunkSize {
				leaf := accum[:chunkSize]
				if err := emitLeaf(store, leaf); err != nil {
					return nil, err
				}
				chunkCount++
				accum = accum[chunkSize:]
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, rerr
		}
	}

	if len(accum) > 0 {
		if err := emitLeaf(store, accum); err != nil {
			return nil, err
		}
		chunkCount++
	}

	leaves, err := store.Leaves()
	if err != nil {
		return nil, err
	}
	root, err := merkle.Root(leaves)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Bytes:      total,
		Chunks:     chunkCount,
		LeafHashes: leaves,
		FileDigests: FileDigests{
			Blake2b512: hex.EncodeToString(b2.Sum(nil)),
			SHA512:     hex.EncodeToString(s5.Sum(nil)),
		},
		Merkle: MerkleCommitment{
			Algorithm: "blake2b512",
			Root:      hex.EncodeToString(root),
			LeafCount: len(leaves),
			ChunkSize: chunkSize,
		},
	}

	log.Infow("fingerprint finished",
		"bytes", res.Bytes, "chunks", res.Chunks, "leaf_count", res.Merkle.LeafCount,
		"root", res.Merkle.Root)

	return res, nil
}

func emitLeaf(store merkle.LeafStore, data []byte) error {
	return store.Append(merkle.HashLeaf(data))
}

func newBlake2b512() hash.Hash {
	h, err := blake2b.New512(nil)
	if err != nil {
		// blake2b.New512(nil) only errors for a bad key size; nil is always valid.
		panic(err)
	}
	return h
}
