package merkle

import (
	"fmt"
	"os"
)

// LeafStore accumulates leaf hashes for one attestation. The default,
// MemoryLeafStore, is all the spec requires; FileLeafStore exists for the
// case flagged in spec section 9 — very large inputs where holding every
// leaf in memory becomes a concern — without changing Root/Proof, which
// operate on the [][]byte materialized by Leaves.
type LeafStore interface {
	Append(hash []byte) error
	Len() int
	Leaves() ([][]byte, error)
}

// MemoryLeafStore is an in-memory, growable leaf vector.
type MemoryLeafStore struct {
	leaves [][]byte
}

func NewMemoryLeafStore() *MemoryLeafStore {
	return &MemoryLeafStore{}
}

func (s *MemoryLeafStore) Append(hash []byte) error {
	if len(hash) != HashSize {
		return ErrBadLeafSize
	}
	cp := make([]byte, HashSize)
	copy(cp, hash)
	s.leaves = append(s.leaves, cp)
	return nil
}

func (s *MemoryLeafStore) Len() int { return len(s.leaves) }

func (s *MemoryLeafStore) Leaves() ([][]byte, error) {
	return s.leaves, nil
}

// FileLeafStore spills leaves to a fixed-stride file keyed by index,
// standing in for a memory-mapped array: each leaf occupies exactly
// HashSize bytes at offset index*HashSize, so any leaf can be read or
// written independently of the others.
type FileLeafStore struct {
	f   *os.File
	n   int
	buf []byte
}

// NewFileLeafStore creates (or truncates) path as the backing file for a
// fresh leaf sequence.
func NewFileLeafStore(path string) (*FileLeafStore, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, err
	}
	return &FileLeafStore{f: f, buf: make([]byte, HashSize)}, nil
}

func (s *FileLeafStore) Append(hash []byte) error {
	if len(hash) != HashSize {
		return ErrBadLeafSize
	}
	off := int64(s.n) * HashSize
	if _, err := s.f.WriteAt(hash, off); err != nil {
		return err
	}
	s.n++
	return nil
}

func (s *FileLeafStore) Len() int { return s.n }

func (s *FileLeafStore) Leaves() ([][]byte, error) {
	out := make([][]byte, s.n)
	for i := 0; i < s.n; i++ {
		buf := make([]byte, HashSize)
		if _, err := s.f.ReadAt(buf, int64(i)*HashSize); err != nil {
			return nil, fmt.Errorf("merkle: reading leaf %d: %w", i, err)
		}
		out[i] = buf
	}
	return out, nil
}

// Close releases the backing file handle.
func (s *FileLeafStore) Close() error {
	return s.f.Close()
}
