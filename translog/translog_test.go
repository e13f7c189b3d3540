package translog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendFirstEntryUsesGenesis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	l := Open(path)

	entry, err := l.Append("receipt-hash-1", "2026-07-30T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, Genesis, entry.PrevHash)
}

func TestAppendChainsPrevHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	l := Open(path)

	e1, err := l.Append("r1", "t1")
	require.NoError(t, err)
	e2, err := l.Append("r2", "t2")
	require.NoError(t, err)

	assert.Equal(t, e1.EntryHash, e2.PrevHash)
}

func TestVerifyReplaysForwardFromGenesis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	l := Open(path)

	for i := 0; i < 5; i++ {
		_, err := l.Append("receipt", "ts")
		require.NoError(t, err)
	}

	entries, err := l.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 5)

	ok, brokenAt, err := Verify(entries)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, -1, brokenAt)
}

func TestVerifyDetectsRemovedEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	l := Open(path)
	for i := 0; i < 3; i++ {
		_, err := l.Append("receipt", "ts")
		require.NoError(t, err)
	}
	entries, err := l.Entries()
	require.NoError(t, err)

	// Drop the middle entry, as if the file had been rewritten without it.
	tampered := []Entry{entries[0], entries[2]}
	ok, brokenAt, err := Verify(tampered)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, brokenAt)
}

func TestVerifyDetectsEntryHashTamper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	l := Open(path)
	_, err := l.Append("receipt", "ts")
	require.NoError(t, err)

	entries, err := l.Entries()
	require.NoError(t, err)
	entries[0].EntryHash = "deadbeef"

	ok, brokenAt, err := Verify(entries)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, brokenAt)
}
