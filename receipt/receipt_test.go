package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestrie/cdr-kernel/attestation"
)

func TestNewFillsReceiptHash(t *testing.T) {
	r, err := New("fingerprinter", "run-1", "2026-07-30T00:00:00Z",
		map[string]any{"chunk_size": 4194304},
		map[string]any{},
		map[string]any{"leaf_count": 3},
		attestation.EnvSnapshot{RuntimeVersion: "go1.22", Platform: "linux", Architecture: "amd64"},
		"",
	)
	require.NoError(t, err)
	assert.NotEmpty(t, r.ReceiptHash)

	ok, err := Verify(r)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyDetectsTampering(t *testing.T) {
	r, err := New("fingerprinter", "run-1", "2026-07-30T00:00:00Z",
		map[string]any{"chunk_size": 4194304}, nil, nil,
		attestation.EnvSnapshot{}, "")
	require.NoError(t, err)

	r.Outputs = map[string]any{"tampered": true}
	ok, err := Verify(r)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyChainLinksPrevHash(t *testing.T) {
	r1, err := New("step1", "run-1", "t1", nil, nil, nil, attestation.EnvSnapshot{}, "")
	require.NoError(t, err)
	r2, err := New("step2", "run-1", "t2", nil, nil, nil, attestation.EnvSnapshot{}, r1.ReceiptHash)
	require.NoError(t, err)

	ok, err := VerifyChain([]*Receipt{r1, r2})
	require.NoError(t, err)
	assert.True(t, ok)

	r2.PrevReceiptHash = "broken"
	ok, err = VerifyChain([]*Receipt{r1, r2})
	require.NoError(t, err)
	assert.False(t, ok)
}
