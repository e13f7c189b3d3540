package attestation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestrie/cdr-kernel/keystore"
)

func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func testConfig() Config {
	return Config{ChunkSize: 16, Engine: EngineIdentity{Name: "cdr-kernel", Version: "test"}}
}

func TestAssembleEmptyInput(t *testing.T) {
	path := writeTempFile(t, nil)
	kp, err := keystore.LoadOrCreate(t.TempDir(), nil)
	require.NoError(t, err)

	bundle, err := Assemble(path, testConfig(), kp, DefaultEnvSnapshot(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, bundle.Claims.Merkle.LeafCount)
	assert.Empty(t, bundle.Proofs.Sampled)
	assert.Equal(t, BundleSchema, bundle.Schema)
}

func TestAssembleSampledProofsSelfVerify(t *testing.T) {
	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(i)
	}
	path := writeTempFile(t, data)
	kp, err := keystore.LoadOrCreate(t.TempDir(), nil)
	require.NoError(t, err)

	bundle, err := Assemble(path, testConfig(), kp, DefaultEnvSnapshot(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, bundle.Proofs.Sampled)
	for _, p := range bundle.Proofs.Sampled {
		assert.True(t, p.Verifies)
	}
}

func TestAssembleDeterministicAcrossRuns(t *testing.T) {
	data := []byte("deterministic content for two independent runs")
	path := writeTempFile(t, data)
	dir := t.TempDir()
	kp, err := keystore.LoadOrCreate(dir, nil)
	require.NoError(t, err)

	b1, err := Assemble(path, testConfig(), kp, DefaultEnvSnapshot(), nil)
	require.NoError(t, err)
	b2, err := Assemble(path, testConfig(), kp, DefaultEnvSnapshot(), nil)
	require.NoError(t, err)

	assert.Equal(t, b1.Claims, b2.Claims)
	assert.Equal(t, b1.Proofs, b2.Proofs)
	assert.NotEqual(t, b1.Manifest.Run.ID, b2.Manifest.Run.ID)
}
