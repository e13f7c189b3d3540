package verify

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestrie/cdr-kernel/attestation"
	"github.com/forestrie/cdr-kernel/keystore"
)

func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func testConfig() attestation.Config {
	return attestation.Config{ChunkSize: 16, Engine: attestation.EngineIdentity{Name: "cdr-kernel", Version: "test"}}
}

func TestRoundTripVerifyOK(t *testing.T) {
	data := []byte("this artifact will be attested and then verified successfully")
	path := writeTempFile(t, data)
	kp, err := keystore.LoadOrCreate(t.TempDir(), nil)
	require.NoError(t, err)

	bundle, err := attestation.Assemble(path, testConfig(), kp, attestation.DefaultEnvSnapshot(), nil)
	require.NoError(t, err)

	result, err := Bundle(bundle, path, nil)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.True(t, result.Checks.FileBlake2bMatch)
	assert.True(t, result.Checks.SignatureValid)
}

func TestVerifyFailsOnMutatedArtifact(t *testing.T) {
	data := []byte("this is the original artifact content, quite long indeed")
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	kp, err := keystore.LoadOrCreate(t.TempDir(), nil)
	require.NoError(t, err)
	bundle, err := attestation.Assemble(path, testConfig(), kp, attestation.DefaultEnvSnapshot(), nil)
	require.NoError(t, err)

	mutated := append([]byte{}, data...)
	mutated[5] ^= 0xff
	require.NoError(t, os.WriteFile(path, mutated, 0o644))

	result, err := Bundle(bundle, path, nil)
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.False(t, result.Checks.FileBlake2bMatch)
	assert.False(t, result.Checks.FileSHA512Match)
	assert.False(t, result.Checks.MerkleRootMatch)
}

func TestVerifyFailsOnTamperedSignature(t *testing.T) {
	data := []byte("artifact content for signature tamper test")
	path := writeTempFile(t, data)
	kp, err := keystore.LoadOrCreate(t.TempDir(), nil)
	require.NoError(t, err)

	bundle, err := attestation.Assemble(path, testConfig(), kp, attestation.DefaultEnvSnapshot(), nil)
	require.NoError(t, err)

	sigBytes, err := base64.StdEncoding.DecodeString(bundle.Signature.SignatureB64)
	require.NoError(t, err)
	sigBytes[0] ^= 0xff
	bundle.Signature.SignatureB64 = base64.StdEncoding.EncodeToString(sigBytes)

	result, err := Bundle(bundle, path, nil)
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.False(t, result.Checks.SignatureValid)
}

func TestVerifyEmptyInputOK(t *testing.T) {
	path := writeTempFile(t, nil)
	kp, err := keystore.LoadOrCreate(t.TempDir(), nil)
	require.NoError(t, err)

	bundle, err := attestation.Assemble(path, testConfig(), kp, attestation.DefaultEnvSnapshot(), nil)
	require.NoError(t, err)

	result, err := Bundle(bundle, path, nil)
	require.NoError(t, err)
	assert.True(t, result.OK)
}
