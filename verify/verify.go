package verify

import (
	"crypto/ed25519"
	"crypto/sha512"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/forestrie/cdr-kernel/attestation"
	"github.com/forestrie/cdr-kernel/canon"
	"github.com/forestrie/cdr-kernel/fingerprint"
	"github.com/forestrie/cdr-kernel/merkle"
)

// Checks is one boolean per property the verifier checks independently, so
// a failure report says exactly what diverged instead of just "no".
type Checks struct {
	FileBlake2bMatch   bool `json:"file_blake2b_match"`
	FileSHA512Match    bool `json:"file_sha512_match"`
	MerkleRootMatch    bool `json:"merkle_root_match"`
	LeafCountMatch     bool `json:"leaf_count_match"`
	SignedMessageMatch bool `json:"signed_message_match"`
	SignatureValid     bool `json:"signature_valid"`
	SampledProofsValid bool `json:"sampled_proofs_valid"`
}

func (c Checks) allPass() bool {
	return c.FileBlake2bMatch && c.FileSHA512Match && c.MerkleRootMatch &&
		c.LeafCountMatch && c.SignedMessageMatch && c.SignatureValid && c.SampledProofsValid
}

// Result is the full verifier report.
type Result struct {
	OK        bool                     `json:"ok"`
	BytesRead int64                    `json:"bytes_read"`
	Expected  attestation.SignedPayload `json:"expected"`
	Actual    attestation.SignedPayload `json:"actual"`
	Checks    Checks                   `json:"checks"`
}

// Bundle verifies bundle against the artifact at artifactPath, streaming it
// with the same chunk size the bundle's own claims record.
func Bundle(bundle *attestation.Bundle, artifactPath string, log *zap.SugaredLogger) (*Result, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	f, err := os.Open(artifactPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	chunkSize := bundle.Claims.Merkle.ChunkSize
	if chunkSize <= 0 {
		chunkSize = fingerprint.DefaultChunkSize
	}

	fp, err := fingerprint.Run(f, chunkSize, nil, log)
	if err != nil {
		return nil, err
	}

	actual := attestation.SignedPayload{
		Schema:         bundle.Claims.Schema,
		ManifestSHA512: bundle.Claims.ManifestSHA512,
		FileDigests:    fp.FileDigests,
		Merkle:         fp.Merkle,
	}

	checks := Checks{
		FileBlake2bMatch: fp.FileDigests.Blake2b512 == bundle.Claims.FileDigests.Blake2b512,
		FileSHA512Match:  fp.FileDigests.SHA512 == bundle.Claims.FileDigests.SHA512,
		MerkleRootMatch:  fp.Merkle.Root == bundle.Claims.Merkle.Root,
		LeafCountMatch:   fp.Merkle.LeafCount == bundle.Claims.Merkle.LeafCount,
	}

	claimsJSON, err := canon.JSON(bundle.Claims)
	if err != nil {
		return nil, err
	}
	signedMessageSHA512 := sha512.Sum512(claimsJSON)
	checks.SignedMessageMatch = hex.EncodeToString(signedMessageSHA512[:]) == bundle.Signature.SignedMessageSHA512

	checks.SignatureValid = verifySignature(bundle, claimsJSON)
	checks.SampledProofsValid = verifySampledProofs(bundle)

	res := &Result{
		OK:        checks.allPass(),
		BytesRead: fp.Bytes,
		Expected:  bundle.Claims,
		Actual:    actual,
		Checks:    checks,
	}

	log.Infow("verification finished", "ok", res.OK, "bytes_read", res.BytesRead)
	return res, nil
}

func verifySignature(bundle *attestation.Bundle, claimsJSON []byte) bool {
	block, _ := pem.Decode([]byte(bundle.Signature.PublicKeyPEM))
	if block == nil {
		return false
	}
	pubAny, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return false
	}
	pub, ok := pubAny.(ed25519.PublicKey)
	if !ok {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(bundle.Signature.SignatureB64)
	if err != nil {
		return false
	}
	return ed25519.Verify(pub, claimsJSON, sig)
}

func verifySampledProofs(bundle *attestation.Bundle) bool {
	if len(bundle.Proofs.Sampled) == 0 {
		return bundle.Claims.Merkle.LeafCount == 0
	}
	root, err := hex.DecodeString(bundle.Proofs.MerkleRoot)
	if err != nil {
		return false
	}
	for _, sp := range bundle.Proofs.Sampled {
		leaf, err := hex.DecodeString(sp.LeafHex)
		if err != nil {
			return false
		}
		siblings := make([][]byte, len(sp.SiblingsHex))
		for i, s := range sp.SiblingsHex {
			sib, err := hex.DecodeString(s)
			if err != nil {
				return false
			}
			siblings[i] = sib
		}
		proof := &merkle.InclusionProof{Index: sp.Index, LeafHash: leaf, Siblings: siblings}
		if !merkle.Verify(root, proof) {
			return false
		}
		if !sp.Verifies {
			return false
		}
	}
	return true
}

// ErrMismatch is returned by callers (typically the CLI) that want to turn a
// negative verification outcome into an error for exit-code purposes,
// without conflating it with the genuine I/O and crypto errors Bundle itself
// returns.
type ErrMismatch struct {
	Result *Result
}

func (e *ErrMismatch) Error() string {
	return fmt.Sprintf("verify: bundle does not match artifact (checks=%+v)", e.Result.Checks)
}
