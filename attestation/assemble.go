package attestation

import (
	"crypto/ed25519"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/forestrie/cdr-kernel/canon"
	"github.com/forestrie/cdr-kernel/fingerprint"
	"github.com/forestrie/cdr-kernel/keystore"
	"github.com/forestrie/cdr-kernel/merkle"
)

// Config configures one assembly run.
type Config struct {
	ChunkSize int
	Engine    EngineIdentity
}

// nowFunc and newRunID are indirected so tests can pin them; production
// code leaves them at their defaults.
var (
	nowFunc  = defaultNow
	newRunID = defaultRunID
)

// Assemble runs the full C4 pipeline over the file at artifactPath: C2
// fingerprinting, C3 root and sampled proofs, manifest construction, and
// Ed25519 signing. env is captured explicitly by the caller (see
// DefaultEnvSnapshot) rather than read implicitly here.
func Assemble(artifactPath string, cfg Config, kp *keystore.KeyPair, env EnvSnapshot, log *zap.SugaredLogger) (*Bundle, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	f, err := os.Open(artifactPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = fingerprint.DefaultChunkSize
	}

	fp, err := fingerprint.Run(f, chunkSize, nil, log)
	if err != nil {
		return nil, err
	}

	manifest := Manifest{
		Engine: cfg.Engine,
		Run: RunInfo{
			ID:        newRunID(),
			CreatedAt: nowFunc(),
		},
		Subject: Subject{
			Filename:  filepath.Base(artifactPath),
			ByteCount: fp.Bytes,
		},
		Environment: env,
	}

	manifestJSON, err := canon.JSON(manifest)
	if err != nil {
		return nil, err
	}
	manifestSHA512 := sha512.Sum512(manifestJSON)

	claims := SignedPayload{
		Schema:         SignedPayloadSchema,
		ManifestSHA512: hex.EncodeToString(manifestSHA512[:]),
		FileDigests:    fp.FileDigests,
		Merkle:         fp.Merkle,
	}

	claimsJSON, err := canon.JSON(claims)
	if err != nil {
		return nil, err
	}
	signedMessageSHA512 := sha512.Sum512(claimsJSON)

	if kp == nil || len(kp.Private) != ed25519.PrivateKeySize {
		return nil, &CryptoError{Kind: ErrSignFailed}
	}
	sig := ed25519.Sign(kp.Private, claimsJSON)

	pubPEM, err := kp.PublicKeyPEM()
	if err != nil {
		return nil, err
	}

	proofs, err := buildSampledProofs(fp)
	if err != nil {
		return nil, err
	}

	log.Infow("attestation assembled",
		"run_id", manifest.Run.ID, "root", fp.Merkle.Root, "leaf_count", fp.Merkle.LeafCount)

	return &Bundle{
		Schema:   BundleSchema,
		Manifest: manifest,
		Canonicalization: Canonicalization{
			SpecID:      CanonicalizationSpecID,
			Description: "whitespace-free JSON, object keys sorted by byte order",
		},
		Claims: claims,
		Proofs: Proofs{
			Type:       ProofType,
			MerkleRoot: fp.Merkle.Root,
			Algorithm:  "blake2b512",
			Sampled:    proofs,
		},
		Signature: Signature{
			Algorithm:           SignatureAlgorithm,
			PublicKeyPEM:        pubPEM,
			SignedMessageSHA512: hex.EncodeToString(signedMessageSHA512[:]),
			SignatureB64:        base64.StdEncoding.EncodeToString(sig),
		},
	}, nil
}

// buildSampledProofs applies the deterministic sampling policy and
// self-verifies every resulting proof before persisting it.
func buildSampledProofs(fp *fingerprint.Result) ([]SampledProof, error) {
	n := fp.Merkle.LeafCount
	indices := SampleIndices(n)
	if indices == nil {
		return nil, nil
	}

	root, err := hex.DecodeString(fp.Merkle.Root)
	if err != nil {
		return nil, fmt.Errorf("attestation: decoding root: %w", err)
	}

	out := make([]SampledProof, 0, len(indices))
	for _, idx := range indices {
		proof, err := merkle.Proof(fp.LeafHashes, idx)
		if err != nil {
			return nil, err
		}
		siblingsHex := make([]string, len(proof.Siblings))
		for i, s := range proof.Siblings {
			siblingsHex[i] = hex.EncodeToString(s)
		}
		out = append(out, SampledProof{
			Index:       idx,
			LeafHex:     hex.EncodeToString(proof.LeafHash),
			SiblingsHex: siblingsHex,
			Verifies:    merkle.Verify(root, proof),
		})
	}
	return out, nil
}
