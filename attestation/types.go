package attestation

import (
	"runtime"

	"github.com/forestrie/cdr-kernel/fingerprint"
)

const (
	// BundleSchema is the top-level schema tag of the attestation document.
	BundleSchema = "resethiq.attestation.v1"
	// SignedPayloadSchema is the schema tag of the signed claims structure.
	SignedPayloadSchema = "resethiq.signed_payload.v1"
	// CanonicalizationSpecID identifies the byte-level canonicalization
	// rules this kernel uses, so a verifier can reject a bundle produced
	// by an incompatible canonicalizer instead of silently misverifying it.
	CanonicalizationSpecID = "cdr-stream-v1"
	// ProofType names the inclusion-proof shape used in Proofs.Sampled.
	ProofType = "merkle_inclusion_v1"
	// SignatureAlgorithm names the only signature scheme the kernel speaks.
	SignatureAlgorithm = "ed25519"
)

// EngineIdentity names and versions the component that produced a manifest.
type EngineIdentity struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// RunInfo is the per-run identity of an attestation: a fresh UUIDv4 and an
// RFC-3339 UTC timestamp. These two fields are the only ones the
// determinism property (spec testable property 5) allows to differ between
// two runs over the same artifact.
type RunInfo struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
}

// Subject identifies the artifact the manifest is about, without carrying
// any of its content.
type Subject struct {
	Filename  string `json:"filename"`
	ByteCount int64  `json:"byte_count"`
}

// EnvSnapshot is an explicit capture of the environment the run happened in,
// passed in rather than read implicitly so tests can inject a fixed value
// and assert byte-identical manifests (spec section 9, "hidden ambient
// state").
type EnvSnapshot struct {
	RuntimeVersion string `json:"runtime_version"`
	Platform       string `json:"platform"`
	Architecture   string `json:"architecture"`
}

// DefaultEnvSnapshot captures the running process's actual environment.
func DefaultEnvSnapshot() EnvSnapshot {
	return EnvSnapshot{
		RuntimeVersion: runtime.Version(),
		Platform:       runtime.GOOS,
		Architecture:   runtime.GOARCH,
	}
}

// Manifest is the non-cryptographic description of one attestation run.
type Manifest struct {
	Engine      EngineIdentity `json:"engine"`
	Run         RunInfo        `json:"run"`
	Subject     Subject        `json:"subject"`
	Environment EnvSnapshot    `json:"environment"`
}

// SignedPayload is the structure whose canonical JSON encoding is the
// signing target. Everything a verifier needs to recompute and compare is
// in here, and nothing else is signed.
type SignedPayload struct {
	Schema         string                       `json:"schema"`
	ManifestSHA512 string                       `json:"manifest_sha512"`
	FileDigests    fingerprint.FileDigests      `json:"file_digests"`
	Merkle         fingerprint.MerkleCommitment `json:"merkle"`
}

// SampledProof is one self-verified inclusion proof persisted alongside the
// bundle, with the verification outcome recorded at assembly time so a
// reader can spot an internally inconsistent bundle without a full replay.
type SampledProof struct {
	Index       int      `json:"index"`
	LeafHex     string   `json:"leaf_hex"`
	SiblingsHex []string `json:"siblings_hex"`
	Verifies    bool     `json:"verifies"`
}

// Proofs bundles the sampled inclusion proofs produced by the deterministic
// sampling policy (spec section 4.4 step 6).
type Proofs struct {
	Type       string         `json:"type"`
	MerkleRoot string         `json:"merkle_root"`
	Algorithm  string         `json:"algorithm"`
	Sampled    []SampledProof `json:"sampled"`
}

// Signature is the Ed25519 signature block.
type Signature struct {
	Algorithm           string `json:"algorithm"`
	PublicKeyPEM        string `json:"public_key_pem"`
	SignedMessageSHA512 string `json:"signed_message_sha512"`
	SignatureB64        string `json:"signature_b64"`
}

// Canonicalization names the canonicalization rules a verifier must apply,
// so that format drift is detectable rather than silently assumed.
type Canonicalization struct {
	SpecID      string `json:"spec_id"`
	Description string `json:"description"`
}

// Bundle is the complete attestation document: the bytes written to
// attestation.json.
type Bundle struct {
	Schema           string           `json:"schema"`
	Manifest         Manifest         `json:"manifest"`
	Canonicalization Canonicalization `json:"canonicalization"`
	Claims           SignedPayload    `json:"claims"`
	Proofs           Proofs           `json:"proofs"`
	Signature        Signature        `json:"signature"`
}
