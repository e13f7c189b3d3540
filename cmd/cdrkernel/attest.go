package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/forestrie/cdr-kernel/attestation"
	"github.com/forestrie/cdr-kernel/fingerprint"
	"github.com/forestrie/cdr-kernel/receipt"
	"github.com/forestrie/cdr-kernel/translog"
)

type attestSummary struct {
	File         string   `json:"file"`
	RunID        string   `json:"run_id"`
	Root         string   `json:"root"`
	BundlePath   string   `json:"bundle_path"`
	ReceiptPaths []string `json:"receipt_paths"`
	LogEntryHash string   `json:"log_entry_hash"`
}

func runAttest(args []string, log *zap.SugaredLogger) int {
	fs := flag.NewFlagSet("attest", flag.ContinueOnError)
	chunk := fs.Int("chunk", fingerprint.DefaultChunkSize, "chunk size in bytes")
	outDir := fs.String("out", "out", "directory to write attestation.json into")
	keysDir := fs.String("keys", defaultKeysDir(), "keystore directory")
	logPath := fs.String("log", "transparency.log", "path to the append-only transparency log")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "cdrkernel attest: expected exactly one file argument")
		return 1
	}
	path := fs.Arg(0)
	// Options may also follow the file argument, as in the usage line.
	if err := fs.Parse(fs.Args()[1:]); err != nil {
		return 1
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "cdrkernel attest: expected exactly one file argument")
		return 1
	}

	kp, err := loadKeys(*keysDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cdrkernel attest: loading keys: %v\n", err)
		return 2
	}

	cfg := attestation.Config{ChunkSize: *chunk, Engine: engineIdentity()}
	env := attestation.DefaultEnvSnapshot()

	bundle, err := attestation.Assemble(path, cfg, kp, env, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cdrkernel attest: %v\n", err)
		return 2
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "cdrkernel attest: %v\n", err)
		return 2
	}

	bundleJSON, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "cdrkernel attest: encoding bundle: %v\n", err)
		return 2
	}

	finalPath := filepath.Join(*outDir, "attestation.json")
	if err := writeAtomic(finalPath, bundleJSON); err != nil {
		fmt.Fprintf(os.Stderr, "cdrkernel attest: %v\n", err)
		return 2
	}

	chain, err := buildReceiptChain(bundle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cdrkernel attest: building receipts: %v\n", err)
		return 2
	}

	receiptPaths, err := writeReceipts(*outDir, chain)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cdrkernel attest: writing receipts: %v\n", err)
		return 2
	}

	tip := chain[len(chain)-1]
	entry, err := translog.Open(*logPath).Append(tip.ReceiptHash, tip.CreatedAt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cdrkernel attest: appending transparency log: %v\n", err)
		return 2
	}

	log.Infow("attest complete", "run_id", bundle.Manifest.Run.ID, "log_entry_hash", entry.EntryHash)

	printJSON(attestSummary{
		File:         path,
		RunID:        bundle.Manifest.Run.ID,
		Root:         bundle.Proofs.MerkleRoot,
		BundlePath:   finalPath,
		ReceiptPaths: receiptPaths,
		LogEntryHash: entry.EntryHash,
	})
	return 0
}

// buildReceiptChain produces one receipt per engine step that Assemble ran —
// fingerprinting, Merkle commitment, and signing — each chained to the one
// before it via prev_receipt_hash, per spec section 6's "one file per step."
func buildReceiptChain(bundle *attestation.Bundle) ([]*receipt.Receipt, error) {
	runID := bundle.Manifest.Run.ID
	createdAt := bundle.Manifest.Run.CreatedAt
	env := bundle.Manifest.Environment

	fingerprintReceipt, err := receipt.New(
		"cdr-kernel.fingerprint", runID, createdAt,
		map[string]any{"filename": bundle.Manifest.Subject.Filename, "chunk_size": bundle.Claims.Merkle.ChunkSize},
		map[string]any{},
		map[string]any{"byte_count": bundle.Manifest.Subject.ByteCount, "file_digests": bundle.Claims.FileDigests},
		env, "",
	)
	if err != nil {
		return nil, err
	}

	merkleReceipt, err := receipt.New(
		"cdr-kernel.merkle", runID, createdAt,
		map[string]any{"leaf_count": bundle.Claims.Merkle.LeafCount},
		map[string]any{},
		map[string]any{"root": bundle.Proofs.MerkleRoot, "sampled_count": len(bundle.Proofs.Sampled)},
		env, fingerprintReceipt.ReceiptHash,
	)
	if err != nil {
		return nil, err
	}

	signingReceipt, err := receipt.New(
		"cdr-kernel.attestation", runID, createdAt,
		map[string]any{"manifest_sha512": bundle.Claims.ManifestSHA512},
		map[string]any{},
		map[string]any{"signature_algorithm": bundle.Signature.Algorithm, "signed_message_sha512": bundle.Signature.SignedMessageSHA512},
		env, merkleReceipt.ReceiptHash,
	)
	if err != nil {
		return nil, err
	}

	return []*receipt.Receipt{fingerprintReceipt, merkleReceipt, signingReceipt}, nil
}

// writeReceipts persists each receipt in chain as its own JSON file adjacent
// to attestation.json, named by step order and engine so a reader can tell
// at a glance which step produced which file.
func writeReceipts(outDir string, chain []*receipt.Receipt) ([]string, error) {
	paths := make([]string, 0, len(chain))
	for i, r := range chain {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("receipt-%02d-%s.json", i+1, r.Engine)
		path := filepath.Join(outDir, name)
		if err := writeAtomic(path, data); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// writeAtomic writes data to a temp file in the same directory as dst, then
// renames it into place, so a process killed mid-write never leaves a
// partial attestation.json for a reader to pick up (spec section 5
// cancellation semantics).
func writeAtomic(dst string, data []byte) error {
	dir := filepath.Dir(dst)
	tmp, err := os.CreateTemp(dir, ".attestation-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
