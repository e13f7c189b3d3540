package receipt

import (
	"crypto/sha512"
	"encoding/hex"

	"github.com/forestrie/cdr-kernel/attestation"
	"github.com/forestrie/cdr-kernel/canon"
)

// Version1 is the only receipt schema version this kernel emits.
const Version1 = 1

// Receipt is a self-hashing descriptor of one engine step.
type Receipt struct {
	Version         int                     `json:"version"`
	Engine          string                  `json:"engine"`
	RunID           string                  `json:"run_id"`
	CreatedAt       string                  `json:"created_at"`
	Inputs          map[string]any          `json:"inputs"`
	Params          map[string]any          `json:"params"`
	Outputs         map[string]any          `json:"outputs"`
	Environment     attestation.EnvSnapshot `json:"environment"`
	PrevReceiptHash string                  `json:"prev_receipt_hash,omitempty"`
	ReceiptHash     string                  `json:"receipt_hash,omitempty"`
}

// New builds a Receipt and fills in ReceiptHash as the SHA-512 hex digest of
// the canonical JSON encoding of every other field. prevReceiptHash may be
// empty for the first step in a run.
func New(
	engine, runID, createdAt string,
	inputs, params, outputs map[string]any,
	env attestation.EnvSnapshot,
	prevReceiptHash string,
) (*Receipt, error) {
	r := &Receipt{
		Version:         Version1,
		Engine:          engine,
		RunID:           runID,
		CreatedAt:       createdAt,
		Inputs:          inputs,
		Params:          params,
		Outputs:         outputs,
		Environment:     env,
		PrevReceiptHash: prevReceiptHash,
	}

	hashed, err := hashReceipt(r)
	if err != nil {
		return nil, err
	}
	r.ReceiptHash = hashed
	return r, nil
}

func hashReceipt(r *Receipt) (string, error) {
	unhashed := *r
	unhashed.ReceiptHash = ""
	data, err := canon.JSON(unhashed)
	if err != nil {
		return "", err
	}
	sum := sha512.Sum512(data)
	return hex.EncodeToString(sum[:]), nil
}

// Verify recomputes r's receipt_hash and reports whether it matches the
// stored value, catching a receipt that was edited after it was emitted.
func Verify(r *Receipt) (bool, error) {
	want, err := hashReceipt(r)
	if err != nil {
		return false, err
	}
	return want == r.ReceiptHash, nil
}

// VerifyChain checks that every receipt's PrevReceiptHash equals the
// ReceiptHash of the one before it, in addition to each receipt's own hash
// being internally consistent (spec section 3 invariant on receipt chains).
func VerifyChain(chain []*Receipt) (bool, error) {
	for i, r := range chain {
		ok, err := Verify(r)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		if i > 0 && r.PrevReceiptHash != chain[i-1].ReceiptHash {
			return false, nil
		}
	}
	return true, nil
}
