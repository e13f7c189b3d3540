package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/forestrie/cdr-kernel/fingerprint"
)

// hashOutput is the hash subcommand's JSON report: everything an external
// caller needs without assembling a full signed bundle.
type hashOutput struct {
	File        string                       `json:"file"`
	Bytes       int64                        `json:"bytes"`
	ChunksCount int                          `json:"chunks_count"`
	LeafHexes   []string                     `json:"leaf_hexes"`
	FileDigests fingerprint.FileDigests       `json:"file_digests"`
	Merkle      fingerprint.MerkleCommitment  `json:"merkle"`
}

func runHash(args []string) int {
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	chunk := fs.Int("chunk", fingerprint.DefaultChunkSize, "chunk size in bytes")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "cdrkernel hash: expected exactly one file argument")
		return 1
	}
	path := fs.Arg(0)
	// Options may also follow the file argument, as in the usage line.
	if err := fs.Parse(fs.Args()[1:]); err != nil {
		return 1
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "cdrkernel hash: expected exactly one file argument")
		return 1
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cdrkernel hash: %v\n", err)
		return 2
	}
	defer f.Close()

	log := zap.NewNop().Sugar()
	res, err := fingerprint.Run(f, *chunk, nil, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cdrkernel hash: %v\n", err)
		return 2
	}

	leafHexes := make([]string, len(res.LeafHashes))
	for i, h := range res.LeafHashes {
		leafHexes[i] = hex.EncodeToString(h)
	}

	printJSON(hashOutput{
		File:        path,
		Bytes:       res.Bytes,
		ChunksCount: res.Chunks,
		LeafHexes:   leafHexes,
		FileDigests: res.FileDigests,
		Merkle:      res.Merkle,
	})
	return 0
}
