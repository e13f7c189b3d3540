package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/forestrie/cdr-kernel/attestation"
	"github.com/forestrie/cdr-kernel/verify"
)

func runVerify(args []string, log *zap.SugaredLogger) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	bundlePath := fs.String("bundle", "", "path to attestation.json")
	filePath := fs.String("file", "", "path to the artifact the bundle attests to")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *bundlePath == "" || *filePath == "" {
		fmt.Fprintln(os.Stderr, "cdrkernel verify: --bundle and --file are required")
		return 1
	}

	raw, err := os.ReadFile(*bundlePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cdrkernel verify: %v\n", err)
		return 2
	}

	var bundle attestation.Bundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		fmt.Fprintf(os.Stderr, "cdrkernel verify: decoding bundle: %v\n", err)
		return 2
	}

	res, err := verify.Bundle(&bundle, *filePath, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cdrkernel verify: %v\n", err)
		return exitCodeForError(err)
	}

	printJSON(res)
	if !res.OK {
		return exitCodeForError(&verify.ErrMismatch{Result: res})
	}
	return 0
}
