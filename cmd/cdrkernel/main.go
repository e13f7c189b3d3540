// Command cdrkernel is the minimal CLI surface over the cryptographic
// evidence kernel: hash an artifact, attest it, or verify a previously
// issued attestation bundle against it.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/forestrie/cdr-kernel/attestation"
	"github.com/forestrie/cdr-kernel/keystore"
	"github.com/forestrie/cdr-kernel/verify"
)

const (
	engineName    = "cdr-kernel"
	engineVersion = "0.1.0"
)

const usage = `cdrkernel <command> [options]

Commands:
  hash <file> [--chunk N]
  attest <file> [--chunk N] [--out DIR] [--keys DIR]
  verify --bundle PATH --file PATH

Exit codes: 0 ok, 1 usage error, 2 operational error, 3 verification mismatch.
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 1
	}

	log := newLogger()

	switch args[0] {
	case "hash":
		return runHash(args[1:])
	case "attest":
		return runAttest(args[1:], log)
	case "verify":
		return runVerify(args[1:], log)
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "cdrkernel: unknown command %q\n\n%s", args[0], usage)
		return 1
	}
}

func newLogger() *zap.SugaredLogger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

func printJSON(v any) {
	out, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cdrkernel: encoding output: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

func exitCodeForError(err error) int {
	var mismatch *verify.ErrMismatch
	if errors.As(err, &mismatch) {
		return 3
	}
	return 2
}

// engineIdentity is the single source of the engine name/version, so every
// subcommand reports the same one in its manifests.
func engineIdentity() attestation.EngineIdentity {
	return attestation.EngineIdentity{Name: engineName, Version: engineVersion}
}

func defaultKeysDir() string { return "keys" }

func loadKeys(dir string, log *zap.SugaredLogger) (*keystore.KeyPair, error) {
	return keystore.LoadOrCreate(dir, log)
}
