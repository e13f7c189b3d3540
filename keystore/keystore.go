package keystore

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

const (
	publicKeyFile  = "ed25519_public.pem"
	privateKeyFile = "ed25519_private.pem"
	lockFile       = ".keystore.lock"

	publicKeyPEMType  = "PUBLIC KEY"
	privateKeyPEMType = "PRIVATE KEY"
)

// KeyPair holds a loaded or freshly generated Ed25519 signing key.
type KeyPair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// LoadOrCreate ensures dir exists, then reads an existing keypair from it or
// generates and persists a fresh one. Concurrent cold starts across
// processes are serialized with an exclusive file lock so two callers never
// generate and clobber different keypairs (spec section 5).
func LoadOrCreate(dir string, log *zap.SugaredLogger) (*KeyPair, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	fl := flock.New(filepath.Join(dir, lockFile))
	if err := fl.Lock(); err != nil {
		return nil, err
	}
	defer fl.Unlock()

	pubPath := filepath.Join(dir, publicKeyFile)
	privPath := filepath.Join(dir, privateKeyFile)

	pubExists := fileExists(pubPath)
	privExists := fileExists(privPath)

	switch {
	case pubExists && privExists:
		log.Infow("keystore loading existing keypair", "dir", dir)
		return readKeyPair(pubPath, privPath)
	case pubExists != privExists:
		return nil, &CryptoError{Kind: ErrPartialKeypair, Path: dir}
	default:
		log.Infow("keystore generating new keypair", "dir", dir)
		return generateAndPersist(pubPath, privPath)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func generateAndPersist(pubPath, privPath string) (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, &CryptoError{Kind: ErrKeyGeneration}
	}

	pubDER, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, &CryptoError{Kind: ErrKeyEncoding, Path: pubPath}
	}
	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, &CryptoError{Kind: ErrKeyEncoding, Path: privPath}
	}

	pubPEM := pem.EncodeToMemory(&pem.Block{Type: publicKeyPEMType, Bytes: pubDER})
	privPEM := pem.EncodeToMemory(&pem.Block{Type: privateKeyPEMType, Bytes: privDER})

	if err := os.WriteFile(pubPath, pubPEM, 0o644); err != nil {
		return nil, err
	}
	// Private key permissions are owner read/write only. This is
	// best-effort: platforms without POSIX permission bits ignore the mode.
	if err := os.WriteFile(privPath, privPEM, 0o600); err != nil {
		return nil, err
	}

	return &KeyPair{Public: pub, Private: priv}, nil
}

func readKeyPair(pubPath, privPath string) (*KeyPair, error) {
	pubPEM, err := os.ReadFile(pubPath)
	if err != nil {
		return nil, err
	}
	privPEM, err := os.ReadFile(privPath)
	if err != nil {
		return nil, err
	}

	pubBlock, _ := pem.Decode(pubPEM)
	if pubBlock == nil {
		return nil, &CryptoError{Kind: ErrKeyEncoding, Path: pubPath}
	}
	privBlock, _ := pem.Decode(privPEM)
	if privBlock == nil {
		return nil, &CryptoError{Kind: ErrKeyEncoding, Path: privPath}
	}

	pubAny, err := x509.ParsePKIXPublicKey(pubBlock.Bytes)
	if err != nil {
		return nil, &CryptoError{Kind: ErrKeyEncoding, Path: pubPath}
	}
	pub, ok := pubAny.(ed25519.PublicKey)
	if !ok {
		return nil, &CryptoError{Kind: ErrKeyEncoding, Path: pubPath}
	}

	privAny, err := x509.ParsePKCS8PrivateKey(privBlock.Bytes)
	if err != nil {
		return nil, &CryptoError{Kind: ErrKeyEncoding, Path: privPath}
	}
	priv, ok := privAny.(ed25519.PrivateKey)
	if !ok {
		return nil, &CryptoError{Kind: ErrKeyEncoding, Path: privPath}
	}

	return &KeyPair{Public: pub, Private: priv}, nil
}

// PublicKeyPEM renders the keypair's public key as SPKI PEM, the form
// embedded directly in the attestation bundle's signature block.
func (k *KeyPair) PublicKeyPEM() (string, error) {
	der, err := x509.MarshalPKIXPublicKey(k.Public)
	if err != nil {
		return "", &CryptoError{Kind: ErrKeyEncoding}
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: publicKeyPEMType, Bytes: der})), nil
}
