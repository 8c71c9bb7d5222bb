package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kerrors "github.com/env-store/envcli/internal/errors"

	"github.com/ProtonMail/go-crypto/openpgp"
)

const (
	publicKeyFile  = "pub.key"
	privateKeyFile = "priv.key"
)

// Vault stores key pairs on disk, one directory per fingerprint.
type Vault struct {
	Dir string
}

// KeyDir returns the directory holding the key with the given fingerprint.
func (v Vault) KeyDir(fingerprint string) string {
	return filepath.Join(v.Dir, strings.ToUpper(fingerprint))
}

// Save writes both halves of a key pair.
func (v Vault) Save(kp *KeyPair) error {
	dir := v.KeyDir(kp.Fingerprint)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}

	pub, err := kp.ArmoredPublicKey()
	if err != nil {
		return err
	}
	priv, err := kp.ArmoredPrivateKey()
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(dir, publicKeyFile), []byte(pub), 0644); err != nil { // #nosec G306 -- public keys are not secret
		return fmt.Errorf("failed to write public key: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, privateKeyFile), []byte(priv), 0600); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}
	return nil
}

// LoadPrivateKey reads the private key for a fingerprint. The key is returned
// still locked; Decrypt and Sign unlock a copy with the passphrase.
func (v Vault) LoadPrivateKey(fingerprint string) (*openpgp.Entity, error) {
	return v.load(fingerprint, privateKeyFile)
}

// LoadPublicKey reads the public key for a fingerprint.
func (v Vault) LoadPublicKey(fingerprint string) (*openpgp.Entity, error) {
	return v.load(fingerprint, publicKeyFile)
}

// ReadPublicKey returns the armored public key for a fingerprint.
func (v Vault) ReadPublicKey(fingerprint string) (string, error) {
	data, err := v.read(fingerprint, publicKeyFile)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (v Vault) load(fingerprint, name string) (*openpgp.Entity, error) {
	data, err := v.read(fingerprint, name)
	if err != nil {
		return nil, err
	}
	entity, err := ParseArmoredKey(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s for %s: %w", name, fingerprint, err)
	}
	return entity, nil
}

func (v Vault) read(fingerprint, name string) ([]byte, error) {
	path := filepath.Join(v.KeyDir(fingerprint), name)
	data, err := os.ReadFile(path) // #nosec G304 -- path is built from the vault dir and a fingerprint
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", path, kerrors.ErrKeyFileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
