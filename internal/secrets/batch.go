package secrets

import (
	"fmt"
	"runtime"

	kerrors "github.com/env-store/envcli/internal/errors"

	"github.com/ProtonMail/go-crypto/openpgp"
	"golang.org/x/sync/errgroup"
)

// DecryptOptions carries what is needed to go from a sealed message to
// plaintext besides the keyring itself.
type DecryptOptions struct {
	Vault      Vault
	Passphrase []byte
	Policy     MatchPolicy
	Notifier   Notifier
}

// BatchOptions configures DecryptMany.
type BatchOptions struct {
	DecryptOptions

	// Workers bounds the number of concurrent decryptions. Zero means
	// runtime.NumCPU().
	Workers int
}

func (o DecryptOptions) resolver(keyring Keyring) Resolver {
	return Resolver{Keyring: keyring, Policy: o.Policy, Notifier: o.Notifier}
}

// resolveKey resolves blob against keyring and loads the unlocked private key.
func (o DecryptOptions) resolveKey(blob string, keyring Keyring) (*openpgp.Entity, error) {
	entry, err := o.resolver(keyring).ResolveMessage(blob)
	if err != nil {
		return nil, err
	}

	key, err := o.Vault.LoadPrivateKey(entry.Fingerprint)
	if err != nil {
		return nil, err
	}
	return Unlock(key, o.Passphrase)
}

// DecryptFull resolves the key for a single message and decrypts it.
func DecryptFull(blob string, keyring Keyring, opts DecryptOptions) ([]byte, error) {
	key, err := opts.resolveKey(blob, keyring)
	if err != nil {
		return nil, err
	}
	return Decrypt(blob, key, nil)
}

// decryptMessage opens one message of a batch with an unlocked key.
var decryptMessage = Decrypt

// DecryptMany decrypts blobs with the key resolved from the first one. The
// output has one entry per input, in input order.
//
// Every message is attempted even when another fails. If any fail, the
// failure with the lowest index is returned and no plaintext is.
func DecryptMany(blobs []string, keyring Keyring, opts BatchOptions) ([][]byte, error) {
	if len(blobs) == 0 {
		return nil, kerrors.ErrEmptyBatch
	}

	key, err := opts.resolveKey(blobs[0], keyring)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([][]byte, len(blobs))
	failures := make([]error, len(blobs))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, blob := range blobs {
		g.Go(func() error {
			plaintext, err := decryptMessage(blob, key, nil)
			if err != nil {
				failures[i] = fmt.Errorf("message %d: %w", i, err)
				return nil
			}
			results[i] = plaintext
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range failures {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
