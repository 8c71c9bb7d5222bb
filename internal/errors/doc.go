// Package errors provides typed error values for envcli.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. The CLI
// layer maps each sentinel to a user-facing message and a non-zero exit.
//
// # Error Categories
//
//   - Sealing errors: building a sealed message failed (ErrSealing, ErrNoRecipients)
//   - Opening errors: a sealed message could not be opened (ErrWrongKey,
//     ErrBadPassphrase, ErrCorruptMessage, ErrEmptyMessage)
//   - Resolution errors: no local key fits (ErrNoUsableKey, ErrKeyNotFound)
//   - Identity errors: signing or identity problems (ErrSigning, ErrMissingIdentity)
//   - Vault errors: key material missing on disk (ErrKeyFileNotFound,
//     ErrNoPrivateKey)
//
// # Usage
//
// Wrap sentinels with the offending fingerprint or blob index:
//
//	return nil, fmt.Errorf("message %d for key %s: %w", i, fpr, kerrors.ErrWrongKey)
//
// Handle errors in the CLI layer:
//
//	if errors.Is(err, kerrors.ErrNoUsableKey) {
//	    // tell the user none of their keys was invited to the project
//	}
package errors
