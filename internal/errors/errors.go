package errors

import "errors"

// Sealing errors indicate a sealed message could not be produced.
var (
	// ErrSealing indicates a recipient key is malformed or cannot encrypt.
	ErrSealing = errors.New("failed to seal message")

	// ErrNoRecipients indicates a message was sealed to an empty recipient set.
	ErrNoRecipients = errors.New("no recipients given")
)

// Opening errors indicate a sealed message could not be opened.
var (
	// ErrWrongKey indicates the private key matches none of the message recipients.
	ErrWrongKey = errors.New("key is not a recipient of this message")

	// ErrBadPassphrase indicates the private key passphrase is incorrect.
	ErrBadPassphrase = errors.New("incorrect passphrase for private key")

	// ErrCorruptMessage indicates the sealed message could not be parsed or failed its integrity check.
	ErrCorruptMessage = errors.New("sealed message is corrupt")

	// ErrEmptyMessage indicates the sealed message carries no encrypted content.
	ErrEmptyMessage = errors.New("sealed message has no content")

	// ErrEmptyBatch indicates a batch decryption was requested with no messages.
	ErrEmptyBatch = errors.New("no messages to decrypt")
)

// Resolution errors indicate no local key fits the request.
var (
	// ErrNoUsableKey indicates no keyring entry matches any recipient of a message.
	ErrNoUsableKey = errors.New("no keys available to decrypt this message")

	// ErrKeyNotFound indicates no keyring entry matches a fingerprint fragment.
	ErrKeyNotFound = errors.New("key not found in keyring")

	// ErrNoPrimaryKey indicates no fragment was given and no primary key is configured.
	ErrNoPrimaryKey = errors.New("no primary key configured")
)

// Identity errors indicate signing or identity problems.
var (
	// ErrSigning indicates a signature could not be produced.
	ErrSigning = errors.New("failed to sign payload")

	// ErrMissingIdentity indicates the key has no server-side user identifier.
	ErrMissingIdentity = errors.New("key has no associated user identifier")

	// ErrInvalidToken indicates a bearer token is malformed, expired or does not verify.
	ErrInvalidToken = errors.New("invalid auth token")

	// ErrInvalidIdentity indicates the name or email for a new key is unusable.
	ErrInvalidIdentity = errors.New("invalid key identity")
)

// Vault errors indicate key material could not be located on disk.
var (
	// ErrKeyFileNotFound indicates a key file is missing from the vault.
	ErrKeyFileNotFound = errors.New("key file not found")

	// ErrNoPrivateKey indicates a key was found but holds only its public half.
	ErrNoPrivateKey = errors.New("key has no private key material")
)

// Payload and transport errors.
var (
	// ErrInvalidKVPair indicates decrypted content is not a canonical key/value pair.
	ErrInvalidKVPair = errors.New("invalid key/value pair")

	// ErrRequestFailed indicates the remote API answered with a non-success status.
	ErrRequestFailed = errors.New("request to server failed")

	// ErrNoProject indicates no project id was given or configured.
	ErrNoProject = errors.New("no project selected")
)
