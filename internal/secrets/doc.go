// Package secrets provides the cryptographic core of envcli.
//
// It generates OpenPGP identity keys, seals secrets to every member of a
// project in a single message, works out which local key can open a message,
// and decrypts messages one at a time or in concurrent batches.
//
// # Sealed Messages
//
// A sealed message is an armored OpenPGP message. The payload is encrypted
// once under a random AES-256 session key and that session key is wrapped for
// each recipient. The recipient key IDs are readable without decrypting
// anything, which is what the resolver works from.
//
// Identity keys are generated without an encryption subkey: the primary RSA
// key both signs and encrypts. A recipient key ID is therefore the low 64 bits
// of the holder's fingerprint and always appears inside it.
//
// # Key Resolution
//
// Given a message and the local keyring, the resolver collects the keyring
// entries whose fingerprint contains one of the recipient IDs. The primary key
// wins when it is among them. Otherwise the first match in keyring order is
// used and a warning names it, since the user did not ask for that key.
//
// # Key Vault
//
// Each key lives in its own directory named after the fingerprint:
//   - <keys dir>/<FINGERPRINT>/pub.key
//   - <keys dir>/<FINGERPRINT>/priv.key
//
// Both files are armored. The private key is protected by its passphrase and
// written with 0600 permissions.
package secrets
