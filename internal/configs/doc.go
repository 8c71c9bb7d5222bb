// Package configs manages the local identity and project configuration for
// envcli.
//
// Configuration is stored in TOML at two levels:
//
//   - Identity config: <config dir>/config.toml (keyring, primary key, salt,
//     server URL)
//   - Project config: ./.envcli.toml (project id used by default)
//
// # Identity Configuration
//
// The keyring is an ordered list of key references. Each entry names the
// fingerprint of a key pair stored in the vault (<config dir>/keys/<FPR>/)
// and, once the key has been uploaded, the server-side user id bound to it.
// The order of entries is significant: when several keys could open a
// message and none of them is the primary key, the first one wins.
//
// The salt is generated on first use and mixed into the hashed user id that
// new keys carry instead of a real name and email.
//
// # Settings
//
// Settings resolves where these files live. The CLI builds it once and passes
// it down explicitly; no package reads configuration from a global.
package configs
