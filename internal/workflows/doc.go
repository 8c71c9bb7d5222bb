// Package workflows provides high-level orchestration for envcli commands.
//
// Workflows coordinate multiple operations across packages (configs, secrets,
// auth, api, audit) to implement complete user-facing features. Each workflow
// handles a single command's business logic, independent of CLI concerns like
// flag parsing, spinners, and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Calls the appropriate SecretService method
//   - Formats the result for display
//
// The SecretService handles everything else:
//   - Reading the identity config and the key vault
//   - Fetching project members and sealing values to them
//   - Resolving and unlocking the key that opens fetched values
//   - Recording audit trail entries
//
// # Available Workflows
//
//   - CreateKey: Generates a key pair, stores it in the vault and the keyring
//   - UploadKey: Registers a public key with the server
//   - SetEnv / SetMany / Import: Seal values to every project member and store them
//   - GetVariables: Fetches and decrypts every value of a project
//   - GetProjectInfo: Lists the members of a project
//   - TestAuth: Signs a token and checks it against the server
//   - ReadLocal: Decrypts a local .envcli.vault file
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching. Use errors.Is() to check for specific error conditions:
//
//	vars, err := svc.GetVariables(ctx, opts)
//	if errors.Is(err, kerrors.ErrNoUsableKey) {
//	    // Tell the user none of their keys can read this project
//	}
//
// # Context Usage
//
// Workflow methods that talk to the server accept a context.Context as their
// first parameter. The context bounds the network calls only; sealing and
// decryption run to completion once started.
package workflows
