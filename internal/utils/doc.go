// Package utils provides shared utility functions for the envcli application.
//
// This package contains general-purpose helpers used by the cmd layer.
// Functions are organized into logical groups:
//
// # System Utilities
//
//   - GetUsername: returns the current system username
//   - DefaultKeyName: the name bound into a new key when none is given
//
// # String Utilities
//
//   - FormatPaths: formats file paths for human-readable output
//   - IsValidEmail, IsValidVariableName: input validation
//
// # I/O Utilities
//
//   - ReadStdin: reads a piped value from standard input
//
// # Terminal Utilities
//
//   - ReadPassphrase, ReadNewPassphrase: hidden passphrase prompts
//   - IsTerminal: checks if stdin is a terminal, so ReadStdin refuses to
//     block on an interactive shell
package utils
