// Package audit records envcli operations in a local log.
//
// Key creation, uploads, and every read or write of project variables is
// appended to a JSON Lines file in the envcli config directory:
//
//	~/.config/envcli/audit.jsonl
//
// Each entry carries a UTC timestamp, the operation name, the fingerprint and
// server-side id of the key used, and operation details such as the project,
// variable ids or files involved. Values are never logged.
//
// # Failure Handling
//
// Audit logging is best-effort. If the log cannot be written the operation
// continues without error.
package audit
