// Package auth issues and checks the bearer tokens envcli sends to the
// server.
//
// A token proves possession of a private key without sending a password. The
// client signs a challenge that binds the key fingerprint, the server-side
// user id and the issue time:
//
//	envcli-auth:v1:<FINGERPRINT>:<user id>:<unix seconds>
//
// The bearer value is base64url(challenge) + "." + base64url(signature).
// Tokens are built per request and never stored.
package auth
