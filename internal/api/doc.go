// Package api is the HTTP client for the envcli server.
//
// Requests go through hashicorp/go-retryablehttp, which retries connection
// failures and 5xx responses with backoff. Every authenticated request gets a
// freshly signed bearer token from the client's TokenSource. Sealed variables
// are sent and received as opaque strings.
package api
