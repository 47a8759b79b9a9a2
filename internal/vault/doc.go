// Package vault is the client for the VinylVault REST API.
//
// Every remote capability (auth, albums, reviews) is one method on Client.
// Wire documents are decoded by the dto subpackage, so callers only ever see
// model types. Non-2xx responses and transport failures are returned as
// *Error.
package vault
