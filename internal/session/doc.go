// Package session holds the signed-in user's token and identity.
//
// The token is persisted in a storage.Store under the keys "token" and
// "username", always written and cleared together. Identity is read from
// the token payload without verifying the signature; the server remains the
// authority on whether a token is valid.
package session
