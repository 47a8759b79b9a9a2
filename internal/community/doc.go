// Package community drives the public album browser: a one-time fetch of
// every user's albums, a client-side filter, grouping by owner and the
// shared review pane.
package community
