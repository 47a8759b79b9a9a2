// Package collection drives the signed-in user's album collection: loading
// the list, the add/edit form with artwork suggestions, confirmed deletion
// and the per-album review pane.
package collection
