// Package reviews implements the review pane shared by the collection and
// community views: lazily fetched per-album review lists, authoring and
// confirmed deletion.
package reviews
