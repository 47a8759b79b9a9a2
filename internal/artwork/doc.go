// Package artwork finds cover images for albums.
//
// Searcher queries a public iTunes-style search endpoint, first with the
// artist and title together and then with the artist alone. It never
// fails: every error degrades to an empty result. Previewer downloads a
// chosen cover into memory and shrinks it for display in the terminal.
package artwork
