package model

// ArtworkCandidate is a cover image suggested by the artwork search service.
//
// Candidates are ephemeral: they are shown to the user and, if picked, only
// their ArtworkURL is copied into the album form.
type ArtworkCandidate struct {
	ArtworkURL string
	AlbumName  string
	ArtistName string

	// ReleaseYear is 0 when the service did not report a release date.
	ReleaseYear int
}
