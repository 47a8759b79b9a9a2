package model

import (
	"fmt"
	"strings"
)

// Album represents a record in a user's vinyl collection.
//
// The remote API owns albums; the client only ever holds copies of them,
// so a cached Album should be treated as stale after any mutating call.
type Album struct {
	// ID is the server-assigned identifier.
	ID string

	// Title is the album title.
	Title string

	// Artist is the album artist name.
	Artist string

	// Year is the release year.
	Year int

	// Genre is optional, empty when unknown.
	Genre string

	// CoverImage is an optional URL to the cover art.
	CoverImage string

	// Owner is the user that added the album. The owner never changes after
	// creation from the client's perspective.
	Owner UserRef
}

// HasCover returns true if the album has cover art to show.
func (a *Album) HasCover() bool {
	return a.CoverImage != ""
}

// OwnedBy reports whether the album belongs to the user with the given ID.
//
// An empty ID on either side never matches, so an album whose owner could
// not be resolved is never editable.
func (a *Album) OwnedBy(userID string) bool {
	return userID != "" && a.Owner.ID != "" && a.Owner.ID == userID
}

// String returns a short human-readable form like `"OK Computer" by Radiohead (1997)`.
func (a Album) String() string {
	var b strings.Builder
	b.WriteString(`"` + a.Title + `"`)
	if a.Artist != "" {
		b.WriteString(" by " + a.Artist)
	}
	if a.Year > 0 {
		b.WriteString(fmt.Sprintf(" (%d)", a.Year))
	}
	return b.String()
}

// AlbumInput is the editable part of an album, as submitted by the
// create and update forms.
type AlbumInput struct {
	Title      string `json:"title" validate:"required"`
	Artist     string `json:"artist" validate:"required"`
	Year       int    `json:"year" validate:"required,min=1,max=9999"`
	Genre      string `json:"genre,omitempty"`
	CoverImage string `json:"coverImage,omitempty" validate:"omitempty,url"`
}

// AlbumInputFrom prefills an AlbumInput from an existing album, for editing.
func AlbumInputFrom(a Album) AlbumInput {
	return AlbumInput{
		Title:      a.Title,
		Artist:     a.Artist,
		Year:       a.Year,
		Genre:      a.Genre,
		CoverImage: a.CoverImage,
	}
}

// Normalize trims surrounding whitespace from every text field.
func (in AlbumInput) Normalize() AlbumInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Artist = strings.TrimSpace(in.Artist)
	in.Genre = strings.TrimSpace(in.Genre)
	in.CoverImage = strings.TrimSpace(in.CoverImage)
	return in
}
