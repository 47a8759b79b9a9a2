// Package model defines the core data structures used throughout
// the vinylvault client.
//
// # Album
//
// Album is a vinyl record in someone's collection. Ownership is carried as a
// normalised UserRef, resolved once when the album is decoded from the API:
//
//	if album.OwnedBy(user.ID) {
//	    // show edit/delete controls
//	}
//
// # Review
//
// Review is a 1-10 rating with text, attached to exactly one album:
//
//	avg, ok := model.AverageRating(reviews)
//
// # Inputs
//
// AlbumInput, ReviewInput and Credentials are the payloads the user edits.
// They are checked with Validate before anything is sent over the wire:
//
//	if err := model.Validate(input); err != nil {
//	    // err wraps ErrValidation, err.Error() is printable
//	}
package model
