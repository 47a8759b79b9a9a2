package model

import (
	"strings"
	"time"
)

// MinRating and MaxRating bound a review rating.
const (
	MinRating     = 1
	MaxRating     = 10
	DefaultRating = 5
)

// Review is a rating with text that a user left on an album.
type Review struct {
	// ID is the server-assigned identifier.
	ID string

	// Content is the review text.
	Content string

	// Rating is between MinRating and MaxRating inclusive.
	Rating int

	// Reviewer is the author of the review.
	Reviewer UserRef

	// AlbumID is the album the review belongs to.
	AlbumID string

	// CreatedAt is when the server stored the review. Zero when unknown.
	CreatedAt time.Time
}

// AuthoredBy reports whether the review was written by the user with the given ID.
func (r *Review) AuthoredBy(userID string) bool {
	return userID != "" && r.Reviewer.ID != "" && r.Reviewer.ID == userID
}

// AverageRating returns the mean rating of reviews, and false when there are none.
func AverageRating(reviews []Review) (float64, bool) {
	if len(reviews) == 0 {
		return 0, false
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews)), true
}

// ReviewInput is the payload of the review form.
type ReviewInput struct {
	AlbumID string `json:"album" validate:"required"`
	Content string `json:"content" validate:"required"`
	Rating  int    `json:"rating" validate:"min=1,max=10"`
}

// NewReviewInput returns an empty review form for an album, with the default rating.
func NewReviewInput(albumID string) ReviewInput {
	return ReviewInput{AlbumID: albumID, Rating: DefaultRating}
}

// Normalize trims the review text.
func (in ReviewInput) Normalize() ReviewInput {
	in.Content = strings.TrimSpace(in.Content)
	return in
}
