package dto

import (
	"github.com/goccy/go-json"

	"github.com/handiism/vinyl-vault/internal/model"
)

// JSONReview represents a review as sent by the API.
type JSONReview struct {
	ID        string   `json:"_id"`
	AltID     string   `json:"id"`
	Content   string   `json:"content"`
	Rating    FlexInt  `json:"rating"`
	Reviewer  *JSONRef `json:"reviewer"`
	Album     *JSONRef `json:"album"`
	CreatedAt APITime  `json:"createdAt"`
}

// ToReview converts JSONReview to a model.Review.
//
// fallbackAlbumID is used when the document does not name its album, which
// is the case for reviews listed under /reviews/album/{id}.
func (jr *JSONReview) ToReview(fallbackAlbumID string) (model.Review, error) {
	id := firstNonEmpty(jr.ID, jr.AltID)
	if id == "" {
		return model.Review{}, ErrMissingID
	}

	albumID := fallbackAlbumID
	if jr.Album != nil && jr.Album.ID != "" {
		albumID = jr.Album.ID
	}

	return model.Review{
		ID:        id,
		Content:   jr.Content,
		Rating:    int(jr.Rating),
		Reviewer:  jr.Reviewer.ToUserRef(),
		AlbumID:   albumID,
		CreatedAt: jr.CreatedAt.Time,
	}, nil
}

// DecodeReview decodes a single review document.
func DecodeReview(data []byte, fallbackAlbumID string) (model.Review, error) {
	var jr JSONReview
	if err := json.Unmarshal(data, &jr); err != nil {
		return model.Review{}, err
	}
	return jr.ToReview(fallbackAlbumID)
}

// DecodeReviews decodes a JSON array of reviews, skipping invalid entries.
func DecodeReviews(data []byte, albumID string) (reviews []model.Review, skipped int, err error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, err
	}

	reviews = make([]model.Review, 0, len(raw))
	for _, item := range raw {
		review, err := DecodeReview(item, albumID)
		if err != nil {
			skipped++
			continue
		}
		reviews = append(reviews, review)
	}
	return reviews, skipped, nil
}
