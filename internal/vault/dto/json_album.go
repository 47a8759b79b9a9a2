package dto

import (
	"errors"

	"github.com/goccy/go-json"

	"github.com/handiism/vinyl-vault/internal/model"
)

// ErrMissingID is returned when a document has no identifier.
var ErrMissingID = errors.New("document has no _id")

// JSONAlbum represents an album as sent by the API.
type JSONAlbum struct {
	ID         string   `json:"_id"`
	AltID      string   `json:"id"`
	Title      string   `json:"title"`
	Artist     string   `json:"artist"`
	Year       FlexInt  `json:"year"`
	Genre      string   `json:"genre"`
	CoverImage string   `json:"coverImage"`
	Owner      *JSONRef `json:"owner"`
}

// ToAlbum converts JSONAlbum to a model.Album.
//
// The owner, whether embedded or a bare id, is normalised into a UserRef here
// and nowhere else. An album without an id is rejected.
func (ja *JSONAlbum) ToAlbum() (model.Album, error) {
	id := firstNonEmpty(ja.ID, ja.AltID)
	if id == "" {
		return model.Album{}, ErrMissingID
	}

	return model.Album{
		ID:         id,
		Title:      ja.Title,
		Artist:     ja.Artist,
		Year:       int(ja.Year),
		Genre:      ja.Genre,
		CoverImage: ja.CoverImage,
		Owner:      ja.Owner.ToUserRef(),
	}, nil
}

// DecodeAlbum decodes a single album document.
func DecodeAlbum(data []byte) (model.Album, error) {
	var ja JSONAlbum
	if err := json.Unmarshal(data, &ja); err != nil {
		return model.Album{}, err
	}
	return ja.ToAlbum()
}

// DecodeAlbums decodes a JSON array of albums.
//
// Entries that fail to convert are left out and counted in skipped; a body
// that is not an array is an error.
func DecodeAlbums(data []byte) (albums []model.Album, skipped int, err error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, err
	}

	albums = make([]model.Album, 0, len(raw))
	for _, item := range raw {
		album, err := DecodeAlbum(item)
		if err != nil {
			skipped++
			continue
		}
		albums = append(albums, album)
	}
	return albums, skipped, nil
}
