package dto

import (
	"errors"

	"github.com/goccy/go-json"
)

// ErrMissingToken is returned when an auth response carries no token.
var ErrMissingToken = errors.New("response has no token")

// JSONAuthResponse is the body returned by sign-in and sign-up.
type JSONAuthResponse struct {
	Token string `json:"token"`
}

// DecodeToken extracts the token from an auth response.
func DecodeToken(data []byte) (string, error) {
	var resp JSONAuthResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", ErrMissingToken
	}
	return resp.Token, nil
}
