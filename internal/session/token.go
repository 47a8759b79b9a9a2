package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/handiism/vinyl-vault/internal/model"
)

var (
	// ErrInvalidToken is returned for tokens that cannot be decoded or lack
	// the user identifier.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrExpiredToken is returned for tokens whose exp claim has passed.
	ErrExpiredToken = fmt.Errorf("%w: expired", ErrInvalidToken)
)

var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodeToken extracts the user from a token.
//
// Only the middle segment is decoded; the header and signature are never
// looked at. The payload must carry {"payload": {"_id": ...}}.
// storedUsername, when non-empty, takes precedence over the username
// embedded in the payload. A token with an exp claim before now is rejected.
func DecodeToken(token, storedUsername string, now time.Time) (model.User, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return model.User{}, fmt.Errorf("%w: want 3 segments, got %d", ErrInvalidToken, len(parts))
	}

	raw, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims := jwt.MapClaims{}
	if err := json.Unmarshal(raw, &claims); err != nil {
		return model.User{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if exp != nil && !now.Before(exp.Time) {
		return model.User{}, ErrExpiredToken
	}

	payload, ok := claims["payload"].(map[string]any)
	if !ok {
		return model.User{}, fmt.Errorf("%w: no payload", ErrInvalidToken)
	}

	id, _ := payload["_id"].(string)
	if id == "" {
		return model.User{}, fmt.Errorf("%w: no user id", ErrInvalidToken)
	}

	username := storedUsername
	if username == "" {
		username, _ = payload["username"].(string)
	}

	return model.User{ID: id, Username: username}, nil
}
