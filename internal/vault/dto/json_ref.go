package dto

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/handiism/vinyl-vault/internal/model"
)

// JSONRef is a reference to another document that the API sends either as an
// embedded object ({"_id": "...", "username": "..."}) or as a bare id string.
type JSONRef struct {
	ID       string
	Username string
}

// UnmarshalJSON accepts a string id, an object, or null.
func (r *JSONRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = JSONRef{}
		return nil
	}

	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = JSONRef{ID: id}
		return nil
	}

	var obj struct {
		ID       string `json:"_id"`
		AltID    string `json:"id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	*r = JSONRef{ID: firstNonEmpty(obj.ID, obj.AltID), Username: obj.Username}
	return nil
}

// ToUserRef converts the reference into a model.UserRef.
func (r *JSONRef) ToUserRef() model.UserRef {
	if r == nil {
		return model.UserRef{}
	}
	return model.UserRef{ID: r.ID, Username: r.Username}
}

// FlexInt decodes a JSON number or a numeric string, since form-submitted
// years may come back from the API as either.
type FlexInt int

// UnmarshalJSON parses 1997, "1997" or null.
func (fi *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*fi = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*fi = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*fi = FlexInt(n)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*fi = FlexInt(int(f))
	return nil
}

// APITime parses the timestamps the API sends.
type APITime struct {
	time.Time
}

// UnmarshalJSON parses RFC 3339 timestamps with or without fractional seconds.
// Unparseable values decode to the zero time rather than failing the document.
func (at *APITime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		at.Time = time.Time{}
		return nil
	}

	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			at.Time = t
			return nil
		}
	}

	at.Time = time.Time{}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
