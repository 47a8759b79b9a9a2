package vault

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrMalformedResponse is wrapped when a successful response cannot be decoded.
var ErrMalformedResponse = errors.New("malformed response")

// Error is the failure value of every API operation.
type Error struct {
	// Op names the failed operation, e.g. "list albums".
	Op string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Message is a human-readable description suitable for the UI.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transport reports whether the request never got a response.
func (e *Error) Transport() bool {
	return e.StatusCode == 0
}

// messageKeys are tried in order when extracting a message from an error body.
var messageKeys = []string{"err", "error", "message", "error.message"}

// ErrorMessage extracts a human-readable message from an error response body.
// It returns "" when the body is not JSON or carries no message.
func ErrorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, key := range messageKeys {
		r := gjson.GetBytes(body, key)
		if r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return ""
}

func statusError(op string, status int, body []byte) *Error {
	msg := ErrorMessage(body)
	if msg == "" {
		msg = fmt.Sprintf("%s failed with status %d", op, status)
	}
	return &Error{Op: op, StatusCode: status, Message: msg}
}

func transportError(op string, err error) *Error {
	return &Error{Op: op, Message: fmt.Sprintf("%s: %v", op, err), Err: err}
}

func decodeError(op string, status int, err error) *Error {
	return &Error{
		Op:         op,
		StatusCode: status,
		Message:    fmt.Sprintf("%s returned an unexpected response", op),
		Err:        fmt.Errorf("%w: %w", ErrMalformedResponse, err),
	}
}
