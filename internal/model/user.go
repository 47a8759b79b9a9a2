package model

// User is the identity of the signed-in user, derived from the session token.
type User struct {
	ID       string
	Username string
}

// UserRef references the owner of an album or the author of a review.
//
// The API sends either an embedded object or a bare identifier; both are
// normalised into a UserRef at the decoding boundary. Username is empty when
// only the identifier was sent.
type UserRef struct {
	ID       string
	Username string
}

// DisplayName returns the username, or "Anonymous" when it is unknown.
func (u UserRef) DisplayName() string {
	if u.Username == "" {
		return "Anonymous"
	}
	return u.Username
}

// Credentials are the username and password typed into the sign-in or
// sign-up form. They are never persisted.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
