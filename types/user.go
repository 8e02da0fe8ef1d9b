package types

import "database/sql"

// User represents an account in the system.
// It holds the credentials and the currently issued session token.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// Password stores the hex encoded SHA-256 digest of the user's password.
	// This field is never exposed in API responses.
	Password string `json:"-" db:"password"`

	// Token is the opaque bearer credential issued on login. It is NULL
	// while no session is active.
	Token sql.NullString `json:"-" db:"token"`

	// Expires is the Unix time (seconds) at which Token stops being valid.
	// It is set and cleared together with Token.
	Expires sql.NullInt64 `json:"-" db:"expires"`
}

// HasSession reports whether the user currently holds a token.
func (u User) HasSession() bool {
	return u.Token.Valid && u.Token.String != "" && u.Expires.Valid
}
