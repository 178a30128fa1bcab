package core

import "errors"

// Session identifies the authenticated local user. Every repository and
// view-state call that depends on "who is looking" takes a Session rather
// than reading a global.
type Session struct {
	UserID string
}

// ErrNoSession indicates a call that requires an authenticated user.
var ErrNoSession = errors.New("no active session")

// Valid reports whether the session carries a user.
func (s Session) Valid() bool {
	return s.UserID != ""
}
