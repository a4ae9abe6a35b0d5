package repository

import "errors"

// Sentinel errors shared by all repository implementations. Services translate
// these into their own error surface; implementations must return them (or
// wrap them) so callers can use errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateEmail    = errors.New("email already taken")
	ErrStaleValue        = errors.New("current value does not match")
	ErrAlreadyFollowing  = errors.New("already following")
	ErrNotFollowing      = errors.New("not following")
	ErrCounterUnderflow  = errors.New("follower count underflow")
	ErrDuplicateKey      = errors.New("stream key already in use")
	ErrAlreadyLive       = errors.New("channel already live")
)
