package application

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrChannelNotFound    = errors.New("channel not found")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrDuplicateEmail     = errors.New("email already taken")
	ErrWrongCurrentValue  = errors.New("current value does not match")
	ErrBirthdayInFuture   = errors.New("birthday must be before today")

	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrNotFollowing     = errors.New("not following this user")

	ErrUnknownStreamKey       = errors.New("unknown stream key")
	ErrAlreadyLive            = errors.New("channel is already live")
	ErrKeyGenerationExhausted = errors.New("stream key generation exhausted")

	// ErrInvariantViolation marks a detected consistency breach (for example a
	// follower counter that would go negative). The request fails closed and
	// the breach is written to the audit log.
	ErrInvariantViolation = errors.New("internal consistency violation")
)
