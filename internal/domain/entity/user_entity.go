package entity

import (
	"time"
)

// User is the aggregate root for the identity domain.
// Passwords are stored as bcrypt hashes in Password field.
// FollowerCount is denormalized from the follows table and is only ever
// mutated in the same transaction as the corresponding edge write.
type User struct {
	ID             string
	Username       string
	Email          string
	Password       string
	Birthday       time.Time
	FollowerCount  int
	ProfilePicture string
	About          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
