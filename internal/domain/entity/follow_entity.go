package entity

import "time"

// Follow is a directed edge meaning "follower follows following".
// Edges are unique per ordered pair and never self-referential.
type Follow struct {
	FollowerID  string
	FollowingID string
	CreatedAt   time.Time
}
