package entity

import "time"

// Channel is the per-user streaming profile. Exactly one channel exists per
// user; it is created together with the user and cascade-deleted with them.
// StreamKey stays empty until first generated and is globally unique once set.
type Channel struct {
	ID                string
	UserID            string
	StreamKey         string
	Title             string
	Description       string
	IsLive            bool
	StreamTitle       string
	StreamDescription string
	StreamCategory    string
	Thumbnail         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ChannelPatch carries a partial channel update. Nil fields are left untouched.
type ChannelPatch struct {
	Title       *string
	Description *string
}

// StreamPatch carries per-broadcast metadata applied when a stream starts.
type StreamPatch struct {
	Title       *string
	Description *string
	Category    *string
}
