package entity

import "time"

// Stream is one discrete broadcast session. At most one row per channel has
// IsLive set at any instant; Channel.IsLive mirrors the latest session state.
type Stream struct {
	ID        string
	ChannelID string
	Title     string
	StartTime time.Time
	EndTime   *time.Time
	IsLive    bool
	CreatedAt time.Time
}
