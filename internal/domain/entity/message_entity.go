package entity

import "time"

// Message is a single chat message addressed to one receiver's channel.
type Message struct {
	ID         string
	SenderID   string
	ReceiverID string
	Body       string
	CreatedAt  time.Time
}
