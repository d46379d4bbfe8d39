package core

import "time"

// Message is a chat message as broadcast to connections: the persisted record
// stamped with the author's identity at send time.
type Message struct {
	ID        int64
	Author    Identity
	Body      string
	CreatedAt time.Time
}
