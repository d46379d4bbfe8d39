// Package proto defines the JSON envelopes exchanged over the WebSocket.
package proto

import "encoding/json"

// Inbound is the envelope for frames coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeHello = "hello"
	InboundTypeMsg   = "msg"

	OutboundTypeEvent  = "event"
	OutboundTypeNotice = "notice"

	EventHistory  = "history"
	EventMessage  = "message"
	EventPresence = "presence"
)

// HelloData is the first frame a client must send. Name identifies the
// client in open mode; Token carries the account credential in accounts mode.
type HelloData struct {
	Name  string `json:"name,omitempty"`
	Token string `json:"token,omitempty"`
}

// MsgData is a chat message submission. Name optionally overrides the
// display name for this message (open mode only).
type MsgData struct {
	Body string `json:"body"`
	Name string `json:"name,omitempty"`
}

// Outbound is the envelope for frames sent to the client.
type Outbound struct {
	Type   string  `json:"type"`
	Event  string  `json:"event,omitempty"`
	Data   any     `json:"data,omitempty"`
	Notice *Notice `json:"notice,omitempty"`
}

// User is the stamped author/presence view of an identity.
type User struct {
	ID     int64  `json:"id,omitempty"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Role   string `json:"role,omitempty"`
}

// Message is one stamped chat message.
type Message struct {
	ID   int64  `json:"id"`
	User User   `json:"user"`
	Body string `json:"body"`
	TS   int64  `json:"ts"` // unix milliseconds, matching message timestamps in history
}

// PresenceData is broadcast on every join and leave.
type PresenceData struct {
	Online int    `json:"online"`
	Users  []User `json:"users"`
}

// Notice is a targeted rejection report: invalid_content,
// persistence_failed, or auth_failed.
type Notice struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}
