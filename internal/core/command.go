package core

import "github.com/adskoe96/adsk-chat/internal/store"

// CommandKind describes what a connection wants the hub to do.
type CommandKind int

const (
	// CommandJoin registers the connection and replays history to it.
	CommandJoin CommandKind = iota
	// CommandLeave removes the connection from presence.
	CommandLeave
	// CommandSubmitMessage persists and fans out a chat message.
	CommandSubmitMessage
)

// Command is one unit of work for the hub loop. Commands from all
// connections funnel through a single channel, which is what serializes
// presence mutation and the persist-then-broadcast sequence.
type Command struct {
	Kind   CommandKind
	Client *Client

	// Body and Name apply to CommandSubmitMessage. Name is an optional
	// display name override, honored in open mode only.
	Body string
	Name string

	// History is prefetched by Connect before the join command is queued, so
	// the store round trip never runs inside the hub loop.
	History []*store.Message
}
