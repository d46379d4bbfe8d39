package core

// EventKind is a notification the hub emits to connections.
type EventKind int

const (
	// EventHistory delivers recent messages to a connection upon joining.
	// Sent exactly once per connection, to that connection only.
	EventHistory EventKind = iota
	// EventMessage fans an accepted chat message out to every joined
	// connection, including the sender.
	EventMessage
	// EventPresence fans the current presence snapshot out on every
	// join and leave.
	EventPresence
	// EventNotice reports a per-submission failure to the originating
	// connection only.
	EventNotice
)

// Event is sent to connections to describe what happened.
type Event struct {
	Kind     EventKind
	Message  *Message  // EventMessage
	Messages []*Message // EventHistory, oldest first
	Presence *Snapshot // EventPresence
	Notice   *Notice   // EventNotice
}
