package core

// Client is one live connection as seen by the hub. The transport owns the
// read side; the hub owns everything else for the connection's lifetime.
type Client struct {
	// ID is the connection id, assigned by the transport at accept time.
	ID       string
	Identity Identity
	Events   chan *Event
}

// NewClient constructs a client with a buffered event channel.
func NewClient(id string, identity Identity) *Client {
	return &Client{
		ID:       id,
		Identity: identity,
		Events:   make(chan *Event, 16),
	}
}
