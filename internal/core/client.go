package core

// ConnID opaquely identifies one live connection.
type ConnID string

// Client is a connection as seen by the core layer.
type Client struct {
	ID       ConnID
	Commands chan *Command
	Events   chan *Event

	gone chan struct{}
}

// NewClient constructs a client with initialized channels. A non-positive
// buffer falls back to DefaultClientBuffer.
func NewClient(id ConnID, buffer int) *Client {
	if buffer <= 0 {
		buffer = DefaultClientBuffer
	}
	return &Client{
		ID:       id,
		Commands: make(chan *Command, buffer),
		Events:   make(chan *Event, buffer),
		gone:     make(chan struct{}),
	}
}

// DefaultClientBuffer is the channel capacity used when none is configured.
const DefaultClientBuffer = 32
