package core

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ErrHubStopped is returned when the hub is no longer running.
var ErrHubStopped = errors.New("hub stopped")

type opKind int

const (
	opRegister opKind = iota
	opUnregister
	opCommand
	opSnapshot
)

type envelope struct {
	op     opKind
	client *Client
	cmd    *Command
	reply  chan []RoomInfo
}

// Hub owns all session state and processes every client event on a single
// goroutine, in arrival order.
type Hub struct {
	inbox    chan envelope
	stopping chan struct{}
	stopped  chan struct{}

	// mu guards closed; senders hold it shared while enqueueing so shutdown
	// can seal the inbox before draining it.
	mu     sync.RWMutex
	closed bool

	clients map[ConnID]*Client
	session *Coordinator
	log     *zerolog.Logger
}

// NewHub creates a hub with empty registries. A nil logger disables logging.
func NewHub(logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	h := &Hub{
		inbox:    make(chan envelope, 256),
		stopping: make(chan struct{}),
		stopped:  make(chan struct{}),
		clients:  make(map[ConnID]*Client),
		log:      logger,
	}
	h.session = NewCoordinator(NewIdentityRegistry(), NewRoomDirectory(), h, logger)
	return h
}

// Run processes events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case env := <-h.inbox:
			h.dispatch(env)
		}
	}
}

// RegisterClient activates c: it receives a guest name and joins the lobby.
// Commands sent on c.Commands are processed after registration. c.Events is
// closed if the hub has stopped, or if another client already holds c.ID.
func (h *Hub) RegisterClient(c *Client) {
	if !h.enqueue(envelope{op: opRegister, client: c}, nil) {
		close(c.Events)
	}
}

// UnregisterClient releases c's name and membership and closes c.Events.
func (h *Hub) UnregisterClient(c *Client) {
	h.enqueue(envelope{op: opUnregister, client: c}, nil)
}

// Rooms returns a snapshot of occupied rooms.
func (h *Hub) Rooms(ctx context.Context) ([]RoomInfo, error) {
	reply := make(chan []RoomInfo, 1)
	if !h.enqueue(envelope{op: opSnapshot, reply: reply}, ctx.Done()) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrHubStopped
	}
	select {
	case rooms := <-reply:
		return rooms, nil
	case <-h.stopped:
		return nil, ErrHubStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// enqueue reports whether env reached the inbox. Once it returns true the
// envelope is either dispatched or drained by shutdown.
func (h *Hub) enqueue(env envelope, cancel <-chan struct{}) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return false
	}
	select {
	case h.inbox <- env:
		return true
	case <-h.stopping:
		return false
	case <-cancel:
		return false
	}
}

// forward moves commands from a client's channel into the shared inbox so
// they are ordered with every other event.
func (h *Hub) forward(c *Client) {
	for {
		select {
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			if cmd == nil {
				continue
			}
			if !h.enqueue(envelope{op: opCommand, client: c, cmd: cmd}, c.gone) {
				return
			}
		case <-c.gone:
			return
		case <-h.stopping:
			return
		}
	}
}

func (h *Hub) dispatch(env envelope) {
	switch env.op {
	case opRegister:
		c := env.client
		if existing, exists := h.clients[c.ID]; exists {
			if existing != c {
				h.log.Warn().Str("conn_id", string(c.ID)).Msg("duplicate connection id rejected")
				close(c.gone)
				close(c.Events)
			}
			return
		}
		h.clients[c.ID] = c
		h.session.Connect(c.ID)
		go h.forward(c)
		h.log.Info().Str("conn_id", string(c.ID)).Int("clients", len(h.clients)).Msg("client registered")
	case opUnregister:
		c := env.client
		if h.clients[c.ID] != c {
			return
		}
		h.session.Disconnect(c.ID)
		delete(h.clients, c.ID)
		close(c.gone)
		close(c.Events)
		h.log.Info().Str("conn_id", string(c.ID)).Int("clients", len(h.clients)).Msg("client unregistered")
	case opCommand:
		if h.clients[env.client.ID] != env.client {
			h.log.Warn().Str("conn_id", string(env.client.ID)).Str("command", env.cmd.Kind.String()).Msg("command from inactive client dropped")
			return
		}
		h.session.Handle(env.client.ID, env.cmd)
	case opSnapshot:
		env.reply <- h.session.Snapshot()
	}
}

// shutdown seals the inbox, releases every registered client and closes the
// event channels of registrations that were queued but never dispatched.
func (h *Hub) shutdown() {
	close(h.stopping)
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()

	released := make(map[*Client]bool, len(h.clients))
	for id, c := range h.clients {
		h.session.Disconnect(id)
		close(c.gone)
		close(c.Events)
		delete(h.clients, id)
		released[c] = true
	}

	for {
		select {
		case env := <-h.inbox:
			if env.op != opRegister || released[env.client] {
				continue
			}
			close(env.client.gone)
			close(env.client.Events)
			released[env.client] = true
		default:
			h.log.Debug().Int("clients", len(released)).Msg("hub shut down")
			return
		}
	}
}

// EmitPrivate implements Gateway.
func (h *Hub) EmitPrivate(conn ConnID, ev *Event) {
	if c, ok := h.clients[conn]; ok {
		h.deliver(c, ev)
	}
}

// BroadcastToRoom implements Gateway.
func (h *Hub) BroadcastToRoom(conn ConnID, room string, ev *Event) {
	for _, member := range h.session.rooms.MembersOf(room) {
		if member == conn {
			continue
		}
		if c, ok := h.clients[member]; ok {
			h.deliver(c, ev)
		}
	}
}

func (h *Hub) deliver(c *Client, ev *Event) {
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer.
		h.log.Warn().Str("conn_id", string(c.ID)).Str("event", ev.Kind.String()).Msg("event dropped for slow client")
	}
}
