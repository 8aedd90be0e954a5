package core

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultRoom is the room every connection starts in.
const DefaultRoom = "Lobby"

// Coordinator runs the per-connection chat protocol on top of the identity
// registry and room directory. Calls must be serialized by the caller.
type Coordinator struct {
	ids   *IdentityRegistry
	rooms *RoomDirectory
	gw    Gateway
	log   *zerolog.Logger
}

// NewCoordinator builds a coordinator. A nil logger disables logging.
func NewCoordinator(ids *IdentityRegistry, rooms *RoomDirectory, gw Gateway, logger *zerolog.Logger) *Coordinator {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Coordinator{ids: ids, rooms: rooms, gw: gw, log: logger}
}

// Connect assigns a guest name to conn and puts it in DefaultRoom.
func (c *Coordinator) Connect(conn ConnID) {
	name := c.ids.AssignGuestName(conn)
	c.gw.EmitPrivate(conn, &Event{Kind: EventNameResult, Success: true, Name: name})
	c.log.Debug().Str("conn_id", string(conn)).Str("name", name).Msg("connection active")
	c.joinRoom(conn, name, DefaultRoom)
}

// Disconnect frees the name held by conn and removes it from its room.
func (c *Coordinator) Disconnect(conn ConnID) {
	c.ids.Release(conn)
	c.rooms.Leave(conn)
	c.log.Debug().Str("conn_id", string(conn)).Msg("connection released")
}

// Handle dispatches one client command.
func (c *Coordinator) Handle(conn ConnID, cmd *Command) {
	switch cmd.Kind {
	case CommandRename:
		c.Rename(conn, cmd.Name)
	case CommandJoinRoom:
		c.JoinRoom(conn, cmd.Room)
	case CommandSendRoomMessage:
		c.SendMessage(conn, cmd.Room, cmd.Text)
	case CommandListRooms:
		c.ListRooms(conn)
	default:
		c.log.Warn().Str("conn_id", string(conn)).Int("kind", int(cmd.Kind)).Msg("unknown command")
	}
}

// Rename handles a nameAttempt.
func (c *Coordinator) Rename(conn ConnID, requested string) {
	previous, err := c.ids.AttemptRename(conn, requested)
	switch {
	case errors.Is(err, ErrReservedPrefix):
		c.gw.EmitPrivate(conn, &Event{Kind: EventNameResult, Reason: msgReservedPrefix})
		return
	case errors.Is(err, ErrNameTaken):
		c.gw.EmitPrivate(conn, &Event{Kind: EventNameResult, Reason: msgNameTaken})
		return
	case err != nil:
		c.log.Warn().Err(err).Msg("rename dropped")
		return
	}

	c.gw.EmitPrivate(conn, &Event{Kind: EventNameResult, Success: true, Name: requested})
	room, err := c.rooms.CurrentRoom(conn)
	if err != nil {
		c.log.Warn().Err(err).Msg("rename announcement skipped")
		return
	}
	c.gw.BroadcastToRoom(conn, room, &Event{
		Kind: EventMessage,
		Text: previous + " is now known as " + requested + ".",
	})
}

// JoinRoom moves conn to room and announces it there.
func (c *Coordinator) JoinRoom(conn ConnID, room string) {
	name, err := c.ids.NameOf(conn)
	if err != nil {
		c.log.Warn().Err(err).Str("room", room).Msg("join dropped")
		return
	}
	c.joinRoom(conn, name, room)
}

func (c *Coordinator) joinRoom(conn ConnID, name, room string) {
	c.rooms.Join(conn, room)
	c.gw.EmitPrivate(conn, &Event{Kind: EventJoinResult, Room: room})
	c.gw.BroadcastToRoom(conn, room, &Event{
		Kind: EventMessage,
		Text: name + " has joined " + room + ".",
	})

	members := c.rooms.MembersOf(room)
	if len(members) <= 1 {
		return
	}
	others := make([]string, 0, len(members)-1)
	for _, m := range members {
		if m == conn {
			continue
		}
		other, err := c.ids.NameOf(m)
		if err != nil {
			c.log.Warn().Err(err).Str("room", room).Msg("member without name")
			continue
		}
		others = append(others, other)
	}
	c.gw.EmitPrivate(conn, &Event{
		Kind: EventMessage,
		Text: "Users currently in " + room + ": " + strings.Join(others, ", ") + ".",
	})
}

// SendMessage relays text from conn to the other members of room.
func (c *Coordinator) SendMessage(conn ConnID, room, text string) {
	name, err := c.ids.NameOf(conn)
	if err != nil {
		c.log.Warn().Err(err).Str("room", room).Msg("message dropped")
		return
	}
	c.gw.BroadcastToRoom(conn, room, &Event{Kind: EventMessage, Text: name + ": " + text})
}

// ListRooms replies to conn with every occupied room.
func (c *Coordinator) ListRooms(conn ConnID) {
	c.gw.EmitPrivate(conn, &Event{Kind: EventRooms, Rooms: c.Snapshot()})
}

// Snapshot lists occupied rooms with their members' names in join order.
func (c *Coordinator) Snapshot() []RoomInfo {
	names := c.rooms.Rooms()
	out := make([]RoomInfo, 0, len(names))
	for _, room := range names {
		members := c.rooms.MembersOf(room)
		users := make([]string, 0, len(members))
		for _, m := range members {
			if name, err := c.ids.NameOf(m); err == nil {
				users = append(users, name)
			}
		}
		out = append(out, RoomInfo{Name: room, Users: users})
	}
	return out
}
