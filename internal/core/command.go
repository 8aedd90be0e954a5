package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandRename asks to change the display name.
	CommandRename CommandKind = iota
	// CommandJoinRoom moves the client into a room, leaving the previous one.
	CommandJoinRoom
	// CommandSendRoomMessage delivers a chat message to other room occupants.
	CommandSendRoomMessage
	// CommandListRooms requests the set of occupied rooms.
	CommandListRooms
)

func (k CommandKind) String() string {
	switch k {
	case CommandRename:
		return "rename"
	case CommandJoinRoom:
		return "join"
	case CommandSendRoomMessage:
		return "message"
	case CommandListRooms:
		return "rooms"
	default:
		return "unknown"
	}
}

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind
	Name string // CommandRename
	Room string // CommandJoinRoom, CommandSendRoomMessage
	Text string // CommandSendRoomMessage
}
