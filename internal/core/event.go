package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventNameResult reports the outcome of a name assignment or rename.
	EventNameResult EventKind = iota
	// EventJoinResult confirms the room the client is now in.
	EventJoinResult
	// EventMessage carries a line of room text: chat, presence or summary.
	EventMessage
	// EventRooms answers a room listing request.
	EventRooms
)

func (k EventKind) String() string {
	switch k {
	case EventNameResult:
		return "nameResult"
	case EventJoinResult:
		return "joinResult"
	case EventMessage:
		return "message"
	case EventRooms:
		return "rooms"
	default:
		return "unknown"
	}
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind    EventKind
	Success bool       // EventNameResult
	Name    string     // EventNameResult on success
	Reason  string     // EventNameResult on failure
	Room    string     // EventJoinResult
	Text    string     // EventMessage
	Rooms   []RoomInfo // EventRooms
}

// RoomInfo describes one occupied room.
type RoomInfo struct {
	Name  string
	Users []string
}
