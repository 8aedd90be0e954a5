package core

// Gateway delivers events produced by the Coordinator. Implementations
// decide how events reach the wire.
type Gateway interface {
	// EmitPrivate delivers ev to conn only.
	EmitPrivate(conn ConnID, ev *Event)
	// BroadcastToRoom delivers ev to every member of room except conn.
	BroadcastToRoom(conn ConnID, room string, ev *Event)
}
