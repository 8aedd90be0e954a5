package core

import (
	"fmt"
	"sort"
)

// RoomDirectory tracks which room each connection is in. Rooms exist only
// while they have members. Like IdentityRegistry it relies on the Hub for
// serialization.
type RoomDirectory struct {
	seq     uint64
	current map[ConnID]string
	members map[string]map[ConnID]uint64 // value is join sequence
}

// NewRoomDirectory returns an empty directory.
func NewRoomDirectory() *RoomDirectory {
	return &RoomDirectory{
		current: make(map[ConnID]string),
		members: make(map[string]map[ConnID]uint64),
	}
}

// Join moves conn into room, removing it from any other room first.
// Joining the current room keeps the original join position.
func (d *RoomDirectory) Join(conn ConnID, room string) {
	if prev, ok := d.current[conn]; ok {
		if prev == room {
			return
		}
		d.remove(conn, prev)
	}

	set, ok := d.members[room]
	if !ok {
		set = make(map[ConnID]uint64)
		d.members[room] = set
	}
	d.seq++
	set[conn] = d.seq
	d.current[conn] = room
}

// Leave removes conn from its room. Untracked connections are ignored.
func (d *RoomDirectory) Leave(conn ConnID) {
	room, ok := d.current[conn]
	if !ok {
		return
	}
	d.remove(conn, room)
	delete(d.current, conn)
}

func (d *RoomDirectory) remove(conn ConnID, room string) {
	set := d.members[room]
	delete(set, conn)
	if len(set) == 0 {
		delete(d.members, room)
	}
}

// CurrentRoom returns the room conn is in.
func (d *RoomDirectory) CurrentRoom(conn ConnID) (string, error) {
	room, ok := d.current[conn]
	if !ok {
		return "", fmt.Errorf("room of %s: %w", conn, ErrUnknownConnection)
	}
	return room, nil
}

// MembersOf returns the connections in room ordered by when they joined.
// The result is empty, not nil, for unknown rooms.
func (d *RoomDirectory) MembersOf(room string) []ConnID {
	set := d.members[room]
	out := make([]ConnID, 0, len(set))
	for conn := range set {
		out = append(out, conn)
	}
	sort.Slice(out, func(i, j int) bool {
		return set[out[i]] < set[out[j]]
	})
	return out
}

// Rooms returns the names of all non-empty rooms, sorted.
func (d *RoomDirectory) Rooms() []string {
	out := make([]string, 0, len(d.members))
	for room := range d.members {
		out = append(out, room)
	}
	sort.Strings(out)
	return out
}
