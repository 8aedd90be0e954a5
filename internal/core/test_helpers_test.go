package core

import (
	"testing"
	"time"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// mustText waits for an EventMessage with exactly the given text.
func mustText(t *testing.T, ch <-chan *Event, text string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	var seen []string
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil || ev.Kind != EventMessage {
				continue
			}
			if ev.Text == text {
				return
			}
			seen = append(seen, ev.Text)
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("message %q not received, got %q", text, seen)
}

// recorder is a Gateway that keeps every delivery for inspection.
type recorder struct {
	rooms     *RoomDirectory
	delivered map[ConnID][]*Event
}

func newRecorder(rooms *RoomDirectory) *recorder {
	return &recorder{rooms: rooms, delivered: make(map[ConnID][]*Event)}
}

func (r *recorder) EmitPrivate(conn ConnID, ev *Event) {
	r.delivered[conn] = append(r.delivered[conn], ev)
}

func (r *recorder) BroadcastToRoom(conn ConnID, room string, ev *Event) {
	for _, m := range r.rooms.MembersOf(room) {
		if m != conn {
			r.delivered[m] = append(r.delivered[m], ev)
		}
	}
}

func (r *recorder) texts(conn ConnID) []string {
	var out []string
	for _, ev := range r.delivered[conn] {
		if ev.Kind == EventMessage {
			out = append(out, ev.Text)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.delivered = make(map[ConnID][]*Event)
}
