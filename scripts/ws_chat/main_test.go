package main

import (
	"encoding/json"
	"testing"

	"github.com/vovakirdan/roomrelay/internal/proto"
)

func TestParseLine(t *testing.T) {
	in, quit, err := parseLine("/nick Carl", "Lobby")
	if err != nil || quit || in.Type != proto.InboundTypeNameAttempt {
		t.Fatalf("unexpected nick frame: %+v %v %v", in, quit, err)
	}
	var name proto.NameAttemptData
	if err := json.Unmarshal(in.Data, &name); err != nil || name.Name != "Carl" {
		t.Fatalf("unexpected nick payload: %s", in.Data)
	}

	in, _, err = parseLine("/join  Den ", "Lobby")
	if err != nil || in.Type != proto.InboundTypeJoin {
		t.Fatalf("unexpected join frame: %+v %v", in, err)
	}
	var join proto.JoinData
	if err := json.Unmarshal(in.Data, &join); err != nil || join.NewRoom != "Den" {
		t.Fatalf("unexpected join payload: %s", in.Data)
	}

	in, _, err = parseLine("hello there", "Lobby")
	if err != nil || in.Type != proto.InboundTypeMessage {
		t.Fatalf("unexpected message frame: %+v %v", in, err)
	}
	var msg proto.MessageData
	if err := json.Unmarshal(in.Data, &msg); err != nil || msg.Room != "Lobby" || msg.Text != "hello there" {
		t.Fatalf("unexpected message payload: %s", in.Data)
	}

	if _, _, err := parseLine("/bogus", "Lobby"); err == nil {
		t.Fatal("expected error for unknown command")
	}
	if _, _, err := parseLine("hi", ""); err == nil {
		t.Fatal("expected error before joining a room")
	}
	if _, quit, _ := parseLine("/quit", "Lobby"); !quit {
		t.Fatal("expected quit")
	}
	if in, _, err := parseLine("   ", "Lobby"); in != nil || err != nil {
		t.Fatal("blank line should be ignored")
	}
}
