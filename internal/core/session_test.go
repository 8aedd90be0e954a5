package core

import (
	"reflect"
	"testing"
)

func newTestCoordinator() (*Coordinator, *recorder) {
	rooms := NewRoomDirectory()
	rec := newRecorder(rooms)
	return NewCoordinator(NewIdentityRegistry(), rooms, rec, nil), rec
}

func TestConnectSequence(t *testing.T) {
	coord, rec := newTestCoordinator()

	coord.Connect("c1")
	got := rec.delivered["c1"]
	if len(got) != 2 {
		t.Fatalf("expected nameResult and joinResult only, got %+v", got)
	}
	if got[0].Kind != EventNameResult || !got[0].Success || got[0].Name != "Guest1" {
		t.Fatalf("unexpected nameResult: %+v", got[0])
	}
	if got[1].Kind != EventJoinResult || got[1].Room != "Lobby" {
		t.Fatalf("unexpected joinResult: %+v", got[1])
	}

	rec.reset()
	coord.Connect("c2")

	if texts := rec.texts("c1"); !reflect.DeepEqual(texts, []string{"Guest2 has joined Lobby."}) {
		t.Fatalf("unexpected c1 messages: %q", texts)
	}
	if texts := rec.texts("c2"); !reflect.DeepEqual(texts, []string{"Users currently in Lobby: Guest1."}) {
		t.Fatalf("unexpected c2 messages: %q", texts)
	}
}

func TestJoinSummaryListsOthersCommaSeparated(t *testing.T) {
	coord, rec := newTestCoordinator()
	coord.Connect("c1")
	coord.Connect("c2")
	coord.Connect("c3")
	rec.reset()

	coord.Connect("c4")
	want := []string{"Users currently in Lobby: Guest1, Guest2, Guest3."}
	if texts := rec.texts("c4"); !reflect.DeepEqual(texts, want) {
		t.Fatalf("expected %q, got %q", want, texts)
	}
	for _, c := range []ConnID{"c1", "c2", "c3"} {
		if texts := rec.texts(c); !reflect.DeepEqual(texts, []string{"Guest4 has joined Lobby."}) {
			t.Fatalf("unexpected %s messages: %q", c, texts)
		}
	}
}

func TestRenameSuccessAnnouncesAndFreesName(t *testing.T) {
	coord, rec := newTestCoordinator()
	coord.Connect("c1")
	coord.Connect("c2")
	rec.reset()

	coord.Rename("c2", "Carl")

	res := rec.delivered["c2"]
	if len(res) != 1 || res[0].Kind != EventNameResult || !res[0].Success || res[0].Name != "Carl" {
		t.Fatalf("unexpected rename result: %+v", res)
	}
	if texts := rec.texts("c1"); !reflect.DeepEqual(texts, []string{"Guest2 is now known as Carl."}) {
		t.Fatalf("unexpected c1 messages: %q", texts)
	}

	rec.reset()
	coord.Rename("c1", "Guest2")
	if ev := rec.delivered["c1"][0]; ev.Success {
		t.Fatal("guest names cannot be chosen")
	}
	if coord.ids.InUse("Guest2") {
		t.Fatal("Guest2 should be free")
	}
}

func TestRenameRejections(t *testing.T) {
	coord, rec := newTestCoordinator()
	coord.Connect("c1")
	coord.Connect("c2")
	coord.Rename("c2", "Alice")
	rec.reset()

	coord.Rename("c1", "Guestly")
	coord.Rename("c1", "Alice")

	got := rec.delivered["c1"]
	if len(got) != 2 {
		t.Fatalf("expected two private results, got %+v", got)
	}
	if got[0].Success || got[0].Reason != `Names cannot begin with "Guest".` {
		t.Fatalf("unexpected reserved-prefix result: %+v", got[0])
	}
	if got[1].Success || got[1].Reason != "That name is already in use." {
		t.Fatalf("unexpected taken result: %+v", got[1])
	}
	if len(rec.delivered["c2"]) != 0 {
		t.Fatalf("rejections must not be broadcast: %+v", rec.delivered["c2"])
	}
	if name, _ := coord.ids.NameOf("c1"); name != "Guest1" {
		t.Fatalf("name changed after rejection: %s", name)
	}
}

func TestJoinRoomMovesAndAnnounces(t *testing.T) {
	coord, rec := newTestCoordinator()
	coord.Connect("c1")
	coord.Connect("c2")
	coord.Connect("c3")
	coord.JoinRoom("c3", "Den")
	rec.reset()

	coord.JoinRoom("c1", "Den")

	got := rec.delivered["c1"]
	if len(got) != 2 || got[0].Kind != EventJoinResult || got[0].Room != "Den" {
		t.Fatalf("unexpected c1 events: %+v", got)
	}
	if got[1].Text != "Users currently in Den: Guest3." {
		t.Fatalf("unexpected summary: %q", got[1].Text)
	}
	if texts := rec.texts("c3"); !reflect.DeepEqual(texts, []string{"Guest1 has joined Den."}) {
		t.Fatalf("unexpected c3 messages: %q", texts)
	}
	if len(rec.delivered["c2"]) != 0 {
		t.Fatalf("lobby should not hear about Den: %+v", rec.delivered["c2"])
	}
	if members := coord.rooms.MembersOf("Lobby"); !reflect.DeepEqual(members, []ConnID{"c2"}) {
		t.Fatalf("unexpected Lobby members: %v", members)
	}
}

func TestSendMessageExcludesSender(t *testing.T) {
	coord, rec := newTestCoordinator()
	coord.Connect("c1")
	coord.Connect("c2")
	coord.Connect("c3")
	coord.JoinRoom("c3", "Den")
	rec.reset()

	coord.SendMessage("c1", "Lobby", "hello")

	if len(rec.delivered["c1"]) != 0 {
		t.Fatalf("sender received echo: %+v", rec.delivered["c1"])
	}
	if texts := rec.texts("c2"); !reflect.DeepEqual(texts, []string{"Guest1: hello"}) {
		t.Fatalf("unexpected c2 messages: %q", texts)
	}
	if len(rec.delivered["c3"]) != 0 {
		t.Fatalf("other room received message: %+v", rec.delivered["c3"])
	}
}

func TestDisconnectReleasesNameAndMembership(t *testing.T) {
	coord, rec := newTestCoordinator()
	coord.Connect("c1")
	coord.Connect("c2")
	coord.Rename("c1", "Alice")

	coord.Disconnect("c1")
	coord.Disconnect("c1")

	if coord.ids.InUse("Alice") {
		t.Fatal("name not released")
	}
	if members := coord.rooms.MembersOf("Lobby"); !reflect.DeepEqual(members, []ConnID{"c2"}) {
		t.Fatalf("unexpected members after disconnect: %v", members)
	}

	rec.reset()
	coord.Connect("c3")
	if texts := rec.texts("c3"); !reflect.DeepEqual(texts, []string{"Users currently in Lobby: Guest2."}) {
		t.Fatalf("summary includes departed connection: %q", texts)
	}
}

func TestListRooms(t *testing.T) {
	coord, rec := newTestCoordinator()
	coord.Connect("c1")
	coord.Connect("c2")
	coord.JoinRoom("c2", "Attic")
	coord.JoinRoom("c1", "Attic")
	coord.Connect("c3")
	rec.reset()

	coord.ListRooms("c3")

	got := rec.delivered["c3"]
	if len(got) != 1 || got[0].Kind != EventRooms {
		t.Fatalf("unexpected events: %+v", got)
	}
	want := []RoomInfo{
		{Name: "Attic", Users: []string{"Guest2", "Guest1"}},
		{Name: "Lobby", Users: []string{"Guest3"}},
	}
	if !reflect.DeepEqual(got[0].Rooms, want) {
		t.Fatalf("expected %+v, got %+v", want, got[0].Rooms)
	}
}

func TestCommandsFromUnknownConnectionAreDropped(t *testing.T) {
	coord, rec := newTestCoordinator()
	coord.Connect("c1")
	rec.reset()

	coord.Handle("ghost", &Command{Kind: CommandSendRoomMessage, Room: "Lobby", Text: "boo"})
	coord.Handle("ghost", &Command{Kind: CommandJoinRoom, Room: "Lobby"})

	if len(rec.delivered) != 0 {
		t.Fatalf("unexpected deliveries: %+v", rec.delivered)
	}
}
