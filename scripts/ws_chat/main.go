package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/roomrelay/internal/proto"
)

func main() {
	if err := newChatCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ws_chat: %v\n", err)
		os.Exit(1)
	}
}

func newChatCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:           "ws_chat",
		Short:         "Interactive terminal chat client",
		Long:          "Type to talk in the current room. Commands: /nick <name>, /join <room>, /rooms, /quit.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, addr, os.Stdin, os.Stdout)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "ws://localhost:8080/ws", "WebSocket address")
	return cmd
}

// session tracks the room the server last confirmed.
type session struct {
	mu   sync.Mutex
	room string
}

func (s *session) setRoom(room string) {
	s.mu.Lock()
	s.room = room
	s.mu.Unlock()
}

func (s *session) currentRoom() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

func run(ctx context.Context, addr string, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	fmt.Fprintf(out, "Connected to %s\n", addr)
	fmt.Fprintln(out, "Commands: /nick <name>, /join <room>, /rooms, /quit")

	sess := &session{}
	go func() {
		defer cancel()
		readLoop(ctx, conn, sess, out)
	}()

	writeLoop(ctx, cancel, conn, sess, in, out)
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn, sess *session, out io.Writer) {
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			fmt.Fprintf(out, "read error: %v\n", err)
			return
		}
		if outbound.Error != nil {
			fmt.Fprintf(out, "! %s\n", outbound.Error.Msg)
			continue
		}
		render(outbound, sess, out)
	}
}

func render(outbound proto.Outbound, sess *session, out io.Writer) {
	switch outbound.Event {
	case proto.EventNameResult:
		var res proto.NameResult
		if err := proto.Decode(outbound.Data, &res); err != nil {
			return
		}
		if res.Success {
			fmt.Fprintf(out, "You are now known as %s.\n", res.Name)
		} else {
			fmt.Fprintln(out, res.Message)
		}
	case proto.EventJoinResult:
		var res proto.JoinResult
		if err := proto.Decode(outbound.Data, &res); err != nil {
			return
		}
		sess.setRoom(res.Room)
		fmt.Fprintf(out, "Room changed: %s\n", res.Room)
	case proto.EventMessage:
		var msg proto.Message
		if err := proto.Decode(outbound.Data, &msg); err != nil {
			return
		}
		fmt.Fprintln(out, msg.Text)
	case proto.EventRooms:
		var rooms proto.Rooms
		if err := proto.Decode(outbound.Data, &rooms); err != nil {
			return
		}
		sort.Slice(rooms.Rooms, func(i, j int) bool { return rooms.Rooms[i].Name < rooms.Rooms[j].Name })
		for _, r := range rooms.Rooms {
			fmt.Fprintf(out, "  %s (%d): %s\n", r.Name, len(r.Users), strings.Join(r.Users, ", "))
		}
	default:
		fmt.Fprintf(out, "event=%s data=%v\n", outbound.Event, outbound.Data)
	}
}

func writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, sess *session, in io.Reader, out io.Writer) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			inbound, quit, err := parseLine(line, sess.currentRoom())
			if quit {
				cancel()
				return
			}
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			if inbound == nil {
				continue
			}
			if err := wsjson.Write(ctx, conn, inbound); err != nil {
				fmt.Fprintf(out, "send error: %v\n", err)
				return
			}
		}
	}
}

// parseLine turns one line of input into a frame. A nil frame means
// nothing to send.
func parseLine(line, room string) (*proto.Inbound, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, false, nil
	}
	if !strings.HasPrefix(line, "/") {
		if room == "" {
			return nil, false, errors.New("not in a room yet")
		}
		return frame(proto.InboundTypeMessage, proto.MessageData{Room: room, Text: line})
	}

	verb, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(verb) {
	case "nick":
		if arg == "" {
			return nil, false, errors.New("usage: /nick <name>")
		}
		return frame(proto.InboundTypeNameAttempt, proto.NameAttemptData{Name: arg})
	case "join":
		if arg == "" {
			return nil, false, errors.New("usage: /join <room>")
		}
		return frame(proto.InboundTypeJoin, proto.JoinData{NewRoom: arg})
	case "rooms":
		return &proto.Inbound{Type: proto.InboundTypeRooms}, false, nil
	case "quit", "exit":
		return nil, true, nil
	default:
		return nil, false, errors.New("unrecognized command")
	}
}

func frame(typ string, data any) (*proto.Inbound, bool, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, false, err
	}
	return &proto.Inbound{Type: typ, Data: payload}, false, nil
}
