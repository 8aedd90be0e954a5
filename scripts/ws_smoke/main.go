package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/roomrelay/internal/proto"
)

func main() {
	if err := newSmokeCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ws_smoke: %v\n", err)
		os.Exit(1)
	}
}

func newSmokeCmd() *cobra.Command {
	var (
		addr    string
		nick    string
		room    string
		text    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:           "ws_smoke",
		Short:         "Check rename, room join and broadcast against a running server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return run(ctx, addr, nick, room, text)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", "ws://localhost:8080/ws", "WebSocket address")
	flags.StringVar(&nick, "nick", "smoke", "name the sender asks for")
	flags.StringVar(&room, "room", "smoke-room", "room both clients join")
	flags.StringVar(&text, "text", "hello from smoke test", "message text to send")
	flags.DurationVar(&timeout, "timeout", 5*time.Second, "total timeout for the run")
	return cmd
}

func run(ctx context.Context, addr, nick, room, text string) error {
	sender, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("dial sender: %w", err)
	}
	defer sender.Close(websocket.StatusNormalClosure, "bye")

	receiver, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("dial receiver: %w", err)
	}
	defer receiver.Close(websocket.StatusNormalClosure, "bye")

	if err := send(ctx, sender, proto.InboundTypeNameAttempt, proto.NameAttemptData{Name: nick}); err != nil {
		return err
	}
	var name proto.NameResult
	// The first nameResult is the guest assignment.
	for i := 0; i < 2; i++ {
		if err := await(ctx, sender, proto.EventNameResult, &name); err != nil {
			return err
		}
	}
	if !name.Success {
		return fmt.Errorf("rename to %q rejected: %s", nick, name.Message)
	}
	fmt.Printf("sender is %s\n", name.Name)

	for _, conn := range []*websocket.Conn{receiver, sender} {
		if err := send(ctx, conn, proto.InboundTypeJoin, proto.JoinData{NewRoom: room}); err != nil {
			return err
		}
		var joined proto.JoinResult
		for joined.Room != room {
			if err := await(ctx, conn, proto.EventJoinResult, &joined); err != nil {
				return err
			}
		}
	}
	fmt.Printf("both clients in %s\n", room)

	if err := send(ctx, sender, proto.InboundTypeMessage, proto.MessageData{Room: room, Text: text}); err != nil {
		return err
	}
	want := name.Name + ": " + text
	for {
		var msg proto.Message
		if err := await(ctx, receiver, proto.EventMessage, &msg); err != nil {
			return err
		}
		if msg.Text == want {
			fmt.Printf("received %q\n", msg.Text)
			return nil
		}
	}
}

func send(ctx context.Context, conn *websocket.Conn, typ string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}

// await reads frames until one carries event, decoding its data into v.
func await(ctx context.Context, conn *websocket.Conn, event string, v any) error {
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if outbound.Error != nil {
			return fmt.Errorf("server error %s: %s", outbound.Error.Code, outbound.Error.Msg)
		}
		if outbound.Event == event {
			return proto.Decode(outbound.Data, v)
		}
	}
}
