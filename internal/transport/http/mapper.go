package http

import (
	"bytes"
	"encoding/json"

	"github.com/vovakirdan/roomrelay/internal/core"
	"github.com/vovakirdan/roomrelay/internal/proto"
)

// inboundToCommand maps a decoded frame to a command. Frames with missing
// fields or wrongly shaped data yield a protocol error for the sender.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeNameAttempt:
		name, err := decodeName(inbound.Data)
		if err != nil {
			return nil, invalidData(inbound.Type)
		}
		if name == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "name is required"}
		}
		return &core.Command{Kind: core.CommandRename, Name: name}, nil
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := decodeData(inbound.Data, &join); err != nil {
			return nil, invalidData(inbound.Type)
		}
		if join.NewRoom == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "newRoom is required"}
		}
		return &core.Command{Kind: core.CommandJoinRoom, Room: join.NewRoom}, nil
	case proto.InboundTypeMessage:
		var msg proto.MessageData
		if err := decodeData(inbound.Data, &msg); err != nil {
			return nil, invalidData(inbound.Type)
		}
		if msg.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}
		}
		return &core.Command{Kind: core.CommandSendRoomMessage, Room: msg.Room, Text: msg.Text}, nil
	case proto.InboundTypeRooms:
		return &core.Command{Kind: core.CommandListRooms}, nil
	default:
		return nil, &proto.Error{Code: core.ErrCodeInvalidMessage, Msg: "unknown message type"}
	}
}

func invalidData(typ string) *proto.Error {
	return &proto.Error{Code: core.ErrCodeBadRequest, Msg: "invalid data for " + typ}
}

// decodeName accepts {"name": "..."} as well as a bare JSON string.
func decodeName(data json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var name string
		err := json.Unmarshal(trimmed, &name)
		return name, err
	}
	var attempt proto.NameAttemptData
	if err := decodeData(data, &attempt); err != nil {
		return "", err
	}
	return attempt.Name, nil
}

// decodeData leaves v untouched when the frame carries no data.
func decodeData(data json.RawMessage, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventNameResult:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameResult,
			Data: proto.NameResult{
				Success: event.Success,
				Name:    event.Name,
				Message: event.Reason,
			},
		}
	case core.EventJoinResult:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventJoinResult,
			Data:  proto.JoinResult{Room: event.Room},
		}
	case core.EventMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventMessage,
			Data:  proto.Message{Text: event.Text},
		}
	case core.EventRooms:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventRooms,
			Data:  proto.Rooms{Rooms: roomsToProto(event.Rooms)},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown event"}}
	}
}

func roomsToProto(rooms []core.RoomInfo) []proto.Room {
	out := make([]proto.Room, 0, len(rooms))
	for _, r := range rooms {
		users := r.Users
		if users == nil {
			users = []string{}
		}
		out = append(out, proto.Room{Name: r.Name, Users: users})
	}
	return out
}
