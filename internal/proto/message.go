package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	InboundTypeNameAttempt = "nameAttempt"
	InboundTypeJoin        = "join"
	InboundTypeMessage     = "message"
	InboundTypeRooms       = "rooms"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventNameResult = "nameResult"
	EventJoinResult = "joinResult"
	EventMessage    = "message"
	EventRooms      = "rooms"
)

// NameAttemptData requests a new display name.
type NameAttemptData struct {
	Name string `json:"name"`
}

// JoinData requests a move to another room.
type JoinData struct {
	NewRoom string `json:"newRoom"`
}

// MessageData is a chat line addressed to a room.
type MessageData struct {
	Room string `json:"room"`
	Text string `json:"text"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// NameResult reports a name assignment or rename outcome.
type NameResult struct {
	Success bool   `json:"success"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message,omitempty"`
}

// JoinResult confirms the current room.
type JoinResult struct {
	Room string `json:"room"`
}

// Message is a line of text for the client to display.
type Message struct {
	Text string `json:"text"`
}

// Room describes one occupied room.
type Room struct {
	Name  string   `json:"name"`
	Users []string `json:"users"`
}

// Rooms lists occupied rooms.
type Rooms struct {
	Rooms []Room `json:"rooms"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// Decode re-reads the Data of an outbound frame received by a client into v.
func Decode(data any, v any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
