package dispatch

import (
	"errors"
	"time"
	"unicode/utf8"
)

// Inbound intent names (the wire contract, client to server).
const (
	IntentJoinRoom    = "joining_room"
	IntentSendMessage = "sending_message"
	IntentStartTyping = "started_typing"
	IntentStopTyping  = "stopped_typing"
	IntentLeaveRoom   = "leaving_room"
)

// Outbound event names (server to client).
const (
	EventRoomData      = "room_data"
	EventRoomNotFound  = "room_not_found"
	EventRoomFull      = "room_full"
	EventAuthRequired  = "auth_required"
	EventMessage       = "message"
	EventChangedTyping = "changed_typing"
	EventSomeoneLeft   = "someone_left"
	EventLeavingRoom   = "leaving_room"
	EventConnected     = "connected"
	EventError         = "error"
)

// Message types carried inside a message event. Joined and left are
// synthetic membership markers with no message body; the client derives
// the display text from the type.
const (
	MessageTypeChat   = "message"
	MessageTypeJoined = "joined"
	MessageTypeLeft   = "left"
)

// Validation constants
const (
	MaxNameLength    = 50
	MaxMessageLength = 5000
)

// Validation errors
var (
	ErrMessageEmpty   = errors.New("message content cannot be empty")
	ErrMessageTooLong = errors.New("message exceeds maximum length")
	ErrMessageInvalid = errors.New("message contains invalid characters")
	ErrNameEmpty      = errors.New("name cannot be empty")
	ErrNameTooLong    = errors.New("name exceeds maximum length")
)

// Intent is the inbound envelope decoded from a client frame. Room is
// authoritative only for joining_room; the in-room intents act on the
// connection's occupied room, and a stale or mismatched Room field is
// ignored rather than rejected (the client echoes the field on every
// intent, including frames sent while a leave is in flight).
type Intent struct {
	Event    string `json:"event"`
	Room     string `json:"room,omitempty"`
	Message  string `json:"message,omitempty"`
	Password string `json:"password,omitempty"`
}

// Envelope is the outbound frame written to clients.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// ChatMessage is the payload of a message event. Timestamp is assigned
// server-side at broadcast time so every member sees the same clock.
type ChatMessage struct {
	User      string `json:"user"`
	Type      string `json:"type"`
	Message   string `json:"message,omitempty"`
	ChatColor string `json:"chatColor"`
	Timestamp string `json:"timestamp"`
}

// ConnectedInfo is the payload of the connected event sent once after
// the WebSocket upgrade.
type ConnectedInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ChatColor string `json:"chatColor"`
}

// chatColors is the palette cycled through when assigning a display
// color to each new connection.
var chatColors = []string{
	"#e6194b",
	"#3cb44b",
	"#ffe119",
	"#4363d8",
	"#f58231",
	"#911eb4",
	"#46f0f0",
	"#f032e6",
	"#bcf60c",
	"#008080",
}

// FormatClock renders a display timestamp as zero-padded HH:MM:SS.
func FormatClock(t time.Time) string {
	return t.Format("15:04:05")
}

// ValidateMessage validates chat message content.
func ValidateMessage(content string) error {
	if content == "" {
		return ErrMessageEmpty
	}
	if len(content) > MaxMessageLength {
		return ErrMessageTooLong
	}
	if !utf8.ValidString(content) {
		return ErrMessageInvalid
	}
	return nil
}

// ValidateName validates a display name.
func ValidateName(name string) error {
	if name == "" {
		return ErrNameEmpty
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}
