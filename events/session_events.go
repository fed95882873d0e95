package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// RoomJoinedEvent is emitted after a connection becomes a room member.
type RoomJoinedEvent struct {
	Room      string    `json:"room"`
	User      string    `json:"user"`
	Occupancy int       `json:"occupancy"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomLeftEvent is emitted after a member leaves a room, whether by an
// explicit leave or a transport disconnect.
type RoomLeftEvent struct {
	Room      string    `json:"room"`
	User      string    `json:"user"`
	Occupancy int       `json:"occupancy"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageRelayedEvent is emitted after a chat message has been fanned
// out to a room. The body is not carried; the relay is stateless.
type MessageRelayedEvent struct {
	Room      string    `json:"room"`
	User      string    `json:"user"`
	Length    int       `json:"length"`
	Timestamp time.Time `json:"timestamp"`
}

// TypingChangedEvent is emitted on every effective typing transition.
type TypingChangedEvent struct {
	Room        string    `json:"room"`
	User        string    `json:"user"`
	Typing      bool      `json:"typing"`
	TypingCount int       `json:"typing_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// RoomOpenedEvent is emitted when a room is added to the registry,
// either from the seed catalog or through the REST API.
type RoomOpenedEvent struct {
	Room      string    `json:"room"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	MaxUsers  int       `json:"max_users"`
	Private   bool      `json:"private"`
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the session domain.
var (
	RoomJoinedV1 = helper.EventDefinition[RoomJoinedEvent](
		"session",
		"RoomJoined",
		"v1",
	)

	RoomLeftV1 = helper.EventDefinition[RoomLeftEvent](
		"session",
		"RoomLeft",
		"v1",
	)

	MessageRelayedV1 = helper.EventDefinition[MessageRelayedEvent](
		"session",
		"MessageRelayed",
		"v1",
	)

	TypingChangedV1 = helper.EventDefinition[TypingChangedEvent](
		"session",
		"TypingChanged",
		"v1",
	)

	RoomOpenedV1 = helper.EventDefinition[RoomOpenedEvent](
		"session",
		"RoomOpened",
		"v1",
	)
)
