package registry

import "errors"

// Protocol-visible errors. The dispatcher maps these onto the wire
// rejection events; none of them is fatal to a connection.
var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is at capacity")
	ErrAuthRequired  = errors.New("room password missing or incorrect")
	ErrAlreadyInRoom = errors.New("connection already occupies a room")
	ErrNotMember     = errors.New("connection is not a member of the room")
	ErrRoomExists    = errors.New("room already exists")
	ErrRoomOccupied  = errors.New("room is not empty")
)
